package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hazratqul21/alif-24-sub000/internal/middleware"
	"github.com/Hazratqul21/alif-24-sub000/internal/service"
)

// PlayerHandler обрабатывает запросы игроков
type PlayerHandler struct {
	playerService *service.PlayerService
}

// NewPlayerHandler создает новый обработчик игроков
func NewPlayerHandler(playerService *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// JoinRequest представляет запрос на подключение к викторине
type JoinRequest struct {
	JoinCode    string `json:"join_code" binding:"required,len=6,numeric"`
	DisplayName string `json:"display_name" binding:"required"`
	AvatarTag   string `json:"avatar_tag"`
}

// Join обрабатывает подключение игрока по join-коду
func (h *PlayerHandler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION"})
		return
	}

	result, err := h.playerService.Join(c.Request.Context(), middleware.PrincipalID(c), req.JoinCode, req.DisplayName, req.AvatarTag)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CurrentQuestion обрабатывает запрос текущего вопроса глазами игрока
func (h *PlayerHandler) CurrentQuestion(c *gin.Context) {
	view, err := h.playerService.PlayerQuestion(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitAnswerRequest представляет запрос на отправку ответа
type SubmitAnswerRequest struct {
	QuestionID     string `json:"question_id" binding:"required"`
	SelectedIndex  *int   `json:"selected_index" binding:"required"`
	TimeToAnswerMs int64  `json:"time_to_answer_ms"`
}

// SubmitAnswer обрабатывает отправку ответа на текущий вопрос
func (h *PlayerHandler) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION"})
		return
	}

	result, err := h.playerService.SubmitAnswer(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"), service.SubmitAnswerInput{
		QuestionID:     req.QuestionID,
		SelectedIndex:  *req.SelectedIndex,
		TimeToAnswerMs: req.TimeToAnswerMs,
	})
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Result обрабатывает запрос личного итога игрока
func (h *PlayerHandler) Result(c *gin.Context) {
	view, err := h.playerService.PlayerResult(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
