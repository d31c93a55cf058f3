package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/Hazratqul21/alif-24-sub000/internal/handler/dto"
	"github.com/Hazratqul21/alif-24-sub000/internal/middleware"
	"github.com/Hazratqul21/alif-24-sub000/internal/service"
)

// QuizHandler обрабатывает запросы ведущего викторины
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// CreateQuizRequest представляет запрос на создание викторины
type CreateQuizRequest struct {
	Title            string `json:"title" binding:"required,max=100"`
	Description      string `json:"description" binding:"omitempty,max=500"`
	TimePerQuestion  int    `json:"time_per_question" binding:"required"`
	ShuffleQuestions bool   `json:"shuffle_questions"`
	ShuffleOptions   bool   `json:"shuffle_options"`
}

// CreateQuiz обрабатывает запрос на создание викторины
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION"})
		return
	}

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), middleware.PrincipalID(c), service.CreateQuizInput{
		Title:            req.Title,
		Description:      req.Description,
		TimePerQuestion:  req.TimePerQuestion,
		ShuffleQuestions: req.ShuffleQuestions,
		ShuffleOptions:   req.ShuffleOptions,
	})
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quiz_id": quiz.ID, "join_code": quiz.JoinCode})
}

// QuestionDraftRequest представляет один вопрос при пакетном добавлении
type QuestionDraftRequest struct {
	Text         string   `json:"text" binding:"required,max=500"`
	Image        string   `json:"image" binding:"omitempty,max=255"`
	Options      []string `json:"options" binding:"required"`
	CorrectIndex int      `json:"correct_index"`
	Points       int      `json:"points"`
	TimeLimitSec int      `json:"time_limit_sec"`
}

// AddQuestionsRequest представляет запрос на добавление пакета вопросов
type AddQuestionsRequest struct {
	Questions []QuestionDraftRequest `json:"questions" binding:"required,min=1"`
}

// AddQuestions обрабатывает запрос на добавление вопросов
func (h *QuizHandler) AddQuestions(c *gin.Context) {
	var req AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION"})
		return
	}

	drafts := make([]service.QuestionDraft, 0, len(req.Questions))
	for _, q := range req.Questions {
		drafts = append(drafts, service.QuestionDraft{
			Text:         q.Text,
			Image:        q.Image,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Points:       q.Points,
			TimeLimitSec: q.TimeLimitSec,
		})
	}

	count, err := h.quizService.AddQuestions(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"), drafts)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// OpenLobby обрабатывает запрос на открытие лобби
func (h *QuizHandler) OpenLobby(c *gin.Context) {
	quiz, err := h.quizService.OpenLobby(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"join_code":        quiz.JoinCode,
		"max_participants": quiz.MaxParticipants,
	})
}

// LobbyStatus обрабатывает запрос состояния лобби
func (h *QuizHandler) LobbyStatus(c *gin.Context) {
	status, err := h.quizService.LobbyStatus(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// StartQuiz обрабатывает запрос на запуск викторины
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	total, err := h.quizService.StartQuiz(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_questions": total})
}

// CurrentQuestion обрабатывает запрос текущего вопроса глазами ведущего
func (h *QuizHandler) CurrentQuestion(c *gin.Context) {
	view, err := h.quizService.CurrentQuestion(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// NextQuestion обрабатывает запрос продвижения к следующему вопросу
func (h *QuizHandler) NextQuestion(c *gin.Context) {
	view, err := h.quizService.NextQuestion(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// QuestionResults обрабатывает запрос агрегатов ответов на вопрос
func (h *QuizHandler) QuestionResults(c *gin.Context) {
	stats, err := h.quizService.QuestionResults(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"), c.GetString("questionID"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Leaderboard обрабатывает запрос таблицы лидеров
func (h *QuizHandler) Leaderboard(c *gin.Context) {
	participants, err := h.quizService.Leaderboard(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": dto.NewLeaderboardRows(participants)})
}

// EndQuiz обрабатывает запрос принудительного завершения викторины
func (h *QuizHandler) EndQuiz(c *gin.Context) {
	participants, err := h.quizService.EndQuiz(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": dto.NewLeaderboardRows(participants)})
}

// CancelQuiz обрабатывает запрос отмены викторины
func (h *QuizHandler) CancelQuiz(c *gin.Context) {
	if err := h.quizService.CancelQuiz(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID")); err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// DeleteQuiz обрабатывает запрос удаления викторины со всем содержимым
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	if err := h.quizService.DeleteQuiz(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID")); err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetQuiz обрабатывает запрос викторины с вопросами для ведущего
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.quizService.GetQuiz(c.Request.Context(), middleware.PrincipalID(c), c.GetString("quizID"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// ListQuizzes обрабатывает запрос списка викторин ведущего
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}

	quizzes, total, err := h.quizService.ListQuizzes(c.Request.Context(), middleware.PrincipalID(c), perPage, (page-1)*perPage)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	responses := make([]*dto.QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		responses = append(responses, dto.NewQuizResponse(&quizzes[i]))
	}

	c.JSON(http.StatusOK, dto.PaginatedQuizzesResponse{
		Quizzes: responses,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// ExportLeaderboard выгружает таблицу лидеров викторины в XLSX
func (h *QuizHandler) ExportLeaderboard(c *gin.Context) {
	quizID := c.GetString("quizID")
	participants, err := h.quizService.Leaderboard(c.Request.Context(), middleware.PrincipalID(c), quizID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"quiz_%s.xlsx\"", quizID))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[QuizHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file", "code": "INTERNAL"})
		return
	}

	headers := []interface{}{"Место", "Игрок", "Очки", "Правильных", "Неправильных", "Лучшая серия", "Монеты"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[QuizHandler] Ошибка записи заголовков: %v", err)
	}

	for i := range participants {
		p := &participants[i]
		rank := p.Rank
		if rank == 0 {
			rank = i + 1
		}
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{rank, p.DisplayName, p.TotalScore, p.CorrectCount, p.WrongCount, p.BestStreak, p.CoinsEarned}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[QuizHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[QuizHandler] Ошибка завершения StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file", "code": "INTERNAL"})
		return
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[QuizHandler] Ошибка отправки файла: %v", err)
	}
}
