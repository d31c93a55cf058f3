package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
	"github.com/Hazratqul21/alif-24-sub000/internal/domain/repository"
	apperrors "github.com/Hazratqul21/alif-24-sub000/internal/pkg/errors"
	"github.com/Hazratqul21/alif-24-sub000/internal/websocket"
	"github.com/Hazratqul21/alif-24-sub000/pkg/auth"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Кросс-доменность закрывается CORS на HTTP-поверхности; сам апгрейд
	// аутентифицируется токеном в query
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler обрабатывает websocket-подключения к комнатам викторин.
// Подключение только слушает события; все команды идут через HTTP.
type WSHandler struct {
	hub             *websocket.Hub
	jwtService      *auth.JWTService
	quizRepo        repository.QuizRepository
	participantRepo repository.ParticipantRepository
}

// NewWSHandler создает новый обработчик websocket-подключений
func NewWSHandler(
	hub *websocket.Hub,
	jwtService *auth.JWTService,
	quizRepo repository.QuizRepository,
	participantRepo repository.ParticipantRepository,
) *WSHandler {
	return &WSHandler{
		hub:             hub,
		jwtService:      jwtService,
		quizRepo:        quizRepo,
		participantRepo: participantRepo,
	}
}

// Connect выполняет апгрейд GET /ws?quiz_id=&token= до websocket.
// Подключаться могут ведущий викторины и ее участники.
func (h *WSHandler) Connect(c *gin.Context) {
	quizID := c.Query("quiz_id")
	if !entity.IsValidID(quizID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz_id", "code": "VALIDATION"})
		return
	}

	claims, err := h.jwtService.ParseToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "code": "UNAUTHORIZED"})
		return
	}

	quiz, err := h.quizRepo.GetByID(c.Request.Context(), quizID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	if quiz.HostID != claims.UserID {
		_, err := h.participantRepo.GetByQuizAndPlayer(c.Request.Context(), quizID, claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				err = apperrors.ErrForbidden
			}
			handleDomainError(c, err)
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка апгрейда подключения: quiz=%s err=%v", quizID, err)
		return
	}

	client := websocket.NewClient(h.hub, conn, quizID, claims.UserID)
	go client.Run()
}
