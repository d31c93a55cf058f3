package dto

import (
	"time"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
)

// QuizResponse представляет викторину в ответах API
type QuizResponse struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	JoinCode             string     `json:"join_code"`
	TimePerQuestion      int        `json:"time_per_question"`
	ShuffleQuestions     bool       `json:"shuffle_questions"`
	ShuffleOptions       bool       `json:"shuffle_options"`
	MaxParticipants      int        `json:"max_participants"`
	Status               string     `json:"status"`
	CurrentQuestionIndex int        `json:"current_question_index"`
	QuestionCount        int        `json:"question_count,omitempty"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	EndedAt              *time.Time `json:"ended_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// NewQuizResponse строит ответ из сущности викторины
func NewQuizResponse(quiz *entity.Quiz) *QuizResponse {
	return &QuizResponse{
		ID:                   quiz.ID,
		Title:                quiz.Title,
		Description:          quiz.Description,
		JoinCode:             quiz.JoinCode,
		TimePerQuestion:      quiz.TimePerQuestion,
		ShuffleQuestions:     quiz.ShuffleQuestions,
		ShuffleOptions:       quiz.ShuffleOptions,
		MaxParticipants:      quiz.MaxParticipants,
		Status:               quiz.Status,
		CurrentQuestionIndex: quiz.CurrentQuestionIndex,
		QuestionCount:        len(quiz.Questions),
		StartedAt:            quiz.StartedAt,
		EndedAt:              quiz.EndedAt,
		CreatedAt:            quiz.CreatedAt,
	}
}

// PaginatedQuizzesResponse представляет пагинированный список викторин ведущего
type PaginatedQuizzesResponse struct {
	Quizzes []*QuizResponse `json:"quizzes"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

// LeaderboardRowDTO представляет одну строку таблицы лидеров
type LeaderboardRowDTO struct {
	Rank          int    `json:"rank,omitempty"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	AvatarTag     string `json:"avatar_tag,omitempty"`
	TotalScore    int    `json:"total_score"`
	CorrectCount  int    `json:"correct_count"`
	WrongCount    int    `json:"wrong_count"`
	BestStreak    int    `json:"best_streak"`
	CoinsEarned   int    `json:"coins_earned,omitempty"`
}

// NewLeaderboardRows строит строки таблицы лидеров из участников.
// До итогового расчета ранги отсутствуют, и место задается порядком строк.
func NewLeaderboardRows(participants []entity.Participant) []*LeaderboardRowDTO {
	rows := make([]*LeaderboardRowDTO, 0, len(participants))
	for i := range participants {
		p := &participants[i]
		rows = append(rows, &LeaderboardRowDTO{
			Rank:          p.Rank,
			ParticipantID: p.ID,
			DisplayName:   p.DisplayName,
			AvatarTag:     p.AvatarTag,
			TotalScore:    p.TotalScore,
			CorrectCount:  p.CorrectCount,
			WrongCount:    p.WrongCount,
			BestStreak:    p.BestStreak,
			CoinsEarned:   p.CoinsEarned,
		})
	}
	return rows
}
