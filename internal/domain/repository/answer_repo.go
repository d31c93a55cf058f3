package repository

import (
	"context"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
)

// AnswerStats представляет агрегаты ответов на один вопрос
type AnswerStats struct {
	OptionCounts []int `json:"option_counts"`
	CorrectCount int   `json:"correct_count"`
	TotalAnswers int   `json:"total_answers"`
}

// AnswerRepository определяет методы для работы с ответами
type AnswerRepository interface {
	// Submit атомарно сохраняет ответ и применяет его к агрегатам участника
	// (total_score, correct_count/wrong_count, current_streak, best_streak)
	// в одной транзакции. Дубликат по (participant_id, question_id)
	// отображается в ErrAlreadyAnswered - побеждает ровно одна отправка.
	// Возвращает участника с обновлёнными агрегатами.
	Submit(ctx context.Context, answer *entity.Answer) (*entity.Participant, error)

	GetByParticipantAndQuestion(ctx context.Context, participantID, questionID string) (*entity.Answer, error)
	Exists(ctx context.Context, participantID, questionID string) (bool, error)
	ListByParticipant(ctx context.Context, participantID string) ([]entity.Answer, error)
	// StatsByQuestion возвращает распределение ответов по вариантам вопроса
	StatsByQuestion(ctx context.Context, questionID string, optionCount int) (*AnswerStats, error)
}
