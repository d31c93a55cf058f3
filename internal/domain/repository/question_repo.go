package repository

import (
	"context"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	// CreateBatch сохраняет пакет вопросов одним запросом.
	// Позиции должны быть проставлены вызывающей стороной.
	CreateBatch(ctx context.Context, questions []entity.Question) error
	GetByID(ctx context.Context, id string) (*entity.Question, error)
	// GetByQuizID возвращает вопросы викторины в порядке позиций
	GetByQuizID(ctx context.Context, quizID string) ([]entity.Question, error)
	// GetByQuizAndPosition возвращает вопрос по его позиции в викторине
	GetByQuizAndPosition(ctx context.Context, quizID string, position int) (*entity.Question, error)
	CountByQuizID(ctx context.Context, quizID string) (int64, error)
}
