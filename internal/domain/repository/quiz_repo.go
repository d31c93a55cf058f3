package repository

import (
	"context"
	"time"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
)

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	Create(ctx context.Context, quiz *entity.Quiz) error
	GetByID(ctx context.Context, id string) (*entity.Quiz, error)
	GetWithQuestions(ctx context.Context, id string) (*entity.Quiz, error)
	// GetByJoinCode ищет викторину по join-коду среди неконечных состояний
	// (created, waiting, active). Код завершённой викторины не резолвится.
	GetByJoinCode(ctx context.Context, code string) (*entity.Quiz, error)
	// JoinCodeInUse проверяет, занят ли код какой-либо неконечной викториной
	JoinCodeInUse(ctx context.Context, code string) (bool, error)
	ListByHost(ctx context.Context, hostID string, limit, offset int) ([]entity.Quiz, int64, error)

	// OpenLobby атомарно переводит created → waiting.
	// RowsAffected == 0 означает, что викторина не в состоянии created.
	OpenLobby(ctx context.Context, quizID string) error
	// Start атомарно переводит waiting → active, сбрасывает указатель
	// текущего вопроса в 0 и фиксирует started_at.
	Start(ctx context.Context, quizID string, startedAt time.Time) error
	// Finish атомарно переводит active → finished и фиксирует ended_at
	Finish(ctx context.Context, quizID string, endedAt time.Time) error
	// Cancel атомарно переводит created|waiting → cancelled
	Cancel(ctx context.Context, quizID string) error

	// AdvanceQuestionIndex оптимистично увеличивает current_question_index
	// с fromIndex на fromIndex+1. Возвращает false без ошибки, если проиграна
	// гонка конкурентного продвижения (индекс уже не fromIndex).
	AdvanceQuestionIndex(ctx context.Context, quizID string, fromIndex int) (bool, error)

	Delete(ctx context.Context, id string) error
}
