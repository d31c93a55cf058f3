package repository

import (
	"context"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
)

// ParticipantRepository определяет методы для работы с участниками
type ParticipantRepository interface {
	// CreateBounded создаёт участника в транзакции с проверкой вместимости:
	// вставка, затем пересчёт; если итоговое число участников превышает
	// maxParticipants, транзакция откатывается с ErrLobbyFull.
	// Гонка count-then-insert разрешается ограничением итогового количества.
	// Дубликат (quiz_id, player_id) отображается в ErrDuplicateJoin.
	CreateBounded(ctx context.Context, participant *entity.Participant, maxParticipants int) error

	GetByID(ctx context.Context, id string) (*entity.Participant, error)
	GetByQuizAndPlayer(ctx context.Context, quizID, playerID string) (*entity.Participant, error)
	// ListByQuiz возвращает участников в порядке таблицы лидеров:
	// total_score DESC, best_streak DESC, joined_at ASC.
	ListByQuiz(ctx context.Context, quizID string) ([]entity.Participant, error)
	CountByQuiz(ctx context.Context, quizID string) (int64, error)

	// SetStateForQuiz переводит всех участников викторины в указанное состояние
	SetStateForQuiz(ctx context.Context, quizID, state string) error

	// Settle выполняет итоговый расчёт в одной транзакции: назначает
	// уникальные места нумерацией строк в порядке таблицы лидеров,
	// записывает coins_earned = 2 * correct_count и переводит участников
	// в finished. Повторный вызов детерминированно приводит к тем же
	// местам и монетам.
	// Возвращает рассчитанных участников в порядке рангов.
	Settle(ctx context.Context, quizID string) ([]entity.Participant, error)
}
