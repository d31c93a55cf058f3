package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
	apperrors "github.com/Hazratqul21/alif-24-sub000/internal/pkg/errors"
)

// Порядок таблицы лидеров: очки, лучшая серия, время входа, затем id.
// joined_at не уникален (два входа в одну микросекунду), финальный ключ id
// делает порядок полным и детерминированным.
const leaderboardOrder = "total_score DESC, best_streak DESC, joined_at ASC, id ASC"

// settleRanksSQL присваивает места нумерацией строк. ROW_NUMBER, в отличие
// от RANK, не выдает делённые места при совпадении всей тройки сортировки,
// поэтому место каждого участника уникально в [1, N]. Оконный ORDER BY
// совпадает с leaderboardOrder, так что пересчет воспроизводит те же места.
const settleRanksSQL = `
	WITH ranked AS (
	    SELECT
	        id,
	        ROW_NUMBER() OVER (ORDER BY ` + leaderboardOrder + `) AS calculated_rank
	    FROM participants
	    WHERE quiz_id = ?
	)
	UPDATE participants p
	SET rank = r.calculated_rank,
	    coins_earned = p.correct_count * ?,
	    state = ?
	FROM ranked r
	WHERE p.id = r.id AND p.quiz_id = ?;`

// ParticipantRepo реализует repository.ParticipantRepository
type ParticipantRepo struct {
	db *gorm.DB
}

// NewParticipantRepo создает новый репозиторий участников
func NewParticipantRepo(db *gorm.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

// CreateBounded создаёт участника с проверкой вместимости лобби.
// Вставка и пересчёт выполняются в одной транзакции: при гонке
// count-then-insert лишняя вставка откатывается с ErrLobbyFull.
func (r *ParticipantRepo) CreateBounded(ctx context.Context, participant *entity.Participant, maxParticipants int) error {
	err := r.createBounded(ctx, participant, maxParticipants)
	// Повторный вход бьется об (quiz_id, player_id); коллизия короткого ID
	// о первичный ключ лечится одним повтором с новым ID
	if constraint, ok := uniqueViolationConstraint(err); ok && constraint == constraintJoinsPK {
		participant.ID = entity.NewID()
		err = r.createBounded(ctx, participant, maxParticipants)
	}
	return err
}

func (r *ParticipantRepo) createBounded(ctx context.Context, participant *entity.Participant, maxParticipants int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(participant).Error; err != nil {
			if constraint, ok := uniqueViolationConstraint(err); ok && constraint != constraintJoinsPK {
				return apperrors.ErrDuplicateJoin
			}
			return fmt.Errorf("failed to create participant: %w", err)
		}

		var count int64
		if err := tx.Model(&entity.Participant{}).
			Where("quiz_id = ?", participant.QuizID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}

		if count > int64(maxParticipants) {
			return apperrors.ErrLobbyFull
		}
		return nil
	})
}

// GetByID возвращает участника по ID
func (r *ParticipantRepo) GetByID(ctx context.Context, id string) (*entity.Participant, error) {
	var participant entity.Participant
	err := r.db.WithContext(ctx).First(&participant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &participant, nil
}

// GetByQuizAndPlayer возвращает участие игрока в конкретной викторине
func (r *ParticipantRepo) GetByQuizAndPlayer(ctx context.Context, quizID, playerID string) (*entity.Participant, error) {
	var participant entity.Participant
	err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND player_id = ?", quizID, playerID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &participant, nil
}

// ListByQuiz возвращает участников в порядке таблицы лидеров
func (r *ParticipantRepo) ListByQuiz(ctx context.Context, quizID string) ([]entity.Participant, error) {
	var participants []entity.Participant
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order(leaderboardOrder).
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

// CountByQuiz возвращает количество участников викторины
func (r *ParticipantRepo) CountByQuiz(ctx context.Context, quizID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Participant{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return count, err
}

// SetStateForQuiz переводит всех участников викторины в указанное состояние
func (r *ParticipantRepo) SetStateForQuiz(ctx context.Context, quizID, state string) error {
	return r.db.WithContext(ctx).Model(&entity.Participant{}).
		Where("quiz_id = ?", quizID).
		Update("state", state).Error
}

// Settle выполняет итоговый расчёт участников викторины.
// Места присваиваются оконной нумерацией строк в том же порядке, что и
// таблица лидеров, монеты - по числу правильных ответов. Запрос
// детерминирован, поэтому повторный расчёт оставляет места и монеты
// неизменными.
func (r *ParticipantRepo) Settle(ctx context.Context, quizID string) ([]entity.Participant, error) {
	var settled []entity.Participant

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(settleRanksSQL, quizID, entity.CoinsPerCorrectAnswer,
			entity.ParticipantStateFinished, quizID).Error; err != nil {
			log.Printf("[ParticipantRepo] Ошибка расчёта рангов для викторины %s: %v", quizID, err)
			return err
		}

		return tx.Where("quiz_id = ?", quizID).
			Order("rank ASC").
			Find(&settled).Error
	})
	if err != nil {
		return nil, err
	}

	return settled, nil
}
