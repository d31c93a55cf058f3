package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
	"github.com/Hazratqul21/alif-24-sub000/internal/domain/repository"
	apperrors "github.com/Hazratqul21/alif-24-sub000/internal/pkg/errors"
)

// AnswerRepo реализует repository.AnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий ответов
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Submit атомарно сохраняет ответ и применяет его к агрегатам участника.
// Вставка идёт первой (DB first): уникальный индекс (participant_id,
// question_id) гарантирует, что из двух конкурентных отправок агрегаты
// получит ровно одна, проигравшая завершится ErrAlreadyAnswered.
func (r *AnswerRepo) Submit(ctx context.Context, answer *entity.Answer) (*entity.Participant, error) {
	participant, err := r.submit(ctx, answer)
	// 23505 различается по ограничению: повтор игрока бьется об
	// (participant_id, question_id), а коллизия короткого ID - о первичный
	// ключ и лечится одним повтором с новым ID. Ошибка внутри транзакции
	// отменяет ее целиком, поэтому повтор идет новой транзакцией.
	if constraint, ok := uniqueViolationConstraint(err); ok && constraint == constraintAnswersPK {
		answer.ID = entity.NewID()
		participant, err = r.submit(ctx, answer)
	}
	return participant, err
}

func (r *AnswerRepo) submit(ctx context.Context, answer *entity.Answer) (*entity.Participant, error) {
	var participant entity.Participant

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(answer).Error; err != nil {
			if constraint, ok := uniqueViolationConstraint(err); ok && constraint != constraintAnswersPK {
				return apperrors.ErrAlreadyAnswered
			}
			return fmt.Errorf("failed to save answer: %w", err)
		}

		// Агрегаты обновляются одним UPDATE: все выражения читают старые
		// значения строки, поэтому GREATEST корректно видит серию до инкремента
		var updates map[string]interface{}
		if answer.IsCorrect {
			updates = map[string]interface{}{
				"total_score":    gorm.Expr("total_score + ?", answer.PointsEarned),
				"correct_count":  gorm.Expr("correct_count + 1"),
				"current_streak": gorm.Expr("current_streak + 1"),
				"best_streak":    gorm.Expr("GREATEST(best_streak, current_streak + 1)"),
			}
		} else {
			updates = map[string]interface{}{
				"wrong_count":    gorm.Expr("wrong_count + 1"),
				"current_streak": 0,
			}
		}

		if err := tx.Model(&entity.Participant{}).
			Where("id = ?", answer.ParticipantID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to apply answer to participant aggregates: %w", err)
		}

		return tx.First(&participant, "id = ?", answer.ParticipantID).Error
	})
	if err != nil {
		return nil, err
	}

	return &participant, nil
}

// GetByParticipantAndQuestion возвращает ответ участника на вопрос
func (r *AnswerRepo) GetByParticipantAndQuestion(ctx context.Context, participantID, questionID string) (*entity.Answer, error) {
	var answer entity.Answer
	err := r.db.WithContext(ctx).
		Where("participant_id = ? AND question_id = ?", participantID, questionID).
		First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &answer, nil
}

// Exists проверяет, отвечал ли участник на вопрос
func (r *AnswerRepo) Exists(ctx context.Context, participantID, questionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Answer{}).
		Where("participant_id = ? AND question_id = ?", participantID, questionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByParticipant возвращает все ответы участника
func (r *AnswerRepo) ListByParticipant(ctx context.Context, participantID string) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("created_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// StatsByQuestion возвращает распределение ответов по вариантам вопроса
func (r *AnswerRepo) StatsByQuestion(ctx context.Context, questionID string, optionCount int) (*repository.AnswerStats, error) {
	type optionRow struct {
		SelectedIndex int
		Cnt           int
	}
	var rows []optionRow

	err := r.db.WithContext(ctx).Model(&entity.Answer{}).
		Select("selected_index, COUNT(*) as cnt").
		Where("question_id = ?", questionID).
		Group("selected_index").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &repository.AnswerStats{
		OptionCounts: make([]int, optionCount),
	}
	for _, row := range rows {
		if row.SelectedIndex >= 0 && row.SelectedIndex < optionCount {
			stats.OptionCounts[row.SelectedIndex] = row.Cnt
		}
		stats.TotalAnswers += row.Cnt
	}

	var correct int64
	err = r.db.WithContext(ctx).Model(&entity.Answer{}).
		Where("question_id = ? AND is_correct = true", questionID).
		Count(&correct).Error
	if err != nil {
		return nil, err
	}
	stats.CorrectCount = int(correct)

	return stats, nil
}
