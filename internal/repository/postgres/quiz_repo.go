package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
	apperrors "github.com/Hazratqul21/alif-24-sub000/internal/pkg/errors"
)

// Статусы, в которых join-код считается занятым
var nonTerminalStatuses = []string{
	entity.QuizStatusCreated,
	entity.QuizStatusWaiting,
	entity.QuizStatusActive,
}

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// Create создает новую викторину
func (r *QuizRepo) Create(ctx context.Context, quiz *entity.Quiz) error {
	err := r.db.WithContext(ctx).Create(quiz).Error
	// Коллизия короткого ID о первичный ключ лечится повтором с новым ID
	if constraint, ok := uniqueViolationConstraint(err); ok && constraint == constraintQuizzesPK {
		quiz.ID = entity.NewID()
		err = r.db.WithContext(ctx).Create(quiz).Error
	}
	if err != nil {
		if constraint, ok := uniqueViolationConstraint(err); ok && constraint != constraintQuizzesPK {
			// Частичный уникальный индекс по join_code среди неконечных викторин
			return fmt.Errorf("%w: join code %q", apperrors.ErrConflict, quiz.JoinCode)
		}
		return err
	}
	return nil
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(ctx context.Context, id string) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.WithContext(ctx).First(&quiz, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину вместе с вопросами в порядке позиций
func (r *QuizRepo) GetWithQuestions(ctx context.Context, id string) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&quiz, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetByJoinCode возвращает неконечную викторину по join-коду
func (r *QuizRepo) GetByJoinCode(ctx context.Context, code string) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.WithContext(ctx).
		Where("join_code = ? AND status IN ?", code, nonTerminalStatuses).
		First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// JoinCodeInUse проверяет, занят ли код неконечной викториной
func (r *QuizRepo) JoinCodeInUse(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Quiz{}).
		Where("join_code = ? AND status IN ?", code, nonTerminalStatuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByHost возвращает викторины владельца с пагинацией и total count
func (r *QuizRepo) ListByHost(ctx context.Context, hostID string, limit, offset int) ([]entity.Quiz, int64, error) {
	var quizzes []entity.Quiz
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Quiz{}).Where("host_id = ?", hostID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("created_at DESC").Find(&quizzes).Error
	if err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

// OpenLobby атомарно переводит created → waiting.
// RowsAffected == 0 → викторина не в состоянии created.
func (r *QuizRepo) OpenLobby(ctx context.Context, quizID string) error {
	result := r.db.WithContext(ctx).Model(&entity.Quiz{}).
		Where("id = ? AND status = ?", quizID, entity.QuizStatusCreated).
		Update("status", entity.QuizStatusWaiting)

	if result.Error != nil {
		return fmt.Errorf("open lobby for quiz %s failed: %w", quizID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: quiz %s is not in created state", apperrors.ErrInvalidState, quizID)
	}
	return nil
}

// Start атомарно переводит waiting → active и сбрасывает указатель вопроса
func (r *QuizRepo) Start(ctx context.Context, quizID string, startedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&entity.Quiz{}).
		Where("id = ? AND status = ?", quizID, entity.QuizStatusWaiting).
		Updates(map[string]interface{}{
			"status":                 entity.QuizStatusActive,
			"current_question_index": 0,
			"started_at":             startedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("start quiz %s failed: %w", quizID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: quiz %s is not in waiting state", apperrors.ErrInvalidState, quizID)
	}
	return nil
}

// Finish атомарно переводит active → finished
func (r *QuizRepo) Finish(ctx context.Context, quizID string, endedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&entity.Quiz{}).
		Where("id = ? AND status = ?", quizID, entity.QuizStatusActive).
		Updates(map[string]interface{}{
			"status":   entity.QuizStatusFinished,
			"ended_at": endedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("finish quiz %s failed: %w", quizID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: quiz %s is not active", apperrors.ErrInvalidState, quizID)
	}
	return nil
}

// Cancel атомарно переводит created|waiting → cancelled
func (r *QuizRepo) Cancel(ctx context.Context, quizID string) error {
	result := r.db.WithContext(ctx).Model(&entity.Quiz{}).
		Where("id = ? AND status IN ?", quizID,
			[]string{entity.QuizStatusCreated, entity.QuizStatusWaiting}).
		Update("status", entity.QuizStatusCancelled)

	if result.Error != nil {
		return fmt.Errorf("cancel quiz %s failed: %w", quizID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: quiz %s cannot be cancelled", apperrors.ErrInvalidState, quizID)
	}
	return nil
}

// AdvanceQuestionIndex оптимистично продвигает указатель текущего вопроса.
// Условие WHERE по fromIndex гарантирует: из двух конкурентных продвижений
// с одного индекса зафиксируется ровно одно, горячая строка не блокируется.
func (r *QuizRepo) AdvanceQuestionIndex(ctx context.Context, quizID string, fromIndex int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Quiz{}).
		Where("id = ? AND status = ? AND current_question_index = ?",
			quizID, entity.QuizStatusActive, fromIndex).
		Update("current_question_index", gorm.Expr("current_question_index + 1"))

	if result.Error != nil {
		return false, fmt.Errorf("advance quiz %s failed: %w", quizID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Delete удаляет викторину; вопросы, участники и ответы удаляются каскадно (FK)
func (r *QuizRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Quiz{}, "id = ?", id).Error
}
