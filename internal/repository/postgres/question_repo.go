package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
	apperrors "github.com/Hazratqul21/alif-24-sub000/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// CreateBatch сохраняет пакет вопросов одним запросом
func (r *QuestionRepo) CreateBatch(ctx context.Context, questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&questions).Error
	if err != nil && isUniqueViolation(err) {
		// Конкурентное добавление заняло те же позиции (quiz_id, position)
		return fmt.Errorf("%w: question positions already taken", apperrors.ErrConflict)
	}
	return err
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).First(&question, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByQuizID возвращает вопросы викторины в порядке позиций
func (r *QuestionRepo) GetByQuizID(ctx context.Context, quizID string) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// GetByQuizAndPosition возвращает вопрос по его позиции в викторине
func (r *QuestionRepo) GetByQuizAndPosition(ctx context.Context, quizID string, position int) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND position = ?", quizID, position).
		First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// CountByQuizID возвращает количество вопросов в викторине
func (r *QuestionRepo) CountByQuizID(ctx context.Context, quizID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return count, err
}
