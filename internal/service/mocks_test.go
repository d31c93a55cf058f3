package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
	"github.com/Hazratqul21/alif-24-sub000/internal/domain/repository"
)

// ============================================================================
// Моки репозиториев для тестов сервисов
// ============================================================================

// MockQuizRepository реализует repository.QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *entity.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id string) (*entity.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetWithQuestions(ctx context.Context, id string) (*entity.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByJoinCode(ctx context.Context, code string) (*entity.Quiz, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) JoinCodeInUse(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuizRepository) ListByHost(ctx context.Context, hostID string, limit, offset int) ([]entity.Quiz, int64, error) {
	args := m.Called(ctx, hostID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) OpenLobby(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockQuizRepository) Start(ctx context.Context, quizID string, startedAt time.Time) error {
	args := m.Called(ctx, quizID, startedAt)
	return args.Error(0)
}

func (m *MockQuizRepository) Finish(ctx context.Context, quizID string, endedAt time.Time) error {
	args := m.Called(ctx, quizID, endedAt)
	return args.Error(0)
}

func (m *MockQuizRepository) Cancel(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockQuizRepository) AdvanceQuestionIndex(ctx context.Context, quizID string, fromIndex int) (bool, error) {
	args := m.Called(ctx, quizID, fromIndex)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuizRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []entity.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByQuizID(ctx context.Context, quizID string) ([]entity.Question, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByQuizAndPosition(ctx context.Context, quizID string, position int) (*entity.Question, error) {
	args := m.Called(ctx, quizID, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByQuizID(ctx context.Context, quizID string) (int64, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).(int64), args.Error(1)
}

// MockParticipantRepository реализует repository.ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) CreateBounded(ctx context.Context, participant *entity.Participant, maxParticipants int) error {
	args := m.Called(ctx, participant, maxParticipants)
	return args.Error(0)
}

func (m *MockParticipantRepository) GetByID(ctx context.Context, id string) (*entity.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetByQuizAndPlayer(ctx context.Context, quizID, playerID string) (*entity.Participant, error) {
	args := m.Called(ctx, quizID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ListByQuiz(ctx context.Context, quizID string) ([]entity.Participant, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Participant), args.Error(1)
}

func (m *MockParticipantRepository) CountByQuiz(ctx context.Context, quizID string) (int64, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParticipantRepository) SetStateForQuiz(ctx context.Context, quizID, state string) error {
	args := m.Called(ctx, quizID, state)
	return args.Error(0)
}

func (m *MockParticipantRepository) Settle(ctx context.Context, quizID string) ([]entity.Participant, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Participant), args.Error(1)
}

// MockAnswerRepository реализует repository.AnswerRepository
type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) Submit(ctx context.Context, answer *entity.Answer) (*entity.Participant, error) {
	args := m.Called(ctx, answer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Participant), args.Error(1)
}

func (m *MockAnswerRepository) GetByParticipantAndQuestion(ctx context.Context, participantID, questionID string) (*entity.Answer, error) {
	args := m.Called(ctx, participantID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Answer), args.Error(1)
}

func (m *MockAnswerRepository) Exists(ctx context.Context, participantID, questionID string) (bool, error) {
	args := m.Called(ctx, participantID, questionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAnswerRepository) ListByParticipant(ctx context.Context, participantID string) ([]entity.Answer, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Answer), args.Error(1)
}

func (m *MockAnswerRepository) StatsByQuestion(ctx context.Context, questionID string, optionCount int) (*repository.AnswerStats, error) {
	args := m.Called(ctx, questionID, optionCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.AnswerStats), args.Error(1)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// MockRewardSink реализует repository.RewardSink
type MockRewardSink struct {
	mock.Mock
}

func (m *MockRewardSink) Credit(ctx context.Context, playerID string, amount int, reason, reference string) error {
	args := m.Called(ctx, playerID, amount, reason, reference)
	return args.Error(0)
}

// MockNotifier реализует QuizNotifier и запоминает разосланные события
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) BroadcastToQuiz(quizID string, eventType string, payload interface{}) {
	m.Called(quizID, eventType, payload)
}
