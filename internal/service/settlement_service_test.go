package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
	apperrors "github.com/Hazratqul21/alif-24-sub000/internal/pkg/errors"
	redisrepo "github.com/Hazratqul21/alif-24-sub000/internal/repository/redis"
)

func TestSettlementService_FinalizeQuiz_CreditsCoins(t *testing.T) {
	// Arrange: два участника с монетами, один без правильных ответов
	mockParticipantRepo := new(MockParticipantRepository)
	mockSink := new(MockRewardSink)
	settled := []entity.Participant{
		{ID: "part0001", PlayerID: "play0001", Rank: 1, CorrectCount: 3, CoinsEarned: 6},
		{ID: "part0002", PlayerID: "play0002", Rank: 2, CorrectCount: 1, CoinsEarned: 2},
		{ID: "part0003", PlayerID: "play0003", Rank: 3, CorrectCount: 0, CoinsEarned: 0},
	}

	mockParticipantRepo.On("Settle", mock.Anything, "quiz0001").Return(settled, nil)
	mockSink.On("Credit", mock.Anything, "play0001", 6, entity.CoinReasonQuizReward, "quiz0001").Return(nil)
	mockSink.On("Credit", mock.Anything, "play0002", 2, entity.CoinReasonQuizReward, "quiz0001").Return(nil)

	service := NewSettlementService(mockParticipantRepo, mockSink, nil, nil)

	// Act
	leaderboard, err := service.FinalizeQuiz(context.Background(), "quiz0001")

	// Assert
	require.NoError(t, err)
	assert.Len(t, leaderboard, 3)
	// Участник без монет не порождает начисления
	mockSink.AssertNumberOfCalls(t, "Credit", 2)
	mockSink.AssertExpectations(t)
}

func TestSettlementService_FinalizeQuiz_PartialCreditFailure(t *testing.T) {
	// Arrange: начисление второму участнику падает; ранги уже записаны,
	// ошибка поднимается наверх для повторного вызова
	mockParticipantRepo := new(MockParticipantRepository)
	mockSink := new(MockRewardSink)
	settled := []entity.Participant{
		{ID: "part0001", PlayerID: "play0001", Rank: 1, CoinsEarned: 6},
		{ID: "part0002", PlayerID: "play0002", Rank: 2, CoinsEarned: 2},
	}

	mockParticipantRepo.On("Settle", mock.Anything, "quiz0001").Return(settled, nil)
	mockSink.On("Credit", mock.Anything, "play0001", 6, entity.CoinReasonQuizReward, "quiz0001").Return(nil)
	mockSink.On("Credit", mock.Anything, "play0002", 2, entity.CoinReasonQuizReward, "quiz0001").Return(errors.New("sink unavailable"))

	service := NewSettlementService(mockParticipantRepo, mockSink, nil, nil)

	// Act
	leaderboard, err := service.FinalizeQuiz(context.Background(), "quiz0001")

	// Assert
	require.Error(t, err)
	assert.Len(t, leaderboard, 2, "Ранги возвращаются даже при сбое начислений")
	// Первый участник начислен, сбой второго не прерывает остальных
	mockSink.AssertExpectations(t)
}

func TestSettlementService_FinalizeQuiz_Notifies(t *testing.T) {
	// Arrange
	mockParticipantRepo := new(MockParticipantRepository)
	mockSink := new(MockRewardSink)
	mockNotifier := new(MockNotifier)
	settled := []entity.Participant{{ID: "part0001", PlayerID: "play0001", Rank: 1, CoinsEarned: 2}}

	mockParticipantRepo.On("Settle", mock.Anything, "quiz0001").Return(settled, nil)
	mockSink.On("Credit", mock.Anything, "play0001", 2, entity.CoinReasonQuizReward, "quiz0001").Return(nil)
	mockNotifier.On("BroadcastToQuiz", "quiz0001", "quiz:finished", mock.Anything).Return()

	service := NewSettlementService(mockParticipantRepo, mockSink, nil, mockNotifier)

	// Act
	_, err := service.FinalizeQuiz(context.Background(), "quiz0001")

	// Assert
	require.NoError(t, err)
	mockNotifier.AssertExpectations(t)
}

func TestSettlementService_FinalizeQuiz_CachesLeaderboard(t *testing.T) {
	// Arrange
	mockParticipantRepo := new(MockParticipantRepository)
	mockSink := new(MockRewardSink)
	mockCache := new(MockCacheRepository)
	settled := []entity.Participant{{ID: "part0001", PlayerID: "play0001", Rank: 1, CoinsEarned: 2}}

	mockParticipantRepo.On("Settle", mock.Anything, "quiz0001").Return(settled, nil)
	mockSink.On("Credit", mock.Anything, "play0001", 2, entity.CoinReasonQuizReward, "quiz0001").Return(nil)
	mockCache.On("SetJSON", redisrepo.LeaderboardKey("quiz0001"), mock.Anything, leaderboardCacheTTL).Return(nil)

	service := NewSettlementService(mockParticipantRepo, mockSink, mockCache, nil)

	// Act
	_, err := service.FinalizeQuiz(context.Background(), "quiz0001")

	// Assert
	require.NoError(t, err)
	mockCache.AssertExpectations(t)
}

func TestSettlementService_Leaderboard_CacheHit(t *testing.T) {
	// Arrange: кеш наполнен итоговым расчетом, БД не трогаем
	mockParticipantRepo := new(MockParticipantRepository)
	mockCache := new(MockCacheRepository)
	cached := []entity.Participant{
		{ID: "part0001", Rank: 1, TotalScore: 250},
		{ID: "part0002", Rank: 2, TotalScore: 175},
	}

	mockCache.On("GetJSON", redisrepo.LeaderboardKey("quiz0001"), mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(1).(*[]entity.Participant)
			*dest = cached
		}).
		Return(nil)

	service := NewSettlementService(mockParticipantRepo, new(MockRewardSink), mockCache, nil)

	// Act
	leaderboard, err := service.Leaderboard(context.Background(), "quiz0001")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, cached, leaderboard)
	mockParticipantRepo.AssertNotCalled(t, "ListByQuiz", mock.Anything, mock.Anything)
}

func TestSettlementService_Leaderboard_CacheMissFallsBackToDB(t *testing.T) {
	// Arrange: активная викторина еще не рассчитана, кеш пуст
	mockParticipantRepo := new(MockParticipantRepository)
	mockCache := new(MockCacheRepository)
	stored := []entity.Participant{{ID: "part0001", TotalScore: 100}}

	mockCache.On("GetJSON", redisrepo.LeaderboardKey("quiz0001"), mock.Anything).Return(apperrors.ErrNotFound)
	mockParticipantRepo.On("ListByQuiz", mock.Anything, "quiz0001").Return(stored, nil)

	service := NewSettlementService(mockParticipantRepo, new(MockRewardSink), mockCache, nil)

	// Act
	leaderboard, err := service.Leaderboard(context.Background(), "quiz0001")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, stored, leaderboard)
	mockParticipantRepo.AssertExpectations(t)
}
