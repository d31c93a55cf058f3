package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
	"github.com/Hazratqul21/alif-24-sub000/internal/domain/repository"
	redisrepo "github.com/Hazratqul21/alif-24-sub000/internal/repository/redis"
)

// Итоговая таблица не меняется после расчета, кеш живет до удаления викторины
const leaderboardCacheTTL = 24 * time.Hour

// SettlementService выполняет итоговый расчет завершенной викторины:
// ранги, монеты и начисление через Reward Sink.
type SettlementService struct {
	participantRepo repository.ParticipantRepository
	rewardSink      repository.RewardSink
	cacheRepo       repository.CacheRepository
	notifier        QuizNotifier
}

// NewSettlementService создает новый сервис итогового расчета.
// Кеш необязателен: при nil cacheRepo таблица лидеров читается из БД.
func NewSettlementService(
	participantRepo repository.ParticipantRepository,
	rewardSink repository.RewardSink,
	cacheRepo repository.CacheRepository,
	notifier QuizNotifier,
) *SettlementService {
	return &SettlementService{
		participantRepo: participantRepo,
		rewardSink:      rewardSink,
		cacheRepo:       cacheRepo,
		notifier:        notifier,
	}
}

// FinalizeQuiz рассчитывает ранги и монеты участников и начисляет награды.
// Вызов идемпотентен: пересчет рангов детерминирован, а sink дедуплицирует
// начисления по (reference, player_id), поэтому повтор после сбоя середины
// процесса досчитывает недостающие кредиты и ничего не дублирует.
func (s *SettlementService) FinalizeQuiz(ctx context.Context, quizID string) ([]entity.Participant, error) {
	participants, err := s.participantRepo.Settle(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to settle quiz %s: %w", quizID, err)
	}

	s.cacheLeaderboard(quizID, participants)

	var creditErr error
	for i := range participants {
		p := &participants[i]
		if p.CoinsEarned <= 0 {
			continue
		}
		if err := s.rewardSink.Credit(ctx, p.PlayerID, p.CoinsEarned, entity.CoinReasonQuizReward, quizID); err != nil {
			log.Printf("[Settlement] Ошибка начисления: quiz=%s player=%s монет=%d err=%v",
				quizID, p.PlayerID, p.CoinsEarned, err)
			if creditErr == nil {
				creditErr = err
			}
		}
	}
	if creditErr != nil {
		// Ранги уже записаны; недоначисленные монеты доберет повторный вызов
		return participants, fmt.Errorf("settlement of quiz %s completed with credit failures: %w", quizID, creditErr)
	}

	if s.notifier != nil {
		s.notifier.BroadcastToQuiz(quizID, "quiz:finished", map[string]interface{}{
			"quiz_id":     quizID,
			"leaderboard": participants,
		})
	}

	log.Printf("[Settlement] Итоги рассчитаны: quiz=%s участников=%d", quizID, len(participants))
	return participants, nil
}

// Leaderboard возвращает таблицу лидеров викторины: рассчитанную - из
// кеша, иначе из БД в порядке таблицы лидеров.
func (s *SettlementService) Leaderboard(ctx context.Context, quizID string) ([]entity.Participant, error) {
	if s.cacheRepo != nil {
		var cached []entity.Participant
		if err := s.cacheRepo.GetJSON(redisrepo.LeaderboardKey(quizID), &cached); err == nil {
			return cached, nil
		}
	}
	return s.participantRepo.ListByQuiz(ctx, quizID)
}

// InvalidateLeaderboard убирает кешированную таблицу лидеров викторины
func (s *SettlementService) InvalidateLeaderboard(quizID string) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(redisrepo.LeaderboardKey(quizID)); err != nil {
		log.Printf("[Settlement] Ошибка сброса кеша таблицы лидеров: quiz=%s err=%v", quizID, err)
	}
}

// cacheLeaderboard сохраняет рассчитанную таблицу; кеш best-effort
func (s *SettlementService) cacheLeaderboard(quizID string, participants []entity.Participant) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.SetJSON(redisrepo.LeaderboardKey(quizID), participants, leaderboardCacheTTL); err != nil {
		log.Printf("[Settlement] Ошибка кеширования таблицы лидеров: quiz=%s err=%v", quizID, err)
	}
}
