package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/repository"
	apperrors "github.com/Hazratqul21/alif-24-sub000/internal/pkg/errors"
	redisrepo "github.com/Hazratqul21/alif-24-sub000/internal/repository/redis"
)

const (
	joinCodeSpace          = 1000000
	joinCodeReservationTTL = 30 * time.Second
)

// JoinCodeGenerator выдает уникальные 6-значные коды подключения.
// Уникальность проверяется среди незавершенных викторин: код завершенной
// викторины можно переиспользовать.
type JoinCodeGenerator struct {
	quizRepo  repository.QuizRepository
	cacheRepo repository.CacheRepository
	attempts  int
}

// NewJoinCodeGenerator создает новый генератор кодов подключения
func NewJoinCodeGenerator(quizRepo repository.QuizRepository, cacheRepo repository.CacheRepository, attempts int) *JoinCodeGenerator {
	if attempts <= 0 {
		attempts = 16
	}
	return &JoinCodeGenerator{
		quizRepo:  quizRepo,
		cacheRepo: cacheRepo,
		attempts:  attempts,
	}
}

// Generate возвращает свободный код подключения или ErrCodeExhausted,
// если за отведенное число попыток свободный код не нашелся
func (g *JoinCodeGenerator) Generate(ctx context.Context) (string, error) {
	for i := 0; i < g.attempts; i++ {
		code, err := randomJoinCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}

		// Код, зарезервированный конкурентным генератором, отсеивается
		// без похода в БД; ошибка кеша не мешает основной проверке
		if g.cacheRepo != nil {
			if reserved, err := g.cacheRepo.Exists(redisrepo.JoinCodeKey(code)); err == nil && reserved {
				continue
			}
		}

		inUse, err := g.quizRepo.JoinCodeInUse(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to probe join code: %w", err)
		}
		if inUse {
			continue
		}

		// Короткая резервация в кеше закрывает окно между проверкой и
		// записью викторины в БД. Кеш необязателен: при его отсутствии
		// коллизию поймает уникальный индекс по join_code.
		if g.cacheRepo != nil {
			reserved, err := g.cacheRepo.SetNX(redisrepo.JoinCodeKey(code), "1", joinCodeReservationTTL)
			if err != nil {
				log.Printf("[JoinCode] Ошибка резервации кода в кеше: %v", err)
			} else if !reserved {
				continue
			}
		}

		return code, nil
	}

	log.Printf("[JoinCode] Не удалось подобрать свободный код за %d попыток", g.attempts)
	return "", apperrors.ErrCodeExhausted
}

func randomJoinCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(joinCodeSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
