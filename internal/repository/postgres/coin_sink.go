package postgres

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
)

// CoinSink начисляет монеты через таблицу coin_transactions.
// Идемпотентность обеспечивает уникальный индекс (reference, player_id):
// повторное начисление по той же ссылке молча игнорируется.
type CoinSink struct {
	db *gorm.DB
}

// NewCoinSink создает новый sink начислений
func NewCoinSink(db *gorm.DB) *CoinSink {
	return &CoinSink{db: db}
}

// Credit начисляет игроку amount монет по ссылке reference
func (s *CoinSink) Credit(ctx context.Context, playerID string, amount int, reason, reference string) error {
	if amount <= 0 {
		return nil
	}

	transaction := &entity.CoinTransaction{
		ID:        entity.NewID(),
		PlayerID:  playerID,
		Amount:    amount,
		Reason:    reason,
		Reference: reference,
	}

	err := s.db.WithContext(ctx).Create(transaction).Error
	// Коллизия короткого ID о первичный ключ лечится повтором с новым ID;
	// дедупликация начислений различается по ограничению (reference, player_id)
	if constraint, ok := uniqueViolationConstraint(err); ok && constraint == constraintCreditsPK {
		transaction.ID = entity.NewID()
		err = s.db.WithContext(ctx).Create(transaction).Error
	}
	if err != nil {
		if constraint, ok := uniqueViolationConstraint(err); ok && constraint != constraintCreditsPK {
			log.Printf("[CoinSink] Повторное начисление пропущено: player=%s reference=%s", playerID, reference)
			return nil
		}
		return fmt.Errorf("failed to credit coins: %w", err)
	}

	log.Printf("[CoinSink] Начислено %d монет: player=%s reason=%s reference=%s", amount, playerID, reason, reference)
	return nil
}
