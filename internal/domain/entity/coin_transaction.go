package entity

import (
	"time"
)

// Причины начисления монет
const (
	CoinReasonQuizReward = "quiz_reward"
)

// CoinTransaction представляет начисление монет игроку.
// Пара (reference, player_id) уникальна - это и есть гарантия идемпотентности
// Reward Sink: повторное начисление за ту же викторину молча игнорируется.
type CoinTransaction struct {
	ID        string    `gorm:"primaryKey;size:8" json:"id"`
	PlayerID  string    `gorm:"size:8;not null;uniqueIndex:idx_reference_player" json:"player_id"`
	Amount    int       `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"size:50;not null" json:"reason"`
	Reference string    `gorm:"size:8;not null;uniqueIndex:idx_reference_player" json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (CoinTransaction) TableName() string {
	return "coin_transactions"
}
