package repository

import (
	"context"
)

// RewardSink начисляет игроку целочисленное количество монет.
// Контракт: идемпотентность по паре (reference, player_id) - движок викторин
// вызывает Credit не более одного раза на участника, но реализация обязана
// переживать повторы (повторный расчёт после сбоя середины процесса).
type RewardSink interface {
	Credit(ctx context.Context, playerID string, amount int, reason, reference string) error
}
