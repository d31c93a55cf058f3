package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Итоговый расчет обязан выдавать уникальные места в [1, N]: нумерация
// строк вместо RANK, который делит место при совпадении всех ключей
// сортировки и пропускает следующее значение.
func TestSettleRanksSQL_AssignsUniqueRanks(t *testing.T) {
	assert.Contains(t, settleRanksSQL, "ROW_NUMBER() OVER (ORDER BY "+leaderboardOrder+")",
		"Оконный порядок расчета мест должен совпадать с порядком таблицы лидеров")
	assert.NotContains(t, settleRanksSQL, "RANK() OVER",
		"RANK выдает делённые места при полном совпадении ключей сортировки")
}

// joined_at не уникален (два входа в одну микросекунду), поэтому порядок
// замыкается ключом id - иначе пересчет мест недетерминирован.
func TestLeaderboardOrder_IsTotal(t *testing.T) {
	assert.True(t, strings.HasSuffix(leaderboardOrder, "id ASC"))
}
