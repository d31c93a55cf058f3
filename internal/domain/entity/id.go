package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Длина непрозрачных идентификаторов сущностей
const IDLength = 8

// NewID возвращает новый непрозрачный 8-символьный идентификатор.
// Первые 8 hex-символов UUIDv4 дают 32 бита энтропии - достаточно
// при уникальных индексах БД в качестве последней линии защиты.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:IDLength]
}

// IsValidID проверяет, похожа ли строка на идентификатор сущности
func IsValidID(id string) bool {
	if len(id) != IDLength {
		return false
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
