package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	// Обработка пустого массива байтов
	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Ограничения на вопрос
const (
	MinOptionsPerQuestion = 2
	MaxOptionsPerQuestion = 6
)

// Question представляет вопрос викторины
type Question struct {
	ID           string      `gorm:"primaryKey;size:8" json:"id"`
	QuizID       string      `gorm:"size:8;not null;uniqueIndex:idx_quiz_position;index" json:"quiz_id"`
	Position     int         `gorm:"not null;uniqueIndex:idx_quiz_position" json:"position"`
	Text         string      `gorm:"size:500;not null" json:"text"`
	Image        string      `gorm:"size:255;not null;default:''" json:"image,omitempty"`
	Options      StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectIndex int         `gorm:"not null" json:"-"` // Скрыто от игроков
	Points       int         `gorm:"not null;default:100" json:"points"`
	TimeLimitSec int         `gorm:"not null;default:20" json:"time_limit_sec"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(selectedIndex int) bool {
	return selectedIndex == q.CorrectIndex
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedIndex int) bool {
	return selectedIndex >= 0 && selectedIndex < len(q.Options)
}

// ClampResponseTime приводит заявленное клиентом время ответа к допустимому
// диапазону [0, time_limit*1000] мс. Значения за пределами не отклоняются,
// а обрезаются: сервер остаётся единственным источником истины для очков.
func (q *Question) ClampResponseTime(responseTimeMs int64) int64 {
	if responseTimeMs < 0 {
		return 0
	}
	limitMs := int64(q.TimeLimitSec) * 1000
	if responseTimeMs > limitMs {
		return limitMs
	}
	return responseTimeMs
}

// CalculatePoints рассчитывает очки за ответ с линейным штрафом за время.
// Вычисление целочисленное и воспроизводимое бит в бит:
//
//	penalty = time_ms / (time_limit * 10)
//	earned  = max(points - penalty, points/2)
//
// Правильный ответ никогда не стоит меньше половины номинала - иначе игроку
// у дедлайна выгоднее не отвечать вовсе. Неправильный ответ всегда 0.
func (q *Question) CalculatePoints(isCorrect bool, responseTimeMs int64) int {
	if !isCorrect {
		return 0
	}
	if q.TimeLimitSec <= 0 {
		return q.Points
	}

	responseTimeMs = q.ClampResponseTime(responseTimeMs)
	penalty := int(responseTimeMs / int64(q.TimeLimitSec*10))

	earned := q.Points - penalty
	if floor := q.Points / 2; earned < floor {
		earned = floor
	}
	return earned
}
