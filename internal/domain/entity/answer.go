package entity

import (
	"time"
)

// Answer представляет ответ участника на вопрос.
// Пара (participant_id, question_id) уникальна: повторная отправка отклоняется
// ограничением базы, а не проверкой в памяти. Запись неизменяема после создания.
type Answer struct {
	ID             string    `gorm:"primaryKey;size:8" json:"id"`
	ParticipantID  string    `gorm:"size:8;not null;uniqueIndex:idx_participant_question" json:"participant_id"`
	QuestionID     string    `gorm:"size:8;not null;uniqueIndex:idx_participant_question;index" json:"question_id"`
	SelectedIndex  int       `gorm:"not null;default:-1" json:"selected_index"`
	IsCorrect      bool      `gorm:"not null" json:"is_correct"`
	PointsEarned   int       `gorm:"not null;default:0" json:"points_earned"`
	TimeToAnswerMs int64     `gorm:"not null" json:"time_to_answer_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Answer) TableName() string {
	return "answers"
}
