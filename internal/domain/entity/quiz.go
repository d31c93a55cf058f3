package entity

import (
	"time"
)

// Константы статусов викторины
const (
	QuizStatusCreated   = "created"
	QuizStatusWaiting   = "waiting"
	QuizStatusActive    = "active"
	QuizStatusFinished  = "finished"
	QuizStatusCancelled = "cancelled"
)

// Ограничения уровня платформы
const (
	MaxParticipantsPerQuiz = 40
	DefaultQuestionPoints  = 100
	MinTimePerQuestionSec  = 1
	MaxTimePerQuestionSec  = 300
)

// Quiz представляет живую викторину, проводимую учителем
type Quiz struct {
	ID                   string     `gorm:"primaryKey;size:8" json:"id"`
	HostID               string     `gorm:"size:8;not null;index" json:"host_id"`
	Title                string     `gorm:"size:100;not null" json:"title"`
	Description          string     `gorm:"size:500;not null;default:''" json:"description"`
	JoinCode             string     `gorm:"size:6;not null;index" json:"join_code"`
	TimePerQuestion      int        `gorm:"not null;default:20" json:"time_per_question"`
	ShuffleQuestions     bool       `gorm:"not null;default:false" json:"shuffle_questions"`
	ShuffleOptions       bool       `gorm:"not null;default:false" json:"shuffle_options"`
	MaxParticipants      int        `gorm:"not null;default:40" json:"max_participants"`
	Status               string     `gorm:"size:20;not null;default:'created';index" json:"status"`
	CurrentQuestionIndex int        `gorm:"not null;default:0" json:"current_question_index"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	EndedAt              *time.Time `json:"ended_at,omitempty"`
	Questions            []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// IsCreated проверяет, что викторина ещё не открыта для подключения
func (q *Quiz) IsCreated() bool {
	return q.Status == QuizStatusCreated
}

// IsWaiting проверяет, открыто ли лобби для подключения игроков
func (q *Quiz) IsWaiting() bool {
	return q.Status == QuizStatusWaiting
}

// IsActive проверяет, идёт ли викторина прямо сейчас
func (q *Quiz) IsActive() bool {
	return q.Status == QuizStatusActive
}

// IsTerminal проверяет, находится ли викторина в конечном состоянии.
// Из finished и cancelled переходов нет; join-код после этого освобождается.
func (q *Quiz) IsTerminal() bool {
	return q.Status == QuizStatusFinished || q.Status == QuizStatusCancelled
}

// IsPastLastQuestion проверяет, вышел ли указатель текущего вопроса за последний вопрос
func (q *Quiz) IsPastLastQuestion(totalQuestions int) bool {
	return q.CurrentQuestionIndex >= totalQuestions
}
