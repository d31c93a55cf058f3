package entity

import (
	"time"
)

// Константы состояний участника.
// Состояние носит наблюдательный характер: поведение движка от него не зависит.
const (
	ParticipantStateJoined    = "joined"
	ParticipantStateAnswering = "answering"
	ParticipantStateFinished  = "finished"
)

// Участник получает 2 монеты за каждый правильный ответ при расчёте итогов
const CoinsPerCorrectAnswer = 2

// Participant представляет присутствие игрока в конкретной викторине.
// Пара (quiz_id, player_id) уникальна: один игрок - одно участие.
type Participant struct {
	ID            string    `gorm:"primaryKey;size:8" json:"id"`
	QuizID        string    `gorm:"size:8;not null;uniqueIndex:idx_quiz_player" json:"quiz_id"`
	PlayerID      string    `gorm:"size:8;not null;uniqueIndex:idx_quiz_player" json:"player_id"`
	DisplayName   string    `gorm:"size:50;not null" json:"display_name"`
	AvatarTag     string    `gorm:"size:10;not null;default:''" json:"avatar_tag"`
	State         string    `gorm:"size:20;not null;default:'joined'" json:"state"`
	JoinedAt      time.Time `gorm:"not null" json:"joined_at"`
	TotalScore    int       `gorm:"not null;default:0" json:"total_score"`
	CorrectCount  int       `gorm:"not null;default:0" json:"correct_count"`
	WrongCount    int       `gorm:"not null;default:0" json:"wrong_count"`
	CurrentStreak int       `gorm:"not null;default:0" json:"current_streak"`
	BestStreak    int       `gorm:"not null;default:0" json:"best_streak"`
	Rank          int       `gorm:"not null;default:0" json:"rank,omitempty"`
	CoinsEarned   int       `gorm:"not null;default:0" json:"coins_earned,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Participant) TableName() string {
	return "participants"
}

// IsSettled проверяет, прошёл ли участник через итоговый расчёт.
// Ранги назначаются с 1, поэтому 0 означает "ещё не рассчитан".
func (p *Participant) IsSettled() bool {
	return p.Rank > 0
}
