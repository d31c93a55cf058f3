package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Имена ограничений из migrations/000001_init.up.sql, по которым
// различаются виды unique violation.
const (
	constraintAnswerPerQuestion = "idx_participant_question"
	constraintJoinPerQuiz       = "idx_quiz_player"
	constraintCreditPerPlayer   = "idx_reference_player"
	constraintActiveJoinCode    = "idx_quizzes_active_join_code"

	constraintAnswersPK = "answers_pkey"
	constraintJoinsPK   = "participants_pkey"
	constraintCreditsPK = "coin_transactions_pkey"
	constraintQuizzesPK = "quizzes_pkey"
)

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	_, ok := uniqueViolationConstraint(err)
	return ok
}

// uniqueViolationConstraint возвращает имя нарушенного уникального
// ограничения. Доменные конфликты (повторный ответ, повторный вход,
// повторное начисление) и коллизию первичного ключа различает именно оно.
func uniqueViolationConstraint(err error) (string, bool) {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}
