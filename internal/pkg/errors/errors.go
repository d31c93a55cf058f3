package errors

import (
	"errors"
	"fmt"
)

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда принципал не владеет викториной или не состоит в ней.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrOutOfRange используется для числовых значений вне допустимого диапазона
	// (индекс варианта, время на вопрос и т.п.).
	ErrOutOfRange = errors.New("value out of range")

	// ErrConflict используется для конфликтов состояния, разрешаемых ограничениями БД.
	ErrConflict = errors.New("resource state conflict")
)

// Ошибки жизненного цикла викторины
var (
	// ErrInvalidState возвращается, когда операция не разрешена текущим
	// состоянием машины состояний викторины.
	ErrInvalidState = errors.New("quiz state does not allow this operation")

	// ErrQuizGone возвращается при обращении к викторине в конечном состоянии
	// (finished или cancelled).
	ErrQuizGone = errors.New("quiz is finished or cancelled")
)

// Конкретизации ErrConflict: различимы через errors.Is и по конфликту, и по виду.
var (
	// ErrAlreadyAnswered - повторная отправка ответа на тот же вопрос.
	ErrAlreadyAnswered = fmt.Errorf("%w: answer already submitted", ErrConflict)

	// ErrDuplicateJoin - игрок уже состоит в этой викторине.
	ErrDuplicateJoin = fmt.Errorf("%w: player already joined this quiz", ErrConflict)

	// ErrLobbyFull - достигнут предел max_participants.
	ErrLobbyFull = fmt.Errorf("%w: lobby is full", ErrConflict)

	// ErrCodeExhausted - генератор join-кодов исчерпал лимит попыток.
	ErrCodeExhausted = fmt.Errorf("%w: join code space exhausted", ErrConflict)
)

// Code возвращает машиночитаемый код ошибки для тела HTTP-ответа.
// Порядок проверок - от конкретного к общему.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyAnswered):
		return "ALREADY_ANSWERED"
	case errors.Is(err, ErrDuplicateJoin):
		return "DUPLICATE_JOIN"
	case errors.Is(err, ErrLobbyFull):
		return "FULL"
	case errors.Is(err, ErrCodeExhausted):
		return "CODE_EXHAUSTED"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, ErrQuizGone):
		return "GONE"
	case errors.Is(err, ErrOutOfRange):
		return "OUT_OF_RANGE"
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	default:
		return "INTERNAL"
	}
}
