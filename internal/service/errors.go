package service

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidState    = errors.New("command not allowed in current session state")
	ErrStaleQuestion   = errors.New("question is no longer current")
	ErrTimeExpired     = errors.New("time for this question has expired")
	ErrAlreadyAnswered = errors.New("answer already submitted for this question")
	ErrNoMoreQuestions = errors.New("no questions remain")
	ErrValidation      = errors.New("invalid payload")
)

// ErrorReason maps a service error to the stable machine-readable reason
// carried in error envelopes. Unknown errors collapse to internal_error so
// one session's fault never leaks details to clients.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrStaleQuestion):
		return "stale_question"
	case errors.Is(err, ErrTimeExpired):
		return "time_expired"
	case errors.Is(err, ErrAlreadyAnswered):
		return "already_answered"
	case errors.Is(err, ErrNoMoreQuestions):
		return "no_more_questions"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	default:
		return "internal_error"
	}
}
