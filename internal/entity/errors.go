package entity

import "errors"

var (
	// Meetup errors
	ErrMeetupNotFound = errors.New("meetup does not exist")
	ErrMeetupFinished = errors.New("meetup is already finished")
	ErrOwnerCantJoin  = errors.New("the meetup owner can't subscribe")
	ErrAlreadyJoined  = errors.New("already subscribed")
	ErrNotSubscribed  = errors.New("you are not subscribed")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// General errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrConcurrentUpdate = errors.New("concurrent update detected")
)

// ConflictError возвращается, когда пользователь уже подписан на встречу
// в том же временном окне. Несёт конфликтующую встречу для ответа клиенту.
type ConflictError struct {
	Conflict *Meetup
}

func (e *ConflictError) Error() string {
	return "you are already subscribed to a meetup at the same time"
}

// AsConflictError извлекает ConflictError из цепочки ошибок
func AsConflictError(err error) (*ConflictError, bool) {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr, true
	}
	return nil, false
}
