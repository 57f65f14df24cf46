package auth

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
)

// InvalidDataError carries a caller-facing validation message.
type InvalidDataError struct {
	msg string
}

func (e *InvalidDataError) Error() string {
	return e.msg
}

func NewInvalidDataError(msg string) *InvalidDataError {
	return &InvalidDataError{msg: msg}
}
