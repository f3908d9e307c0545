package ledger

import "errors"

var (
	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrExceedsRemaining = errors.New("amount exceeds remaining")
	ErrNoParticipants   = errors.New("no participant selected")
	ErrEmptyName        = errors.New("name can't be empty")
	ErrDuplicateName    = errors.New("name already exists")
	ErrBillNotSet       = errors.New("bill amount not set")
	ErrBillAlreadySet   = errors.New("bill amount already set")
	ErrMalformedState   = errors.New("malformed ledger state")
)

// ValidationError is returned when user input is rejected. Message is meant
// to be shown to the user as is; Err is one of the sentinel errors above.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, msg string) error {
	return &ValidationError{Err: err, Message: msg}
}
