package chat

import "errors"

var (
	ErrVariantRequired  = errors.New("variant id is required")
	ErrVariantNotFound  = errors.New("variant not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrEmptyInput       = errors.New("message is empty")
	ErrBusy             = errors.New("session is awaiting a completion")
	ErrCompletionFailed = errors.New("completion failed")
	ErrNoCompleter      = errors.New("completion client unavailable")
)

// CompletionError wraps a failure of the completion client. Its message is
// the underlying error verbatim so it can be shown to the user as is.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return e.Err.Error()
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrCompletionFailed) match any completion failure.
func (e *CompletionError) Is(target error) bool {
	return target == ErrCompletionFailed
}
