package viewer

import (
	"errors"
	"fmt"
)

// Sentinel errors for user-input failures. They are always wrapped in an
// *InputError carrying the text shown to the user.
var (
	ErrNoFile        = errors.New("viewer: no file selected")
	ErrEmptyQuestion = errors.New("viewer: question is empty")
	ErrNoContract    = errors.New("viewer: no uploaded document")
	ErrNoDocument    = errors.New("viewer: no document loaded")
)

// Messages shown to the user for input errors.
const (
	msgSelectFile = "Please select a PDF first."
	msgAsk        = "Upload a PDF and enter a question."
	msgNoDocument = "Upload a PDF to view its pages."
)

// InputError is a user-input validation failure. It is recoverable by
// re-attempting the action.
type InputError struct {
	Action  string
	Message string
	Err     error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Notice converts the error into a Notice for the presentation layer.
func (e *InputError) Notice() Notice {
	return Notice{Level: NoticeWarning, Action: e.Action, Message: e.Message}
}
