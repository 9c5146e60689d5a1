package imagegen

import "errors"

// Kind classifies a generation failure. The kind name is part of the
// user-facing reply, so values stay short and stable.
type Kind string

const (
	KindMissingCredentials      Kind = "MissingCredentials"
	KindEmptyExpansion          Kind = "EmptyExpansion"
	KindUnexpectedResponseShape Kind = "UnexpectedResponseShape"
	KindNoURLInResponse         Kind = "NoUrlInResponse"
	KindTransport               Kind = "TransportError"
)

// Error is the taxonomy error for all generation failures. It keeps the
// diagnostic detail for server-side logs while rendering as a short
// "Kind: message" string for the chat user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Describe renders any error the way the dispatcher reports it to the
// chat: taxonomy errors keep their kind prefix, everything else gets a
// generic one.
func Describe(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Error()
	}
	return "Error: " + err.Error()
}
