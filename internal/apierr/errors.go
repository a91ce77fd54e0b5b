// Package apierr defines the error taxonomy shared by the DLOB engine and
// the HTTP surface: ClientValidation, NotReady, UpstreamTransient,
// Internal, Fatal.
package apierr

import "net/http"

type Kind int

const (
	Internal Kind = iota
	ClientValidation
	NotReady
	UpstreamTransient
	Fatal
)

// Error wraps a Kind with a status code and a message safe to return to
// clients.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error {
	return &Error{Kind: ClientValidation, Status: http.StatusBadRequest, Message: msg}
}

func NotReadyErr() *Error {
	return &Error{Kind: NotReady, Status: http.StatusInternalServerError, Message: "Not ready"}
}

func Wrap(err error) *Error {
	return &Error{Kind: Internal, Status: http.StatusInternalServerError, Message: "Internal error", Err: err}
}

func Transient(err error) *Error {
	return &Error{Kind: UpstreamTransient, Message: "upstream transient failure", Err: err}
}

func Fatalf(msg string, err error) *Error {
	return &Error{Kind: Fatal, Message: msg, Err: err}
}
