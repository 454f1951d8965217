package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// KindError tags an error with a sentinel kind so handlers can map it to a
// status code with errors.Is.
type KindError struct {
	Kind error
	Msg  string
	Err  error
}

func (e *KindError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes both the kind and the cause.
func (e *KindError) Unwrap() []error {
	out := []error{e.Kind}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind creates a KindError with a message.
func NewKind(kind error, msg string) error {
	return &KindError{Kind: kind, Msg: msg}
}

// WrapKind tags err with kind. A nil err stays nil.
func WrapKind(kind error, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

// Wrap adds context to err. A nil err stays nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
