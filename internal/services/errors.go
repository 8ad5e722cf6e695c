package services

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error for the request boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// Error is returned by every service operation that fails for a reason the
// caller should see. Message is safe to show; Err is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func AuthError(msg string) error {
	return &Error{Kind: KindAuth, Message: msg}
}

func ForbiddenError(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFoundError(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func ConflictError(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// InternalError wraps an infrastructure failure behind a generic message.
func InternalError(op string, err error) error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf reports the kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage is what a client may be told about err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}

// IsKind is shorthand for KindOf(err) == k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
