// Package errs defines the tagged error type shared by every curlhub component.
//
// Components classify failures with a Kind; the HTTP layer maps each Kind to
// exactly one outward status. The wrapped cause is kept for logging and for
// errors.Is/As checks but is never shown to clients.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the outward category it belongs to.
type Kind uint8

const (
	// Other is an unclassified failure. It is reported like Storage.
	Other Kind = iota
	// Unauthenticated means the caller has no valid session.
	Unauthenticated
	// Forbidden means the caller is known but not allowed.
	Forbidden
	// NotFound means the addressed resource does not exist.
	NotFound
	// Conflict means a uniqueness constraint was violated.
	Conflict
	// InvalidCredential means a login attempt failed. It is reported
	// identically whether the user is unknown or the password is wrong.
	InvalidCredential
	// Invalid means the request was malformed.
	Invalid
	// Storage means the persistence layer failed.
	Storage
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case InvalidCredential:
		return "invalid credential"
	case Invalid:
		return "invalid"
	case Storage:
		return "storage"
	default:
		return "other"
	}
}

// Error is a classified error.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "service.UpdateProject".
	Op  string
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error. A nil err yields an error carrying only the kind.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error with a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost classified error in err's chain.
// Unclassified errors report Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Wrap classifies err as Storage unless it is already classified.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: Storage, Op: op, Err: err}
}
