package dbcheck

import (
	"errors"
	"fmt"
)

// Kind classifies a check failure.
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindConnectivity
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnectivity:
		return "connectivity"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a *CheckError kind.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrConnectivity  = errors.New("connectivity error")
	ErrQuery         = errors.New("query error")
)

// ErrMissingURL is returned when no connection string was configured.
var ErrMissingURL = errors.New("DATABASE_URL is not set")

// CheckError is the single error type returned by the checker.
type CheckError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

func (e *CheckError) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrConnectivity:
		return e.Kind == KindConnectivity
	case ErrQuery:
		return e.Kind == KindQuery
	}
	return false
}

// KindOf returns the kind of a checker error, or 0 for nil and foreign errors.
func KindOf(err error) Kind {
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func newError(kind Kind, op string, err error) *CheckError {
	return &CheckError{Kind: kind, Op: op, Err: err}
}
