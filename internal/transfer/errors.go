package transfer

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteUnavailable matches probe failures and non-success probe statuses.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrLengthUnknown matches responses without a usable Content-Length.
	ErrLengthUnknown = errors.New("content length unknown")

	// ErrTransfer matches network and disk failures during a transfer.
	ErrTransfer = errors.New("transfer failed")
)

// Kind classifies a transfer failure.
type Kind int

const (
	KindTransfer Kind = iota
	KindRemoteUnavailable
	KindLengthUnknown
)

func (k Kind) sentinel() error {
	switch k {
	case KindRemoteUnavailable:
		return ErrRemoteUnavailable
	case KindLengthUnknown:
		return ErrLengthUnknown
	default:
		return ErrTransfer
	}
}

// Error describes a failed transfer. The underlying cause is preserved.
type Error struct {
	Kind       Kind
	URL        string
	Path       string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.Path)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel corresponding to e.Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}
