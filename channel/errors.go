package channel

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when the channel type cannot perform an operation.
	ErrUnsupported = errors.New("operation not supported for channel type")
	// ErrNoOwner is returned when the owning client has been released.
	ErrNoOwner = errors.New("channel owner released")

	ErrInvalidQuery = errors.New("invalid message query")
	ErrEmptyEdit    = errors.New("edit changes nothing")
)

// UnsupportedError names the operation a channel refused.
type UnsupportedError struct {
	Op   string
	Type Type
	ID   ChannelID
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("channel %s: %s on %s channel: %v", e.ID, e.Op, e.Type, ErrUnsupported)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }
