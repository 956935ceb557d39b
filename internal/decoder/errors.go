package decoder

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is wrapped by every DecodeError.
	ErrTruncated = errors.New("payload truncated")

	// ErrUnrecognized is returned by ParsePayload for unknown discriminators.
	ErrUnrecognized = errors.New("unrecognized discriminator")
)

// DecodeError describes a field that could not be read from a payload.
type DecodeError struct {
	Tag    Tag
	Field  string
	Offset int
	Need   int
	Have   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: field %s at offset %d needs %d bytes, %d remaining",
		e.Tag, e.Field, e.Offset, e.Need, e.Have)
}

func (e *DecodeError) Unwrap() error {
	return ErrTruncated
}
