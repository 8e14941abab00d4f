package wire

import "fmt"

// ErrEndOfInput is returned when a decode operation needs more bytes than
// the cursor has remaining. Callers at frame boundaries should treat this
// as recoverable: skip to the declared end of the frame and continue.
var ErrEndOfInput = fmt.Errorf("wire: end of input")

// ErrInvalidUTF16 is returned when a string payload is not well-formed
// UTF-16BE.
var ErrInvalidUTF16 = fmt.Errorf("wire: invalid utf-16")

// ErrInvalidUTF8 is returned when a user-type name payload is not
// well-formed UTF-8.
var ErrInvalidUTF8 = fmt.Errorf("wire: invalid utf-8")

// ErrUnsupportedType is returned when the encoder is asked to serialize a
// Go value with no known QVariant mapping. It is fatal to the caller of
// the encode operation, not to any session using this package.
var ErrUnsupportedType = fmt.Errorf("wire: unsupported type for encode")

// UnknownTypeError is returned when a QVariant decode encounters a tag or
// user-type name that the registry does not recognize. It carries enough
// context (tag, name, cursor offset) for the caller to log and skip the
// enclosing frame.
type UnknownTypeError struct {
	Tag    uint32
	Name   string
	Offset int
}

func (e *UnknownTypeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("wire: unknown user type %q at offset %d", e.Name, e.Offset)
	}
	return fmt.Sprintf("wire: unknown type tag %d at offset %d", e.Tag, e.Offset)
}
