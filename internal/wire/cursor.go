package wire

// Cursor is a read-only view over a byte slice with a mutable read
// position. All primitive and variant decoders advance a Cursor; nothing
// in this package reads past the end of the buffer (see Remaining).
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for decoding, starting at position 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// take returns the next n bytes and advances the cursor, or
// ErrEndOfInput if fewer than n bytes remain.
func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, ErrEndOfInput
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Builder accumulates encoded bytes. The zero value is ready to use.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty Builder, optionally pre-sized.
func NewBuilder(sizeHint int) *Builder {
	return &Builder{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated bytes.
func (b *Builder) Bytes() []byte { return b.buf }

// Len returns the number of bytes accumulated so far.
func (b *Builder) Len() int { return len(b.buf) }

func (b *Builder) writeByte(v byte) {
	b.buf = append(b.buf, v)
}

func (b *Builder) writeBytes(v []byte) {
	b.buf = append(b.buf, v...)
}
