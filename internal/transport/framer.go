package transport

import "encoding/binary"

// Framer extracts complete length-prefixed frames from a byte stream
// that may arrive split across arbitrarily many reads or coalesced into
// one (spec.md §4.4, §8.5). It never inspects or decodes frame payloads;
// that is left to the caller so a single bad frame cannot affect framing
// of the frames around it (spec.md I3, §8.6).
type Framer struct {
	buf []byte
	pos int
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends newly-received bytes to the framer's receive buffer.
func (f *Framer) Feed(b []byte) {
	f.buf = append(f.buf, b...)
}

// Next returns the next complete frame's payload and advances past it,
// or ok=false if fewer than a full frame remains buffered. The returned
// slice aliases the framer's internal buffer and is only valid until the
// next call to Feed or Compact.
func (f *Framer) Next() (payload []byte, ok bool) {
	if len(f.buf)-f.pos < 4 {
		return nil, false
	}
	length := binary.BigEndian.Uint32(f.buf[f.pos : f.pos+4])
	start := f.pos + 4
	if len(f.buf)-start < int(length) {
		return nil, false
	}
	end := start + int(length)
	payload = f.buf[start:end]
	f.pos = end
	return payload, true
}

// Compact retains only the unread tail of the buffer, resetting cursors
// to zero once it is fully drained (spec.md §4.4: "After draining,
// compact the buffer"). Callers should call Compact once per Feed after
// draining all complete frames with Next.
func (f *Framer) Compact() {
	if f.pos == 0 {
		return
	}
	if f.pos == len(f.buf) {
		f.buf = f.buf[:0]
		f.pos = 0
		return
	}
	remaining := len(f.buf) - f.pos
	copy(f.buf[:remaining], f.buf[f.pos:])
	f.buf = f.buf[:remaining]
	f.pos = 0
}

// EncodeFrame prepends a u32 big-endian length to payload, as required
// on egress for every application message (spec.md §3, "framed
// message").
func EncodeFrame(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(payload)))
	copy(out[4:], payload)
	return out
}
