package wire

import (
	"encoding/binary"
	"unicode/utf16"
)

// NullLength is the sentinel 32-bit length that marks a null byte array
// or string (spec.md §3, I1).
const NullLength uint32 = 0xFFFFFFFF

// NullTime is the sentinel 32-bit millisecond count that marks a null
// Time value.
const NullTime uint32 = 0xFFFFFFFF

// -- unsigned / signed integers, all big-endian, all fixed width --

func EncodeU8(b *Builder, v uint8)   { b.writeByte(v) }
func EncodeI8(b *Builder, v int8)    { b.writeByte(uint8(v)) }
func EncodeU16(b *Builder, v uint16) { b.writeBytes([]byte{byte(v >> 8), byte(v)}) }
func EncodeI16(b *Builder, v int16)  { EncodeU16(b, uint16(v)) }

func EncodeU32(b *Builder, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.writeBytes(tmp[:])
}
func EncodeI32(b *Builder, v int32) { EncodeU32(b, uint32(v)) }

func DecodeU8(c *Cursor) (uint8, error) {
	raw, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return raw[0], nil
}

func DecodeI8(c *Cursor) (int8, error) {
	v, err := DecodeU8(c)
	return int8(v), err
}

func DecodeU16(c *Cursor) (uint16, error) {
	raw, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(raw), nil
}

func DecodeI16(c *Cursor) (int16, error) {
	v, err := DecodeU16(c)
	return int16(v), err
}

func DecodeU32(c *Cursor) (uint32, error) {
	raw, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(raw), nil
}

func DecodeI32(c *Cursor) (int32, error) {
	v, err := DecodeU32(c)
	return int32(v), err
}

// -- bool: one unsigned byte, 0 or 1 --

func EncodeBool(b *Builder, v bool) {
	if v {
		EncodeU8(b, 1)
	} else {
		EncodeU8(b, 0)
	}
}

func DecodeBool(c *Cursor) (bool, error) {
	v, err := DecodeU8(c)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// -- byte array: u32 length (NullLength = null), then that many bytes --

func EncodeByteArray(b *Builder, v []byte) {
	if v == nil {
		EncodeU32(b, NullLength)
		return
	}
	EncodeU32(b, uint32(len(v)))
	b.writeBytes(v)
}

// DecodeByteArray returns nil for a null byte array (length NullLength),
// matching the encode side's absent-value sentinel.
func DecodeByteArray(c *Cursor) ([]byte, error) {
	n, err := DecodeU32(c)
	if err != nil {
		return nil, err
	}
	if n == NullLength {
		return nil, nil
	}
	raw, err := c.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// -- string: u32 byte length (NullLength = null), then UTF-16BE payload --

// NullString is returned by DecodeString for a null string. Go has no
// separate "absent string" sentinel, so callers that must distinguish a
// null string from an empty one should use DecodeStringPtr instead.
const NullString = ""

func EncodeString(b *Builder, v string) {
	units := utf16.Encode([]rune(v))
	EncodeU32(b, uint32(len(units)*2))
	for _, u := range units {
		EncodeU16(b, u)
	}
}

// EncodeNullString emits the null-string sentinel: length 0xFFFFFFFF with
// no payload bytes (I1, S-equivalent of the null byte array case).
func EncodeNullString(b *Builder) {
	EncodeU32(b, NullLength)
}

func DecodeString(c *Cursor) (string, error) {
	s, err := DecodeStringPtr(c)
	if err != nil || s == nil {
		return "", err
	}
	return *s, nil
}

// DecodeStringPtr decodes a string, returning a nil pointer for the null
// sentinel and a non-nil pointer (possibly to an empty string) otherwise.
func DecodeStringPtr(c *Cursor) (*string, error) {
	n, err := DecodeU32(c)
	if err != nil {
		return nil, err
	}
	if n == NullLength {
		return nil, nil
	}
	if n%2 != 0 {
		return nil, ErrInvalidUTF16
	}
	raw, err := c.take(int(n))
	if err != nil {
		return nil, err
	}
	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(raw[i*2 : i*2+2])
	}
	for i := 0; i < len(units); i++ {
		switch u := units[i]; {
		case u >= 0xD800 && u < 0xDC00:
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] > 0xDFFF {
				return nil, ErrInvalidUTF16
			}
			i++
		case u >= 0xDC00 && u <= 0xDFFF:
			return nil, ErrInvalidUTF16
		}
	}
	s := string(utf16.Decode(units))
	return &s, nil
}

// -- dates, times, date-times --

// Date is a proleptic Gregorian calendar date, clamped at the low end to
// 0001-01-01 (spec.md §3: "reconstructed year < 1 clamped to year 1").
// The zero value represents the null date (Julian day 0).
type Date struct {
	Year, Month, Day int
}

// IsNull reports whether d is the null-date sentinel (Julian day 0).
func (d Date) IsNull() bool { return d == Date{} }

// Time is a time of day with millisecond precision. Sub-millisecond
// precision is lost on encode (spec.md §4.1).
type Time struct {
	Hour, Minute, Second, Millisecond int
	null                              bool
}

// NullTimeValue is the sentinel Time decoded from the wire NullTime
// marker.
var NullTimeValue = Time{null: true}

// IsNull reports whether t is the null-time sentinel.
func (t Time) IsNull() bool { return t.null }

// DateTime combines a Date, a Time, and a flag distinguishing local time
// from UTC.
type DateTime struct {
	Date Date
	Time Time
	UTC  bool
}

// floorDiv performs integer division rounding toward negative infinity,
// required throughout the Julian-day formulas (spec.md §3, design note:
// "floor-vs-truncate division hazard").
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ToJulianDay converts a Gregorian date to a Julian day number using the
// Calendar FAQ formula with floor division throughout (spec.md §4.1).
func ToJulianDay(year, month, day int) uint32 {
	a := floorDiv(14-month, 12)
	y := year + 4800 - a
	m := month + 12*a - 3
	jd := day + floorDiv(153*m+2, 5) + 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) - 32045
	return uint32(jd)
}

// FromJulianDay inverts ToJulianDay. Years reconstructed as < 1 are
// clamped to 0001-01-01 (spec.md §3, §4.1).
func FromJulianDay(jd uint32) Date {
	if jd == 0 {
		return Date{}
	}
	j := int(jd)
	a := j + 32044
	b := floorDiv(4*a+3, 146097)
	c := a - floorDiv(146097*b, 4)
	d := floorDiv(4*c+3, 1461)
	e := c - floorDiv(1461*d, 4)
	m := floorDiv(5*e+2, 153)

	day := e - floorDiv(153*m+2, 5) + 1
	month := m + 3 - 12*floorDiv(m, 10)
	year := 100*b + d - 4800 + floorDiv(m, 10)

	if year < 1 {
		return Date{Year: 1, Month: 1, Day: 1}
	}
	return Date{Year: year, Month: month, Day: day}
}

func EncodeDate(b *Builder, d Date) {
	if d.IsNull() {
		EncodeU32(b, 0)
		return
	}
	EncodeU32(b, ToJulianDay(d.Year, d.Month, d.Day))
}

func DecodeDate(c *Cursor) (Date, error) {
	jd, err := DecodeU32(c)
	if err != nil {
		return Date{}, err
	}
	return FromJulianDay(jd), nil
}

// EncodeTime stores ((h*60+m)*60+s)*1000 + ms (spec.md §4.1); encoding
// the null sentinel emits NullTime.
func EncodeTime(b *Builder, t Time) {
	if t.IsNull() {
		EncodeU32(b, NullTime)
		return
	}
	ms := ((t.Hour*60+t.Minute)*60+t.Second)*1000 + t.Millisecond
	EncodeU32(b, uint32(ms))
}

func DecodeTime(c *Cursor) (Time, error) {
	raw, err := DecodeU32(c)
	if err != nil {
		return Time{}, err
	}
	if raw == NullTime {
		return NullTimeValue, nil
	}
	ms := int(raw)
	t := Time{}
	t.Millisecond = ms % 1000
	ms /= 1000
	t.Second = ms % 60
	ms /= 60
	t.Minute = ms % 60
	ms /= 60
	t.Hour = ms
	return t, nil
}

// EncodeDateTime writes date, then time, then a UTC flag byte. The
// encoder always sets the flag to 1 (UTC) per spec.md §4.1.
func EncodeDateTime(b *Builder, dt DateTime) {
	EncodeDate(b, dt.Date)
	EncodeTime(b, dt.Time)
	EncodeU8(b, 1)
}

// DecodeDateTime decodes date, time, and the UTC flag byte. The flag is
// reported verbatim in DateTime.UTC; a local (flag 0) date-time is not
// converted to UTC, and its date and time are returned as sent.
func DecodeDateTime(c *Cursor) (DateTime, error) {
	d, err := DecodeDate(c)
	if err != nil {
		return DateTime{}, err
	}
	t, err := DecodeTime(c)
	if err != nil {
		return DateTime{}, err
	}
	flag, err := DecodeU8(c)
	if err != nil {
		return DateTime{}, err
	}
	return DateTime{Date: d, Time: t, UTC: flag != 0}, nil
}
