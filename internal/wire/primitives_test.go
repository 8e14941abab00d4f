package wire

import (
	"bytes"
	"testing"
)

func TestU32ByteOrder(t *testing.T) {
	b := NewBuilder(4)
	EncodeU32(b, 1)
	want := []byte{0x00, 0x00, 0x00, 0x01}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("EncodeU32(1) = % x, want % x", b.Bytes(), want)
	}
}

func TestBoolRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		b := NewBuilder(1)
		EncodeBool(b, v)
		got, err := DecodeBool(NewCursor(b.Bytes()))
		if err != nil {
			t.Fatalf("DecodeBool: %v", err)
		}
		if got != v {
			t.Fatalf("roundtrip bool %v -> %v", v, got)
		}
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	b := NewBuilder(0)
	EncodeI8(b, -5)
	EncodeI16(b, -1000)
	EncodeI32(b, -70000)
	EncodeU8(b, 200)
	EncodeU16(b, 60000)
	EncodeU32(b, 4000000000)

	c := NewCursor(b.Bytes())
	if v, _ := DecodeI8(c); v != -5 {
		t.Fatalf("i8 = %d", v)
	}
	if v, _ := DecodeI16(c); v != -1000 {
		t.Fatalf("i16 = %d", v)
	}
	if v, _ := DecodeI32(c); v != -70000 {
		t.Fatalf("i32 = %d", v)
	}
	if v, _ := DecodeU8(c); v != 200 {
		t.Fatalf("u8 = %d", v)
	}
	if v, _ := DecodeU16(c); v != 60000 {
		t.Fatalf("u16 = %d", v)
	}
	if v, _ := DecodeU32(c); v != 4000000000 {
		t.Fatalf("u32 = %d", v)
	}
}

func TestByteArrayNullSentinel(t *testing.T) {
	b := NewBuilder(4)
	EncodeByteArray(b, nil)
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("null byte array = % x, want % x", b.Bytes(), want)
	}
	got, err := DecodeByteArray(NewCursor(b.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestByteArrayRoundTrip(t *testing.T) {
	in := []byte{1, 2, 3, 4, 5}
	b := NewBuilder(0)
	EncodeByteArray(b, in)
	out, err := DecodeByteArray(NewCursor(b.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("roundtrip = % x, want % x", out, in)
	}
}

func TestStringEncodeS2(t *testing.T) {
	// S2 — encode QVariant("ab"): length 0x00000004, UTF-16BE "00 61 00 62"
	b := NewBuilder(0)
	EncodeString(b, "ab")
	want := []byte{0x00, 0x00, 0x00, 0x04, 0x00, 0x61, 0x00, 0x62}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("EncodeString(ab) = % x, want % x", b.Bytes(), want)
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "hello", "héllo wörld", "日本語"} {
		b := NewBuilder(0)
		EncodeString(b, s)
		got, err := DecodeString(NewCursor(b.Bytes()))
		if err != nil {
			t.Fatalf("decode %q: %v", s, err)
		}
		if got != s {
			t.Fatalf("roundtrip %q -> %q", s, got)
		}
	}
}

func TestStringNullSentinel(t *testing.T) {
	b := NewBuilder(4)
	EncodeNullString(b)
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("null string = % x, want % x", b.Bytes(), want)
	}
	ptr, err := DecodeStringPtr(NewCursor(b.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ptr != nil {
		t.Fatalf("expected nil pointer for null string, got %q", *ptr)
	}
}

func TestEndOfInput(t *testing.T) {
	c := NewCursor([]byte{0x00, 0x01})
	if _, err := DecodeU32(c); err != ErrEndOfInput {
		t.Fatalf("expected ErrEndOfInput, got %v", err)
	}
}

func TestInvalidUTF16OddLength(t *testing.T) {
	b := NewBuilder(0)
	EncodeU32(b, 3) // odd byte length is never valid UTF-16BE
	b.writeBytes([]byte{0, 0, 0})
	if _, err := DecodeString(NewCursor(b.Bytes())); err != ErrInvalidUTF16 {
		t.Fatalf("expected ErrInvalidUTF16, got %v", err)
	}
}

func TestJulianDaySpotCheck(t *testing.T) {
	// spec.md §8.7: 1858-11-17 encodes to Julian day 2400000.
	if jd := ToJulianDay(1858, 11, 17); jd != 2400000 {
		t.Fatalf("ToJulianDay(1858-11-17) = %d, want 2400000", jd)
	}
	d := FromJulianDay(2400000)
	if d != (Date{Year: 1858, Month: 11, Day: 17}) {
		t.Fatalf("FromJulianDay(2400000) = %+v", d)
	}
}

func TestJulianDayRoundTripRange(t *testing.T) {
	// Spot-check a spread of dates across the supported range, including
	// leap years and century boundaries that stress the floor-division
	// formulas (spec.md §8.7).
	cases := []Date{
		{1, 1, 1},
		{1970, 1, 1},
		{2000, 2, 29},
		{1900, 2, 28}, // not a leap year
		{2024, 12, 31},
		{9999, 12, 31},
		{1582, 10, 15},
	}
	for _, d := range cases {
		jd := ToJulianDay(d.Year, d.Month, d.Day)
		got := FromJulianDay(jd)
		if got != d {
			t.Fatalf("roundtrip %+v -> jd=%d -> %+v", d, jd, got)
		}
	}
}

func TestDateYearClamp(t *testing.T) {
	// A Julian day before year 1 must clamp to 0001-01-01.
	got := FromJulianDay(1)
	if got.Year < 1 {
		t.Fatalf("expected clamp to year >= 1, got %+v", got)
	}
}

func TestDateNullSentinel(t *testing.T) {
	b := NewBuilder(4)
	EncodeDate(b, Date{})
	want := []byte{0, 0, 0, 0}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("null date = % x, want % x", b.Bytes(), want)
	}
	d, err := DecodeDate(NewCursor(b.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !d.IsNull() {
		t.Fatalf("expected null date, got %+v", d)
	}
}

func TestTimeRoundTripMillisecondTruncation(t *testing.T) {
	in := Time{Hour: 3, Minute: 4, Second: 5, Millisecond: 999}
	b := NewBuilder(4)
	EncodeTime(b, in)
	out, err := DecodeTime(NewCursor(b.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("roundtrip %+v -> %+v", in, out)
	}
}

func TestTimeNullSentinel(t *testing.T) {
	b := NewBuilder(4)
	EncodeTime(b, NullTimeValue)
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("null time = % x, want % x", b.Bytes(), want)
	}
	out, err := DecodeTime(NewCursor(b.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.IsNull() {
		t.Fatalf("expected null time, got %+v", out)
	}
}

func TestDateTimeRoundTrip(t *testing.T) {
	in := DateTime{
		Date: Date{2024, 1, 2},
		Time: Time{Hour: 3, Minute: 4, Second: 5},
		UTC:  true,
	}
	b := NewBuilder(0)
	EncodeDateTime(b, in)
	out, err := DecodeDateTime(NewCursor(b.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("roundtrip %+v -> %+v", in, out)
	}
}
