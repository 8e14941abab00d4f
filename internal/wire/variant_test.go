package wire

import (
	"bytes"
	"testing"
)

func baseRegistry() *Registry { return NewBaseRegistry() }

func TestVariantEncodeBoolS1(t *testing.T) {
	// S1 — encode QVariant(true): 00 00 00 01 00 01
	b := NewBuilder(0)
	EncodeVariant(b, NewBoolVariant(true))
	want := []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x01}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("EncodeVariant(true) = % x, want % x", b.Bytes(), want)
	}
}

func TestVariantEncodeStringS2(t *testing.T) {
	// S2 — encode QVariant("ab"): tag 0A, null 00, len 00000004, UTF16BE
	b := NewBuilder(0)
	EncodeVariant(b, NewStringVariant("ab"))
	want := []byte{
		0x00, 0x00, 0x00, 0x0A, 0x00,
		0x00, 0x00, 0x00, 0x04,
		0x00, 0x61, 0x00, 0x62,
	}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("EncodeVariant(ab) = % x, want % x", b.Bytes(), want)
	}
}

func TestVariantListDecodeS3(t *testing.T) {
	// S3 — decode variant-list [u16 7]: count=1, tag=133 (uint16), null=0, value=7
	input := []byte{
		0x00, 0x00, 0x00, 0x01, // count = 1
		0x00, 0x00, 0x00, 0x85, // tag = 133 (uint16)
		0x00,       // null flag
		0x00, 0x07, // value = 7
	}
	reg := baseRegistry()
	got, err := DecodeVariantList(NewCursor(input), reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Value.(uint16) != 7 {
		t.Fatalf("value = %v, want 7", got[0].Value)
	}
}

func TestVariantUserTypeAliasS5(t *testing.T) {
	// S5 — "NetworkId" aliased to tag 2 (int32); user variant carrying
	// name "NetworkId\0" and payload 0x0000002A decodes to int32(42).
	reg := baseRegistry()
	if err := reg.RegisterUserAlias("NetworkId", TagInt32); err != nil {
		t.Fatalf("RegisterUserAlias: %v", err)
	}

	b := NewBuilder(0)
	EncodeU32(b, USER_TYPE)
	EncodeBool(b, false)
	EncodeByteArray(b, append([]byte("NetworkId"), 0))
	EncodeI32(b, 42)

	v, err := DecodeVariant(NewCursor(b.Bytes()), reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.UserName != "NetworkId" {
		t.Fatalf("UserName = %q", v.UserName)
	}
	if v.Value.(int32) != 42 {
		t.Fatalf("Value = %v, want 42", v.Value)
	}
}

func TestVariantUnknownTag(t *testing.T) {
	reg := baseRegistry()
	b := NewBuilder(0)
	EncodeU32(b, 9999)
	EncodeBool(b, false)
	_, err := DecodeVariant(NewCursor(b.Bytes()), reg)
	var unk *UnknownTypeError
	if err == nil {
		t.Fatal("expected UnknownTypeError")
	}
	if !asUnknownType(err, &unk) {
		t.Fatalf("expected *UnknownTypeError, got %T: %v", err, err)
	}
	if unk.Tag != 9999 {
		t.Fatalf("Tag = %d, want 9999", unk.Tag)
	}
}

func TestVariantUnknownUserName(t *testing.T) {
	reg := baseRegistry()
	b := NewBuilder(0)
	EncodeU32(b, USER_TYPE)
	EncodeBool(b, false)
	EncodeByteArray(b, append([]byte("NoSuchType"), 0))
	_, err := DecodeVariant(NewCursor(b.Bytes()), reg)
	var unk *UnknownTypeError
	if !asUnknownType(err, &unk) {
		t.Fatalf("expected *UnknownTypeError, got %T: %v", err, err)
	}
	if unk.Name != "NoSuchType" {
		t.Fatalf("Name = %q", unk.Name)
	}
}

func TestVariantUserTypeInvalidUTF8Name(t *testing.T) {
	reg := baseRegistry()
	b := NewBuilder(0)
	EncodeU32(b, USER_TYPE)
	EncodeBool(b, false)
	EncodeByteArray(b, []byte{0xFF, 0xFE, 0x00})
	_, err := DecodeVariant(NewCursor(b.Bytes()), reg)
	if err != ErrInvalidUTF8 {
		t.Fatalf("expected ErrInvalidUTF8, got %T: %v", err, err)
	}
}

func asUnknownType(err error, target **UnknownTypeError) bool {
	if e, ok := err.(*UnknownTypeError); ok {
		*target = e
		return true
	}
	return false
}

func TestVariantMapRoundTripDuplicateKeys(t *testing.T) {
	// Decoding a map with duplicate keys retains the last occurrence
	// (spec.md §4.3).
	reg := baseRegistry()
	b := NewBuilder(0)
	EncodeU32(b, 2) // two entries, same key
	EncodeString(b, "k")
	EncodeVariant(b, NewInt32Variant(1))
	EncodeString(b, "k")
	EncodeVariant(b, NewInt32Variant(2))

	m, err := DecodeVariantMap(NewCursor(b.Bytes()), reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(m) != 1 {
		t.Fatalf("len = %d, want 1", len(m))
	}
	if m["k"].Value.(int32) != 2 {
		t.Fatalf("value = %v, want 2 (last write wins)", m["k"].Value)
	}
}

func TestVariantListContainerRoundTrip(t *testing.T) {
	reg := baseRegistry()
	in := []Variant{
		NewBoolVariant(true),
		NewStringVariant("hi"),
		NewInt32Variant(-5),
		NewListVariant([]Variant{NewUInt32Variant(9)}),
	}
	b := NewBuilder(0)
	EncodeVariantList(b, in)
	out, err := DecodeVariantList(NewCursor(b.Bytes()), reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	if out[0].Value.(bool) != true || out[1].Value.(string) != "hi" || out[2].Value.(int32) != -5 {
		t.Fatalf("unexpected decode: %+v", out)
	}
	inner := out[3].Value.([]Variant)
	if len(inner) != 1 || inner[0].Value.(uint32) != 9 {
		t.Fatalf("unexpected nested list: %+v", inner)
	}
}

func TestEncodeValueNaturalMapping(t *testing.T) {
	b := NewBuilder(0)
	if err := EncodeValue(b, int32(5)); err != nil {
		t.Fatalf("EncodeValue: %v", err)
	}
	reg := baseRegistry()
	v, err := DecodeVariant(NewCursor(b.Bytes()), reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Tag != TagInt32 || v.Value.(int32) != 5 {
		t.Fatalf("unexpected variant: %+v", v)
	}
}

func TestEncodeValueUnsupportedType(t *testing.T) {
	b := NewBuilder(0)
	err := EncodeValue(b, struct{ X int }{})
	if err != ErrUnsupportedType {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}
