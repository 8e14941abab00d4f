package wire

import (
	"fmt"
	"unicode/utf8"
)

// Variant is a decoded QVariant: a type tag, a null flag, and a payload.
// Value holds the native Go representation for the tag:
//
//	TagBool                -> bool
//	TagInt8/16/32          -> int8/int16/int32
//	TagUInt8/16/32         -> uint8/uint16/uint32
//	TagByteArray           -> []byte (nil for the null length sentinel)
//	TagString              -> string
//	TagStringList          -> []string
//	TagDate/Time/DateTime  -> Date/Time/DateTime
//	TagVariantList         -> []Variant
//	TagVariantMap          -> map[string]Variant
//	TagUserType            -> whatever the registered user Decoder returns,
//	                          or the recursively-decoded built-in value
//	                          when UserName aliases a built-in tag
type Variant struct {
	Tag      uint32
	Null     bool
	UserName string
	Value    interface{}
}

// USER_TYPE is the sentinel tag marking a user-type envelope (spec.md §3).
const USER_TYPE = TagUserType

// DecodeVariant decodes a QVariant: tag (u32), null flag (u8, reported in
// Variant.Null and otherwise not acted on), then the tag-specific payload.
// Variant lists and maps are decoded against reg itself, so user types
// nested inside them resolve through the same registry.
func DecodeVariant(c *Cursor, reg *Registry) (Variant, error) {
	tag, err := DecodeU32(c)
	if err != nil {
		return Variant{}, err
	}
	null, err := DecodeBool(c)
	if err != nil {
		return Variant{}, err
	}

	if tag == USER_TYPE {
		return decodeUserVariant(c, reg, null)
	}

	var val interface{}
	switch tag {
	case TagVariantList:
		val, err = DecodeVariantList(c, reg)
	case TagVariantMap:
		val, err = DecodeVariantMap(c, reg)
	default:
		dec, ok := reg.LookupTag(tag)
		if !ok {
			return Variant{}, &UnknownTypeError{Tag: tag, Offset: c.Pos()}
		}
		val, err = dec(c)
	}
	if err != nil {
		return Variant{}, err
	}
	return Variant{Tag: tag, Null: null, Value: val}, nil
}

// decodeUserVariant reads the length-prefixed, NUL-terminated UTF-8 type
// name, strips the trailing NUL, and resolves it against reg (spec.md
// §4.3). An alias resolves recursively as the aliased built-in type.
func decodeUserVariant(c *Cursor, reg *Registry, null bool) (Variant, error) {
	raw, err := DecodeByteArray(c)
	if err != nil {
		return Variant{}, err
	}
	if len(raw) == 0 || raw[len(raw)-1] != 0 {
		return Variant{}, fmt.Errorf("wire: user type name missing NUL terminator")
	}
	name := string(raw[:len(raw)-1])
	if !utf8.ValidString(name) {
		return Variant{}, ErrInvalidUTF8
	}

	dec, aliasTag, isAlias, ok := reg.LookupUser(name)
	if !ok {
		return Variant{}, &UnknownTypeError{Name: name, Offset: c.Pos()}
	}
	if isAlias {
		var val interface{}
		switch aliasTag {
		case TagVariantList:
			val, err = DecodeVariantList(c, reg)
		case TagVariantMap:
			val, err = DecodeVariantMap(c, reg)
		default:
			aliasDec, found := reg.LookupTag(aliasTag)
			if !found {
				return Variant{}, &UnknownTypeError{Tag: aliasTag, Offset: c.Pos()}
			}
			val, err = aliasDec(c)
		}
		if err != nil {
			return Variant{}, err
		}
		return Variant{Tag: USER_TYPE, Null: null, UserName: name, Value: val}, nil
	}
	val, err := dec(c)
	if err != nil {
		return Variant{}, err
	}
	return Variant{Tag: USER_TYPE, Null: null, UserName: name, Value: val}, nil
}

// EncodeVariant emits tag | null-flag=0 | payload for v.
func EncodeVariant(b *Builder, v Variant) {
	EncodeU32(b, v.Tag)
	EncodeBool(b, false)
	if v.Tag == USER_TYPE {
		encodeUserName(b, v.UserName)
		encodeTagPayload(b, tagForValue(v.Value), v.Value)
		return
	}
	encodeTagPayload(b, v.Tag, v.Value)
}

func encodeUserName(b *Builder, name string) {
	raw := append([]byte(name), 0)
	EncodeByteArray(b, raw)
}

// encodeTagPayload writes the payload for tag, dispatching on the native
// Go type actually carried in value. List/Map recurse into EncodeVariant
// for their elements, so the caller's registry is not needed here: a
// decoded Variant always carries concrete Go values, and re-encoding
// only needs to know which wire shape those values take.
func encodeTagPayload(b *Builder, tag uint32, value interface{}) {
	switch tag {
	case TagBool:
		EncodeBool(b, value.(bool))
	case TagInt8:
		EncodeI8(b, value.(int8))
	case TagInt16:
		EncodeI16(b, value.(int16))
	case TagInt32:
		EncodeI32(b, value.(int32))
	case TagUInt8:
		EncodeU8(b, value.(uint8))
	case TagUInt16:
		EncodeU16(b, value.(uint16))
	case TagUInt32:
		EncodeU32(b, value.(uint32))
	case TagByteArray:
		EncodeByteArray(b, value.([]byte))
	case TagString:
		EncodeString(b, value.(string))
	case TagStringList:
		EncodeStringList(b, value.([]string))
	case TagDate:
		EncodeDate(b, value.(Date))
	case TagTime:
		EncodeTime(b, value.(Time))
	case TagDateTime:
		EncodeDateTime(b, value.(DateTime))
	case TagVariantList:
		EncodeVariantList(b, value.([]Variant))
	case TagVariantMap:
		EncodeVariantMap(b, value.(map[string]Variant))
	default:
		panic(fmt.Sprintf("wire: encodeTagPayload: unhandled tag %d", tag))
	}
}

// tagForValue implements the natural host-type-to-tag mapping from
// spec.md §4.3 for values that were not already carrying an explicit
// Variant.Tag (e.g. freshly constructed via the New*Variant helpers,
// those already set Tag directly so this is only consulted for the
// inner payload of a user-type envelope).
func tagForValue(value interface{}) uint32 {
	switch value.(type) {
	case bool:
		return TagBool
	case int8:
		return TagInt8
	case int16:
		return TagInt16
	case int32:
		return TagInt32
	case uint8:
		return TagUInt8
	case uint16:
		return TagUInt16
	case uint32:
		return TagUInt32
	case []byte:
		return TagByteArray
	case string:
		return TagString
	case []string:
		return TagStringList
	case Date:
		return TagDate
	case Time:
		return TagTime
	case DateTime:
		return TagDateTime
	case []Variant:
		return TagVariantList
	case map[string]Variant:
		return TagVariantMap
	default:
		panic(ErrUnsupportedType)
	}
}

// Natural-mapping constructors (spec.md §4.3 "natural-mapping table").

func NewBoolVariant(v bool) Variant         { return Variant{Tag: TagBool, Value: v} }
func NewInt32Variant(v int32) Variant       { return Variant{Tag: TagInt32, Value: v} }
func NewUInt32Variant(v uint32) Variant     { return Variant{Tag: TagUInt32, Value: v} }
func NewStringVariant(v string) Variant     { return Variant{Tag: TagString, Value: v} }
func NewByteArrayVariant(v []byte) Variant  { return Variant{Tag: TagByteArray, Null: v == nil, Value: v} }
func NewDateVariant(v Date) Variant         { return Variant{Tag: TagDate, Value: v} }
func NewTimeVariant(v Time) Variant         { return Variant{Tag: TagTime, Value: v} }
func NewDateTimeVariant(v DateTime) Variant { return Variant{Tag: TagDateTime, Value: v} }

// NewUInt16Variant constructs a Variant tagged TagUInt16 with a uint16
// payload, for call sites that pin the 16-bit wire width (such as the
// HEART_BEAT_REPLY message type).
func NewUInt16Variant(v uint16) Variant { return Variant{Tag: TagUInt16, Value: v} }

func NewListVariant(v []Variant) Variant    { return Variant{Tag: TagVariantList, Value: v} }
func NewMapVariant(v map[string]Variant) Variant {
	return Variant{Tag: TagVariantMap, Value: v}
}

// EncodeValue infers a Variant's tag from v's Go type using the
// natural-mapping table and encodes it. Returns ErrUnsupportedType if v's
// type has no mapping.
func EncodeValue(b *Builder, v interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrUnsupportedType
		}
	}()
	tag := tagForValue(v)
	EncodeVariant(b, Variant{Tag: tag, Value: v})
	return nil
}
