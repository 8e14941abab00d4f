package wire

import "fmt"

// Qt built-in type tags (spec.md §3).
const (
	TagBool        uint32 = 1
	TagInt32       uint32 = 2
	TagUInt32      uint32 = 3
	TagVariantMap  uint32 = 8
	TagVariantList uint32 = 9
	TagString      uint32 = 10
	TagStringList  uint32 = 11
	TagByteArray   uint32 = 12
	TagDate        uint32 = 14
	TagTime        uint32 = 15
	TagDateTime    uint32 = 16
	TagUserType    uint32 = 127
	TagInt16       uint32 = 130
	TagInt8        uint32 = 131
	TagUInt16      uint32 = 133
	TagUInt8       uint32 = 134
)

// Decoder decodes one value of a registered type from the cursor
// following the QVariant tag and null flag.
type Decoder func(c *Cursor) (interface{}, error)

// Encoder encodes a value of a registered type, returning false if v is
// not of the type this encoder handles.
type Encoder func(b *Builder, v interface{}) bool

// userEntry is either a concrete Decoder or an alias to a built-in tag.
type userEntry struct {
	decode Decoder
	alias  uint32
	hasAlias bool
}

// Registry holds the two process-wide mappings from spec.md §4.2: Qt tag
// to decoder, and user-type name to decoder-or-alias. A Registry built
// with NewRegistry delegates lookups it cannot satisfy to a parent,
// letting tests build an isolated registry without re-registering every
// built-in (spec.md §9, "global registry as shared state").
type Registry struct {
	byTag      map[uint32]Decoder
	byUserName map[string]userEntry
	parent     *Registry
}

// NewBaseRegistry returns a Registry populated with all built-in tags
// from spec.md §3. This is the root of the process-wide registry tree.
func NewBaseRegistry() *Registry {
	r := &Registry{
		byTag:      make(map[uint32]Decoder),
		byUserName: make(map[string]userEntry),
	}
	r.RegisterBuiltin(TagBool, func(c *Cursor) (interface{}, error) { return DecodeBool(c) })
	r.RegisterBuiltin(TagInt32, func(c *Cursor) (interface{}, error) { return DecodeI32(c) })
	r.RegisterBuiltin(TagUInt32, func(c *Cursor) (interface{}, error) { return DecodeU32(c) })
	r.RegisterBuiltin(TagString, func(c *Cursor) (interface{}, error) { return DecodeString(c) })
	r.RegisterBuiltin(TagByteArray, func(c *Cursor) (interface{}, error) { return DecodeByteArray(c) })
	r.RegisterBuiltin(TagDate, func(c *Cursor) (interface{}, error) { return DecodeDate(c) })
	r.RegisterBuiltin(TagTime, func(c *Cursor) (interface{}, error) { return DecodeTime(c) })
	r.RegisterBuiltin(TagDateTime, func(c *Cursor) (interface{}, error) { return DecodeDateTime(c) })
	r.RegisterBuiltin(TagInt16, func(c *Cursor) (interface{}, error) { return DecodeI16(c) })
	r.RegisterBuiltin(TagInt8, func(c *Cursor) (interface{}, error) { return DecodeI8(c) })
	r.RegisterBuiltin(TagUInt16, func(c *Cursor) (interface{}, error) { return DecodeU16(c) })
	r.RegisterBuiltin(TagUInt8, func(c *Cursor) (interface{}, error) { return DecodeU8(c) })
	// VariantMap and VariantList are handled structurally by the variant
	// codec (they recurse into DecodeVariant with the caller's registry),
	// but are still registered so LookupTag reports them as known.
	r.RegisterBuiltin(TagVariantList, func(c *Cursor) (interface{}, error) { return DecodeVariantList(c, r) })
	r.RegisterBuiltin(TagVariantMap, func(c *Cursor) (interface{}, error) { return DecodeVariantMap(c, r) })
	r.RegisterBuiltin(TagStringList, func(c *Cursor) (interface{}, error) { return DecodeStringList(c) })
	return r
}

// NewRegistry returns a Registry that delegates any lookup it cannot
// satisfy to parent. Registrations on the child never mutate parent.
func NewRegistry(parent *Registry) *Registry {
	return &Registry{
		byTag:      make(map[uint32]Decoder),
		byUserName: make(map[string]userEntry),
		parent:     parent,
	}
}

// RegisterBuiltin registers or overwrites the decoder for a built-in Qt
// tag. Last registration wins (spec.md §3, "Registration is append-only;
// last registration for a given key wins").
func (r *Registry) RegisterBuiltin(tag uint32, dec Decoder) {
	r.byTag[tag] = dec
}

// RegisterUser registers a user-type name to a concrete decoder.
func (r *Registry) RegisterUser(name string, dec Decoder) {
	r.byUserName[name] = userEntry{decode: dec}
}

// RegisterUserAlias registers a user-type name as an alias to an
// existing built-in tag; the user payload will be decoded as that
// built-in type. Fails if tag is not itself resolvable.
func (r *Registry) RegisterUserAlias(name string, tag uint32) error {
	if _, ok := r.LookupTag(tag); !ok {
		return fmt.Errorf("wire: cannot alias %q to unknown tag %d", name, tag)
	}
	r.byUserName[name] = userEntry{alias: tag, hasAlias: true}
	return nil
}

// LookupTag resolves a built-in Qt type tag to its decoder.
func (r *Registry) LookupTag(tag uint32) (Decoder, bool) {
	if dec, ok := r.byTag[tag]; ok {
		return dec, true
	}
	if r.parent != nil {
		return r.parent.LookupTag(tag)
	}
	return nil, false
}

// LookupUser resolves a user-type name to either a concrete decoder or
// an alias tag.
func (r *Registry) LookupUser(name string) (dec Decoder, aliasTag uint32, isAlias bool, ok bool) {
	if e, found := r.byUserName[name]; found {
		if e.hasAlias {
			return nil, e.alias, true, true
		}
		return e.decode, 0, false, true
	}
	if r.parent != nil {
		return r.parent.LookupUser(name)
	}
	return nil, 0, false, false
}
