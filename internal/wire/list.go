package wire

// DecodeVariantList decodes a u32 count followed by that many QVariants
// (spec.md §3).
func DecodeVariantList(c *Cursor, reg *Registry) ([]Variant, error) {
	n, err := DecodeU32(c)
	if err != nil {
		return nil, err
	}
	out := make([]Variant, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := DecodeVariant(c, reg)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// EncodeVariantList writes a u32 count followed by each element.
func EncodeVariantList(b *Builder, list []Variant) {
	EncodeU32(b, uint32(len(list)))
	for _, v := range list {
		EncodeVariant(b, v)
	}
}

// DecodeVariantMap decodes a u32 entry count followed by that many
// (string, QVariant) pairs. Duplicate keys retain the last occurrence
// (spec.md §4.3).
func DecodeVariantMap(c *Cursor, reg *Registry) (map[string]Variant, error) {
	n, err := DecodeU32(c)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Variant, n)
	for i := uint32(0); i < n; i++ {
		key, err := DecodeString(c)
		if err != nil {
			return nil, err
		}
		val, err := DecodeVariant(c, reg)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

// EncodeVariantMap writes a u32 entry count followed by each (key,
// value) pair. Map iteration order is not wire-significant; a decoder
// on the other end reconstructs the same map regardless of emission
// order.
func EncodeVariantMap(b *Builder, m map[string]Variant) {
	EncodeU32(b, uint32(len(m)))
	for k, v := range m {
		EncodeString(b, k)
		EncodeVariant(b, v)
	}
}

// DecodeStringList decodes a u32 count followed by that many strings.
func DecodeStringList(c *Cursor) ([]string, error) {
	n, err := DecodeU32(c)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		s, err := DecodeString(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// EncodeStringList writes a u32 count followed by each string.
func EncodeStringList(b *Builder, list []string) {
	EncodeU32(b, uint32(len(list)))
	for _, s := range list {
		EncodeString(b, s)
	}
}
