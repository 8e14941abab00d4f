package quassel

import (
	"fmt"

	"github.com/quasselc/quasselc/internal/wire"
)

// ProtocolVersion is reported as the "ProtocolVersion" entry of the
// ClientInit message; informational only (spec.md §6).
const ProtocolVersion = 10

// ClientVersion and ClientDate identify this client in ClientInit. Kept
// as plain constants rather than build-time injected values: nothing in
// spec.md ties them to a release process.
const (
	ClientVersion = "quasselc"
	ClientDate    = "unknown"
)

// legacy MsgType string values (spec.md §4.5, "legacy key/value
// framing").
const (
	msgClientInit       = "ClientInit"
	msgClientInitAck     = "ClientInitAck"
	msgClientInitReject  = "ClientInitReject"
	msgClientLogin       = "ClientLogin"
	msgClientLoginAck    = "ClientLoginAck"
	msgClientLoginReject = "ClientLoginReject"
	msgSessionInit       = "SessionInit"
)

// EncodeLegacyMessage builds the QVariantList payload for a legacy
// key/value message: alternating UTF-8 byte-array keys and QVariant
// values (spec.md §4.5).
func EncodeLegacyMessage(kv map[string]wire.Variant) []byte {
	list := make([]wire.Variant, 0, len(kv)*2)
	for k, v := range kv {
		list = append(list, wire.NewByteArrayVariant([]byte(k)))
		list = append(list, v)
	}
	b := wire.NewBuilder(0)
	wire.EncodeVariantList(b, list)
	return b.Bytes()
}

// DecodeLegacyMessage rebuilds a string-keyed map from a legacy
// key/value QVariantList, asserting the list has even length (spec.md
// §4.5).
func DecodeLegacyMessage(list []wire.Variant) (map[string]wire.Variant, error) {
	if len(list)%2 != 0 {
		return nil, fmt.Errorf("quassel: legacy message has odd element count %d", len(list))
	}
	out := make(map[string]wire.Variant, len(list)/2)
	for i := 0; i < len(list); i += 2 {
		keyRaw, ok := list[i].Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("quassel: legacy message key at index %d is not a byte array", i)
		}
		out[string(keyRaw)] = list[i+1]
	}
	return out, nil
}

// clientInitPayload builds the ClientInit legacy message (spec.md §4.5).
func clientInitPayload() []byte {
	return EncodeLegacyMessage(map[string]wire.Variant{
		"MsgType":       wire.NewStringVariant(msgClientInit),
		"ClientVersion": wire.NewStringVariant(ClientVersion),
		"ClientDate":    wire.NewStringVariant(ClientDate),
		"ProtocolVersion": wire.NewUInt32Variant(ProtocolVersion),
	})
}

// clientLoginPayload builds the ClientLogin legacy message carrying the
// configured user/password (spec.md §4.5).
func clientLoginPayload(user, password string) []byte {
	return EncodeLegacyMessage(map[string]wire.Variant{
		"MsgType": wire.NewStringVariant(msgClientLogin),
		"User":    wire.NewStringVariant(user),
		"Password": wire.NewStringVariant(password),
	})
}

// msgType extracts the MsgType string from a decoded legacy message map.
func msgType(kv map[string]wire.Variant) (string, bool) {
	v, ok := kv["MsgType"]
	if !ok {
		return "", false
	}
	s, ok := v.Value.(string)
	return s, ok
}

// boolField extracts a boolean field, defaulting to false when absent or
// of an unexpected type.
func boolField(kv map[string]wire.Variant, key string) bool {
	v, ok := kv[key]
	if !ok {
		return false
	}
	b, _ := v.Value.(bool)
	return b
}

// decodeSessionState pulls Identities/NetworkIds/BufferInfos out of the
// SessionInit message's "SessionState" entry (spec.md §4.5, §6).
func decodeSessionState(kv map[string]wire.Variant) (SessionState, error) {
	raw, ok := kv["SessionState"]
	if !ok {
		return SessionState{}, fmt.Errorf("quassel: SessionInit missing SessionState")
	}
	m, ok := raw.Value.(map[string]wire.Variant)
	if !ok {
		return SessionState{}, fmt.Errorf("quassel: SessionState is not a variant-map")
	}

	listOf := func(key string) []wire.Variant {
		v, ok := m[key]
		if !ok {
			return nil
		}
		l, _ := v.Value.([]wire.Variant)
		return l
	}

	return SessionState{
		Identities:  listOf("Identities"),
		NetworkIDs:  listOf("NetworkIds"),
		BufferInfos: listOf("BufferInfos"),
	}, nil
}
