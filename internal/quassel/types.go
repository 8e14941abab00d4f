package quassel

import "github.com/quasselc/quasselc/internal/wire"

// BufferInfo is the registered "BufferInfo" user type (spec.md §6):
// i32 bufferId, i32 networkId, i16 type, u32 groupId, byte-array name.
type BufferInfo struct {
	BufferID  int32
	NetworkID int32
	Type      int16
	GroupID   uint32
	Name      string
}

func decodeBufferInfo(c *wire.Cursor) (interface{}, error) {
	bufferID, err := wire.DecodeI32(c)
	if err != nil {
		return nil, err
	}
	networkID, err := wire.DecodeI32(c)
	if err != nil {
		return nil, err
	}
	typ, err := wire.DecodeI16(c)
	if err != nil {
		return nil, err
	}
	groupID, err := wire.DecodeU32(c)
	if err != nil {
		return nil, err
	}
	name, err := wire.DecodeByteArray(c)
	if err != nil {
		return nil, err
	}
	return BufferInfo{
		BufferID:  bufferID,
		NetworkID: networkID,
		Type:      typ,
		GroupID:   groupID,
		Name:      string(name),
	}, nil
}

// Message is the registered "Message" user type (spec.md §6): i32
// msgId, u32 timeStamp, u32 type, u8 flags, BufferInfo, byte-array
// sender, byte-array contents.
type Message struct {
	MsgID      int32
	Timestamp  uint32
	Type       uint32
	Flags      uint8
	BufferInfo BufferInfo
	Sender     string
	Contents   string
}

func decodeMessage(c *wire.Cursor) (interface{}, error) {
	msgID, err := wire.DecodeI32(c)
	if err != nil {
		return nil, err
	}
	timestamp, err := wire.DecodeU32(c)
	if err != nil {
		return nil, err
	}
	msgType, err := wire.DecodeU32(c)
	if err != nil {
		return nil, err
	}
	flags, err := wire.DecodeU8(c)
	if err != nil {
		return nil, err
	}
	bufferInfoVal, err := decodeBufferInfo(c)
	if err != nil {
		return nil, err
	}
	sender, err := wire.DecodeByteArray(c)
	if err != nil {
		return nil, err
	}
	contents, err := wire.DecodeByteArray(c)
	if err != nil {
		return nil, err
	}
	return Message{
		MsgID:      msgID,
		Timestamp:  timestamp,
		Type:       msgType,
		Flags:      flags,
		BufferInfo: bufferInfoVal.(BufferInfo),
		Sender:     string(sender),
		Contents:   string(contents),
	}, nil
}

// intAliases are the integer user-type names that alias straight to the
// built-in int32 tag (spec.md §6): "the integer aliases
// IdentityId/BufferId/NetworkId/UserId/AccountId/MsgId -> i32".
var intAliases = []string{
	"IdentityId", "BufferId", "NetworkId", "UserId", "AccountId", "MsgId",
}

// variantMapAliases are user-type names that decode exactly like a
// QVariantMap (spec.md §6): "NetworkInfo"->variant-map,
// "Network::Server"->variant-map, "Identity"->variant-map.
var variantMapAliases = []string{"NetworkInfo", "Network::Server", "Identity"}

// RegisterStandardTypes populates reg with the standard user types
// spec.md §6 requires every session to know before it can decode
// SYNC/RPC/INIT_DATA payloads referencing them.
func RegisterStandardTypes(reg *wire.Registry) error {
	reg.RegisterUser("BufferInfo", decodeBufferInfo)
	reg.RegisterUser("Message", decodeMessage)

	for _, name := range intAliases {
		if err := reg.RegisterUserAlias(name, wire.TagInt32); err != nil {
			return err
		}
	}
	for _, name := range variantMapAliases {
		if err := reg.RegisterUserAlias(name, wire.TagVariantMap); err != nil {
			return err
		}
	}
	return nil
}
