package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// Probe feature bits and protocol constants (spec.md §6).
const (
	Magic               uint32 = 0x42b33f00
	FeatureEncryption   uint32 = 0x01
	FeatureCompression  uint32 = 0x02
	DataStreamProtocol  uint32 = 0x02
	DataStreamFeatures  uint32 = 0
	ListEnd             uint32 = 0x80000000
)

// NegotiatedFeatures reports what the probe exchange actually agreed on.
type NegotiatedFeatures struct {
	Encryption  bool
	Compression bool
	// ProtoFeatures carries the informational proto_features field from
	// the probe response (spec.md §4.4); this client does not currently
	// interpret any bit within it.
	ProtoFeatures uint16
}

// AdvertiseEncryption reports whether the client should advertise the
// encryption feature bit, per spec.md §4.4: "Encryption is advertised
// only when the peer address is non-loopback."
func AdvertiseEncryption(addr net.Addr) bool {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		host = addr.String()
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return true
	}
	return !ip.IsLoopback()
}

// DoProbe performs the client-side probe/handshake word exchange over
// conn and returns the features the server actually negotiated.
func DoProbe(conn io.ReadWriter, advertiseEncryption, advertiseCompression bool) (NegotiatedFeatures, error) {
	var advertised uint32
	if advertiseEncryption {
		advertised |= FeatureEncryption
	}
	if advertiseCompression {
		advertised |= FeatureCompression
	}

	word1 := Magic | advertised
	word2 := DataStreamProtocol | ListEnd

	var out [8]byte
	binary.BigEndian.PutUint32(out[0:4], word1)
	binary.BigEndian.PutUint32(out[4:8], word2)
	if _, err := conn.Write(out[:]); err != nil {
		return NegotiatedFeatures{}, fmt.Errorf("transport: writing probe: %w", err)
	}

	var in [4]byte
	if _, err := io.ReadFull(conn, in[:]); err != nil {
		return NegotiatedFeatures{}, fmt.Errorf("transport: reading probe response: %w", err)
	}
	response := binary.BigEndian.Uint32(in[:])

	protoType := response & 0xFF
	protoFeatures := uint16((response >> 8) & 0xFFFF)
	connFeatures := (response >> 24) & 0xFF

	if protoType != DataStreamProtocol {
		return NegotiatedFeatures{}, ErrProtocolMismatch
	}

	return NegotiatedFeatures{
		Encryption:    connFeatures&FeatureEncryption != 0,
		Compression:   connFeatures&FeatureCompression != 0,
		ProtoFeatures: protoFeatures,
	}, nil
}
