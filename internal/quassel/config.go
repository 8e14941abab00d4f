// Package quassel implements the client-side session state machine for
// the Quassel IRC-core DataStream protocol: probe/handshake/login over
// internal/transport, the legacy key/value messages, and dispatch of
// established-session SYNC/RPC/INIT_REQUEST/INIT_DATA/heartbeat traffic
// to caller-supplied handlers.
package quassel

import (
	"crypto/tls"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/quasselc/quasselc/internal/wire"
)

// Config carries the inputs a caller supplies to open one session
// (spec.md §6, "Configuration inputs").
type Config struct {
	Host string
	Port int

	User     string
	Password string

	// TLSConfig is the caller's TLS trust policy. A nil value means the
	// client never advertises or uses encryption, regardless of what the
	// peer supports. A non-nil value is used if and only if the server
	// negotiates the encryption feature bit.
	TLSConfig *tls.Config

	// Compression advertises the zlib compression feature bit during the
	// probe. Whether it actually applies depends on what the server
	// negotiates (spec.md §4.4).
	Compression bool

	// PopulateRegistry is invoked once, before connecting, with the
	// session's type registry after the standard types (spec.md §6) have
	// already been registered — the caller's chance to add
	// application-specific user types.
	PopulateRegistry func(*wire.Registry)

	// Logger receives structured logs for the probe result, handshake
	// rejections, and recoverable decode errors; state transitions are
	// not logged. A nil Logger falls back to
	// logrus.StandardLogger().
	Logger logrus.FieldLogger

	// MetricsRegisterer optionally receives the session's frame/byte
	// counters. Nil disables registration (the counters still exist and
	// increment, they are just not exported anywhere).
	MetricsRegisterer prometheus.Registerer
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

// SessionState is the state bundle decoded from the SessionInit legacy
// message (spec.md §4.5, §6): the identities, network ids, and buffer
// infos the core reports for the authenticated user.
type SessionState struct {
	Identities  []wire.Variant
	NetworkIDs  []wire.Variant
	BufferInfos []wire.Variant
}

// Handlers are the caller-supplied callbacks invoked from the session's
// event loop goroutine (spec.md §6, "Handlers exposed to callers"). No
// handler is invoked concurrently with another for the same session
// (spec.md §5).
type Handlers struct {
	OnEstablished    func(state SessionState)
	OnSync           func(class string, object *string, function string, args []wire.Variant)
	OnRPC            func(signature string, args []wire.Variant)
	OnInitRequest    func(class, object string)
	OnInitData       func(class, object string, state map[string]wire.Variant)
	OnLoginRejected  func()
	OnConnectionLost func(reason error)
}
