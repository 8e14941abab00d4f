package quassel

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quasselc/quasselc/internal/transport"
	"github.com/quasselc/quasselc/internal/wire"
)

// State is a session's position in the Probing -> Handshaking ->
// Authenticating -> Established state machine (spec.md §4.5).
type State int

const (
	StateProbing State = iota
	StateHandshaking
	StateAuthenticating
	StateEstablished
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateProbing:
		return "probing"
	case StateHandshaking:
		return "handshaking"
	case StateAuthenticating:
		return "authenticating"
	case StateEstablished:
		return "established"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session drives one connection to a core: probe, handshake, login, then
// the Established-state dispatch loop. A Session is not safe for
// concurrent use by multiple goroutines (spec.md §5, "single-threaded
// cooperative").
type Session struct {
	cfg      Config
	handlers Handlers
	registry *wire.Registry
	metrics  *transport.Metrics

	conn   net.Conn
	pipe   *transport.Pipe
	framer *transport.Framer

	state State

	mu                sync.Mutex
	heartbeatReceived time.Time
	lastRTT           time.Duration
}

// NewSession builds a Session with the standard user types registered on
// top of a fresh base registry, plus whatever cfg.PopulateRegistry adds
// (spec.md §6, "Configuration inputs").
func NewSession(cfg Config, handlers Handlers) (*Session, error) {
	reg := wire.NewRegistry(wire.NewBaseRegistry())
	if err := RegisterStandardTypes(reg); err != nil {
		return nil, fmt.Errorf("quassel: registering standard types: %w", err)
	}
	if cfg.PopulateRegistry != nil {
		cfg.PopulateRegistry(reg)
	}
	return &Session{
		cfg:      cfg,
		handlers: handlers,
		registry: reg,
		framer:   transport.NewFramer(),
		state:    StateProbing,
	}, nil
}

// State reports the session's current position in the state machine.
func (s *Session) State() State {
	return s.state
}

// LastHeartbeatRTT reports how long the most recently answered HEART_BEAT
// took to echo — the time between decoding the inbound frame and the
// HEART_BEAT_REPLY write returning. Zero until the first heartbeat has
// been answered.
func (s *Session) LastHeartbeatRTT() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRTT
}

func (s *Session) recordHeartbeatReply() {
	// No outbound heartbeat initiation exists on this client (see
	// DESIGN.md); reception of a HEART_BEAT_REPLY without a prior
	// HEART_BEAT this session sent is not expected in normal operation
	// and is a no-op here.
}

// Connect dials the configured host:port, runs the probe, optionally
// negotiates TLS and compression, and drives the handshake through to
// Established. On success the session is ready for Run.
func (s *Session) Connect(ctx context.Context) error {
	log := s.cfg.logger()

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("quassel: dial %s: %w", addr, err)
	}
	s.conn = conn

	s.metrics = transport.NewMetrics(s.cfg.MetricsRegisterer, addr)

	advertiseEncryption := s.cfg.TLSConfig != nil && transport.AdvertiseEncryption(conn.RemoteAddr())
	negotiated, err := transport.DoProbe(conn, advertiseEncryption, s.cfg.Compression)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("quassel: probe: %w", err)
	}
	log.WithFields(logrus.Fields{
		"encryption":  negotiated.Encryption,
		"compression": negotiated.Compression,
	}).Debug("quassel: probe negotiated")

	var tlsConfig *tls.Config
	if negotiated.Encryption && s.cfg.TLSConfig != nil {
		tlsConfig = s.cfg.TLSConfig
	}
	pipe, err := transport.NewPipe(ctx, conn, tlsConfig, negotiated.Compression, s.metrics)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("quassel: %w", err)
	}
	s.pipe = pipe
	s.state = StateHandshaking

	if err := s.writeFrame(clientInitPayload()); err != nil {
		return fmt.Errorf("quassel: sending ClientInit: %w", err)
	}

	if err := s.handshakeLoop(); err != nil {
		return err
	}
	return nil
}

// handshakeLoop reads legacy key/value messages until SessionInit (or a
// rejection) resolves the Handshaking/Authenticating states (spec.md
// §4.5).
func (s *Session) handshakeLoop() error {
	log := s.cfg.logger()
	for {
		payload, err := s.readFrame()
		if err != nil {
			return fmt.Errorf("quassel: reading handshake frame: %w", err)
		}
		list, err := wire.DecodeVariantList(wire.NewCursor(payload), s.registry)
		if err != nil {
			log.Warnf("quassel: discarding undecodable handshake frame: %v", err)
			continue
		}
		kv, err := DecodeLegacyMessage(list)
		if err != nil {
			log.Warnf("quassel: discarding malformed legacy message: %v", err)
			continue
		}
		mt, _ := msgType(kv)

		switch mt {
		case msgClientInitReject:
			log.Error("quassel: ClientInitReject received, closing transport")
			_ = s.Close()
			return fmt.Errorf("quassel: %s", mt)

		case msgClientInitAck:
			if !boolField(kv, "Configured") {
				log.Error("quassel: core reports Configured=false; transport remains open but unusable")
				continue
			}
			s.state = StateAuthenticating
			if err := s.writeFrame(clientLoginPayload(s.cfg.User, s.cfg.Password)); err != nil {
				return fmt.Errorf("quassel: sending ClientLogin: %w", err)
			}

		case msgClientLoginAck:
			log.Debug("quassel: ClientLoginAck received")

		case msgClientLoginReject:
			log.Error("quassel: ClientLoginReject received, closing transport")
			if s.handlers.OnLoginRejected != nil {
				s.handlers.OnLoginRejected()
			}
			_ = s.Close()
			return fmt.Errorf("quassel: %s", mt)

		case msgSessionInit:
			state, err := decodeSessionState(kv)
			if err != nil {
				return fmt.Errorf("quassel: decoding SessionInit: %w", err)
			}
			s.state = StateEstablished
			if s.handlers.OnEstablished != nil {
				s.handlers.OnEstablished(state)
			}
			return nil

		default:
			log.Debugf("quassel: ignoring unexpected handshake message %q", mt)
		}
	}
}

// Run drives the Established-state event loop until the transport closes
// or ctx is done. It must be called after a successful Connect.
func (s *Session) Run(ctx context.Context) error {
	if s.state != StateEstablished {
		return fmt.Errorf("quassel: Run called before session is established (state=%s)", s.state)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-done:
		}
	}()

	for {
		payload, err := s.readFrame()
		if err != nil {
			s.state = StateClosed
			if s.handlers.OnConnectionLost != nil {
				s.handlers.OnConnectionLost(err)
			}
			return err
		}
		list, err := wire.DecodeVariantList(wire.NewCursor(payload), s.registry)
		if err != nil {
			if s.metrics != nil {
				s.metrics.DecodeErrors.Inc()
			}
			s.cfg.logger().Warnf("quassel: dropping undecodable established-state frame: %v", err)
			continue
		}
		s.dispatchEstablished(list)
	}
}

// readFrame blocks until the framer can produce a complete payload,
// reading and feeding the pipe as needed.
func (s *Session) readFrame() ([]byte, error) {
	for {
		if payload, ok := s.framer.Next(); ok {
			if s.metrics != nil {
				s.metrics.FramesReceived.Inc()
			}
			out := make([]byte, len(payload))
			copy(out, payload)
			return out, nil
		}
		s.framer.Compact()

		buf := make([]byte, 64*1024)
		n, err := s.pipe.Read(buf)
		if n > 0 {
			s.framer.Feed(buf[:n])
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", transport.ErrTransportClosed, err)
		}
	}
}

// writeFrame encodes a raw legacy-message payload (already a
// QVariantList encoding) into a length-prefixed frame and writes it.
func (s *Session) writeFrame(payload []byte) error {
	frame := transport.EncodeFrame(payload)
	if _, err := s.pipe.Write(frame); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.FramesSent.Inc()
	}
	return nil
}

// send encodes list as a QVariantList and writes it as one frame
// (spec.md §4.5, Established-state outbound messages).
func (s *Session) send(list []wire.Variant) error {
	b := wire.NewBuilder(0)
	wire.EncodeVariantList(b, list)
	return s.writeFrame(b.Bytes())
}

// sendHeartBeatReply answers an inbound HEART_BEAT by echoing its date
// and time (spec.md §4.5, §8.8, S6; EncodeDateTime always writes the UTC
// flag as 1) and records the round-trip
// time for LastHeartbeatRTT. The message-type field is pinned to the
// explicit u16 width S6 specifies (spec.md §8 scenario S6: "[u16 6,
// DateTime(...)]"), not the int32 natural mapping.
func (s *Session) sendHeartBeatReply(ts wire.DateTime) error {
	start := time.Now()
	err := s.send([]wire.Variant{
		wire.NewUInt16Variant(MsgHeartBeatReply),
		wire.NewDateTimeVariant(ts),
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lastRTT = time.Since(start)
	s.mu.Unlock()
	return nil
}

// Close tears down the underlying transport. Safe to call more than
// once.
func (s *Session) Close() error {
	s.state = StateClosed
	if s.pipe != nil {
		return s.pipe.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
