package quassel

import (
	"fmt"

	"github.com/quasselc/quasselc/internal/wire"
)

// Established-session message type codes (spec.md §4.5).
const (
	MsgSync            = 1
	MsgRPC             = 2
	MsgInitRequest     = 3
	MsgInitData        = 4
	MsgHeartBeat       = 5
	MsgHeartBeatReply  = 6
)

// asInt64 extracts an integer from a Variant regardless of which
// concrete width/signedness the wire used to encode it (spec.md §9
// design note (a): "treat all widths symmetrically on both sides").
func asInt64(v wire.Variant) (int64, bool) {
	switch n := v.Value.(type) {
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	default:
		return 0, false
	}
}

// asOptionalString extracts a possibly-null string Variant, returning
// nil for the null case (the "object_name-or-null" shape in SYNC).
func asOptionalString(v wire.Variant) (*string, error) {
	if v.Null {
		return nil, nil
	}
	s, ok := v.Value.(string)
	if !ok {
		return nil, fmt.Errorf("quassel: expected string, got %T", v.Value)
	}
	return &s, nil
}

// dispatchEstablished decodes and routes one Established-state frame.
// Malformed shapes are logged and dropped, never treated as fatal
// (spec.md §4.5: "malformed shapes ... are logged and dropped but do not
// close the session").
func (s *Session) dispatchEstablished(list []wire.Variant) {
	log := s.cfg.logger()
	if len(list) == 0 {
		log.Warn("quassel: empty established-state frame")
		return
	}
	code, ok := asInt64(list[0])
	if !ok {
		log.Warnf("quassel: established-state frame has non-integer message type: %T", list[0].Value)
		return
	}

	switch code {
	case MsgSync:
		s.handleSync(list)
	case MsgRPC:
		s.handleRPC(list)
	case MsgInitRequest:
		s.handleInitRequest(list)
	case MsgInitData:
		s.handleInitData(list)
	case MsgHeartBeat:
		s.handleHeartBeat(list)
	case MsgHeartBeatReply:
		s.handleHeartBeatReply(list)
	default:
		log.Warnf("quassel: unknown established-state message type %d", code)
	}
}

func (s *Session) handleSync(list []wire.Variant) {
	if len(list) < 4 {
		s.cfg.logger().Warnf("quassel: SYNC frame has arity %d, want >= 4", len(list))
		return
	}
	class, ok := list[1].Value.(string)
	if !ok {
		s.cfg.logger().Warn("quassel: SYNC class_name is not a string")
		return
	}
	object, err := asOptionalString(list[2])
	if err != nil {
		s.cfg.logger().Warnf("quassel: SYNC object_name: %v", err)
		return
	}
	function, ok := list[3].Value.(string)
	if !ok {
		s.cfg.logger().Warn("quassel: SYNC function_name is not a string")
		return
	}
	if s.handlers.OnSync != nil {
		s.handlers.OnSync(class, object, function, list[4:])
	}
}

func (s *Session) handleRPC(list []wire.Variant) {
	if len(list) < 2 {
		s.cfg.logger().Warnf("quassel: RPC frame has arity %d, want >= 2", len(list))
		return
	}
	signature, ok := list[1].Value.(string)
	if !ok {
		s.cfg.logger().Warn("quassel: RPC slot_signature is not a string")
		return
	}
	if s.handlers.OnRPC != nil {
		s.handlers.OnRPC(signature, list[2:])
	}
}

func (s *Session) handleInitRequest(list []wire.Variant) {
	if len(list) != 3 {
		s.cfg.logger().Warnf("quassel: INIT_REQUEST frame has arity %d, want 3", len(list))
		return
	}
	class, ok1 := list[1].Value.(string)
	object, ok2 := list[2].Value.(string)
	if !ok1 || !ok2 {
		s.cfg.logger().Warn("quassel: INIT_REQUEST class/object is not a string")
		return
	}
	if s.handlers.OnInitRequest != nil {
		s.handlers.OnInitRequest(class, object)
	}
}

func (s *Session) handleInitData(list []wire.Variant) {
	if len(list) != 4 {
		s.cfg.logger().Warnf("quassel: INIT_DATA frame has arity %d, want 4", len(list))
		return
	}
	class, ok1 := list[1].Value.(string)
	object, ok2 := list[2].Value.(string)
	state, ok3 := list[3].Value.(map[string]wire.Variant)
	if !ok1 || !ok2 || !ok3 {
		s.cfg.logger().Warn("quassel: INIT_DATA has unexpected element types")
		return
	}
	if s.handlers.OnInitData != nil {
		s.handlers.OnInitData(class, object, state)
	}
}

func (s *Session) handleHeartBeat(list []wire.Variant) {
	if len(list) != 2 {
		s.cfg.logger().Warnf("quassel: HEART_BEAT frame has arity %d, want 2", len(list))
		return
	}
	ts, ok := list[1].Value.(wire.DateTime)
	if !ok {
		s.cfg.logger().Warn("quassel: HEART_BEAT payload is not a date-time")
		return
	}
	if err := s.sendHeartBeatReply(ts); err != nil {
		s.cfg.logger().Warnf("quassel: failed to send HEART_BEAT_REPLY: %v", err)
	}
}

func (s *Session) handleHeartBeatReply(list []wire.Variant) {
	if len(list) != 2 {
		s.cfg.logger().Warnf("quassel: HEART_BEAT_REPLY frame has arity %d, want 2", len(list))
		return
	}
	if _, ok := list[1].Value.(wire.DateTime); !ok {
		s.cfg.logger().Warn("quassel: HEART_BEAT_REPLY payload is not a date-time")
		return
	}
	s.recordHeartbeatReply()
}
