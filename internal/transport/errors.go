package transport

import "fmt"

// ErrProtocolMismatch is returned when the probe response's proto_type
// byte is not DataStreamProtocol. Fatal to the session (spec.md §7).
var ErrProtocolMismatch = fmt.Errorf("transport: probe response is not the DataStream protocol")

// ErrHandshakeFailed is returned when the TLS handshake callback reports
// failure. Closes the transport (spec.md §7).
var ErrHandshakeFailed = fmt.Errorf("transport: TLS handshake failed")

// ErrTransportClosed is returned (or wrapped) on peer disconnect or local
// close. Terminates the session (spec.md §7).
var ErrTransportClosed = fmt.Errorf("transport: closed")
