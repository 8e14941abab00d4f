package transport

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks frame and byte counts for a single transport, the way
// runZeroInc-sockstats' TCPInfoCollector tracks per-connection kernel
// counters: plain prometheus.Counters incremented inline by the pipe
// (bytes) and by the session that owns it (frames, decode errors),
// optionally registered against a caller-supplied registry.
// This module starts no HTTP server; exposing /metrics is the caller's
// concern.
type Metrics struct {
	FramesSent     prometheus.Counter
	FramesReceived prometheus.Counter
	BytesSent      prometheus.Counter
	BytesReceived  prometheus.Counter
	DecodeErrors   prometheus.Counter
}

// NewMetrics builds a Metrics set labeled with the given session name and
// registers it against reg. A nil reg is valid: the counters still work,
// they are simply not exported anywhere.
func NewMetrics(reg prometheus.Registerer, session string) *Metrics {
	labels := prometheus.Labels{"session": session}
	m := &Metrics{
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "quasselc_frames_sent_total",
			Help:        "Frames written to the transport.",
			ConstLabels: labels,
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "quasselc_frames_received_total",
			Help:        "Frames read from the transport.",
			ConstLabels: labels,
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "quasselc_bytes_sent_total",
			Help:        "Bytes written to the pipe, including frame length prefixes, before compression.",
			ConstLabels: labels,
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "quasselc_bytes_received_total",
			Help:        "Bytes read from the pipe, including frame length prefixes, after decompression.",
			ConstLabels: labels,
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "quasselc_decode_errors_total",
			Help:        "Established-state frames dropped due to a recoverable decode error.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.FramesSent, m.FramesReceived, m.BytesSent, m.BytesReceived, m.DecodeErrors,
		} {
			// Ignore AlreadyRegisteredError: a caller sharing one
			// registry across reconnects of the same session name
			// should not crash the session over a metrics duplicate.
			if err := reg.Register(c); err != nil {
				if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
					_ = are
					continue
				}
			}
		}
	}
	return m
}
