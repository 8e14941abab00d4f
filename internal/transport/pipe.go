package transport

import (
	"compress/zlib"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
)

// Pipe composes the optional TLS record layer and the optional zlib
// compressor around a net.Conn (spec.md §4.4). Compression wraps inside
// TLS on both directions: plain -> deflate -> encrypt on egress, and the
// inverse on ingress (spec.md §4.4, design note "compression wraps
// inside TLS").
//
// Pipe implements io.ReadWriteCloser. Every Write flushes the deflate
// stream with a sync flush immediately afterward so the boundary lines
// up with one logical message (spec.md §4.4 "partial flush"; see
// DESIGN.md for why Go's flate.Writer.Flush is the idiomatic stand-in
// for Z_PARTIAL_FLUSH).
type Pipe struct {
	conn        net.Conn
	tlsConn     *tls.Conn
	compression bool

	zw *zlib.Writer
	zr io.ReadCloser

	metrics *Metrics
}

// NewPipe wraps conn with TLS (if tlsConfig is non-nil) and zlib (if
// compression is true). If tlsConfig is non-nil the TLS handshake is
// performed synchronously before NewPipe returns; a failure is reported
// as ErrHandshakeFailed (spec.md §4.4, §7) and the caller should close
// the underlying transport.
func NewPipe(ctx context.Context, conn net.Conn, tlsConfig *tls.Config, compression bool, metrics *Metrics) (*Pipe, error) {
	p := &Pipe{conn: conn, compression: compression, metrics: metrics}

	var writer io.Writer = conn
	if tlsConfig != nil {
		p.tlsConn = tls.Client(conn, tlsConfig)
		if err := p.tlsConn.HandshakeContext(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
		}
		writer = p.tlsConn
	}

	if compression {
		p.zw = zlib.NewWriter(writer)
	}

	return p, nil
}

// reader returns the innermost readable stream before zlib inflation:
// the TLS conn if encryption is on, else the raw conn.
func (p *Pipe) reader() io.Reader {
	if p.tlsConn != nil {
		return p.tlsConn
	}
	return p.conn
}

func (p *Pipe) writer() io.Writer {
	if p.tlsConn != nil {
		return p.tlsConn
	}
	return p.conn
}

// Read implements io.Reader. The zlib reader is created lazily, on the
// first call, so that construction never blocks on bytes the peer has
// not sent yet (the client writes ClientInit before the peer sends
// anything back).
func (p *Pipe) Read(b []byte) (int, error) {
	if !p.compression {
		n, err := p.reader().Read(b)
		if p.metrics != nil && n > 0 {
			p.metrics.BytesReceived.Add(float64(n))
		}
		return n, err
	}
	if p.zr == nil {
		zr, err := zlib.NewReader(p.reader())
		if err != nil {
			return 0, fmt.Errorf("transport: initializing zlib reader: %w", err)
		}
		p.zr = zr
	}
	n, err := p.zr.Read(b)
	if p.metrics != nil && n > 0 {
		p.metrics.BytesReceived.Add(float64(n))
	}
	return n, err
}

// Write implements io.Writer. When compression is enabled, every Write
// is followed by a Flush so the server can decode one message per
// partial flush (spec.md §5, "Ordering guarantees").
func (p *Pipe) Write(b []byte) (int, error) {
	if p.metrics != nil {
		p.metrics.BytesSent.Add(float64(len(b)))
	}
	if !p.compression {
		return p.writer().Write(b)
	}
	n, err := p.zw.Write(b)
	if err != nil {
		return n, err
	}
	if err := p.zw.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

// Close tears down the zlib and TLS layers (best-effort) and closes the
// underlying connection.
func (p *Pipe) Close() error {
	if p.zw != nil {
		_ = p.zw.Close()
	}
	if p.zr != nil {
		_ = p.zr.Close()
	}
	return p.conn.Close()
}
