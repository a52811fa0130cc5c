package antivirus

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// maxChunk keeps INSTREAM chunks well under clamd's StreamMaxLength default.
const maxChunk = 1 << 20

// ClamAVScanner connects to clamd daemon for malware scanning
type ClamAVScanner struct {
	address string        // TCP address (host:port) or Unix socket path
	timeout time.Duration // Connection and scan timeout
	dialer  net.Dialer
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner creates a ClamAV scanner
// address: TCP "localhost:3310" or Unix socket "/var/run/clamav/clamd.sock"
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{address: address, timeout: timeout}
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

func (c *ClamAVScanner) dial(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	network := "tcp"
	if strings.HasPrefix(c.address, "/") {
		network = "unix"
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn, err := c.dialer.DialContext(ctx, network, c.address)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping sends PING and expects PONG.
func (c *ClamAVScanner) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx, 5*time.Second)
	if err != nil {
		return fmt.Errorf("clamd unreachable: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return err
	}
	reply, err := readReply(conn)
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("unexpected clamd reply %q", reply)
	}
	return nil
}

// Scan streams data to clamd with the INSTREAM command.
func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	result := ScanResult{ScannerName: c.Name()}
	fail := func(format string, err error) ScanResult {
		result.Infected = true // Fail closed
		result.Error = fmt.Errorf(format, err)
		return result
	}

	conn, err := c.dial(ctx, c.timeout)
	if err != nil {
		return fail("connect to clamd: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return fail("send command: %w", err)
	}

	size := make([]byte, 4)
	for start := 0; start < len(data); start += maxChunk {
		end := min(start+maxChunk, len(data))
		binary.BigEndian.PutUint32(size, uint32(end-start))
		if _, err := conn.Write(size); err != nil {
			return fail("send chunk size: %w", err)
		}
		if _, err := conn.Write(data[start:end]); err != nil {
			return fail("send chunk: %w", err)
		}
	}
	// Zero-length chunk ends the stream.
	if _, err := conn.Write([]byte{0, 0, 0, 0}); err != nil {
		return fail("send end marker: %w", err)
	}

	reply, err := readReply(conn)
	if err != nil {
		return fail("read reply: %w", err)
	}
	return parseReply(result, reply)
}

// parseReply interprets "stream: OK", "stream: <threat> FOUND" and
// "<message> ERROR" replies.
func parseReply(result ScanResult, reply string) ScanResult {
	body := reply
	if _, after, ok := strings.Cut(reply, ":"); ok {
		body = strings.TrimSpace(after)
	}
	switch {
	case strings.HasSuffix(body, "FOUND"):
		result.Infected = true
		result.ThreatName = strings.TrimSpace(strings.TrimSuffix(body, "FOUND"))
	case body == "OK":
	default:
		result.Infected = true
		result.Error = fmt.Errorf("scan error: %s", reply)
	}
	return result
}

// readReply reads one null-terminated reply.
func readReply(r io.Reader) (string, error) {
	buf := make([]byte, 0, 128)
	tmp := make([]byte, 128)
	for {
		n, err := r.Read(tmp)
		buf = append(buf, tmp[:n]...)
		if i := strings.IndexByte(string(buf), 0); i >= 0 {
			return strings.TrimSpace(string(buf[:i])), nil
		}
		if err == io.EOF {
			return strings.TrimSpace(string(buf)), nil
		}
		if err != nil {
			return "", err
		}
	}
}
