package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/onegotchi/arena/internal/frontend/telnet"
)

// TelnetClient is a line-oriented Telnet client for handler tests. Output is
// matched with ANSI styling and Telnet commands removed.
type TelnetClient struct {
	conn net.Conn
	t    *testing.T
	raw  []byte
	// consumed is the length of plain-text output already returned.
	consumed int
}

// NewTelnetClient dials addr and returns a test client closed on cleanup.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil reads until substr appears in the plain-text output or timeout
// elapses. It returns the output up to and including the match; anything read
// after the match is kept for the next call.
//
// Precondition: substr must be non-empty.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	tmp := make([]byte, 1024)
	for {
		plain := telnet.StripANSI(string(telnet.FilterIAC(c.raw)))
		if i := strings.Index(plain[c.consumed:], substr); i >= 0 {
			end := c.consumed + i + len(substr)
			out := plain[c.consumed:end]
			c.consumed = end
			return out
		}
		n, err := c.conn.Read(tmp)
		c.raw = append(c.raw, tmp[:n]...)
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, plain[c.consumed:], err)
		}
	}
}

// Send writes text followed by \r\n.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
