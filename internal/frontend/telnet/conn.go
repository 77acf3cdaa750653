package telnet

import (
	"bufio"
	"bytes"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet command and option bytes (RFC 854, 857, 858).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	GA   byte = 249
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// Conn is one Telnet client. Reads come from a single session goroutine;
// writes may come from any goroutine and are serialized, so asynchronous
// battle notifications never interleave with command output.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	id     string

	mu     sync.Mutex
	prompt string

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw. A zero timeout disables the corresponding deadline.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// ID returns the session identifier assigned by the acceptor, or "".
func (c *Conn) ID() string { return c.id }

// Negotiate asks the client to suppress go-ahead.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next line of input without its terminator. Telnet
// commands and control characters other than tab are dropped.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), err
			}
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b < 32 && b != '\t':
		default:
			line.WriteByte(b)
		}
	}
}

// skipCommand consumes the remainder of a command after IAC.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
		return err
	case SB:
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if b != IAC {
				continue
			}
			next, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if next == SE {
				return nil
			}
		}
	}
	return nil
}

// ReadPassword reads one line with client echo suppressed, then restores echo
// and advances the cursor past the hidden input.
func (c *Conn) ReadPassword() (string, error) {
	if err := c.Write([]byte{IAC, WILL, OptEcho}); err != nil {
		return "", err
	}
	line, err := c.ReadLine()
	_ = c.Write([]byte{IAC, WONT, OptEcho, '\r', '\n'})
	return line, err
}

// Write sends raw bytes.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(data)
}

func (c *Conn) write(data []byte) error {
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// WriteLine sends text followed by \r\n.
func (c *Conn) WriteLine(text string) error {
	return c.WriteLines(text)
}

// WriteLines sends every line in one write. Embedded \n become \r\n.
func (c *Conn) WriteLines(lines ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write([]byte(joinLines(lines)))
}

// WritePrompt sends prompt without a newline and remembers it for Notify.
func (c *Conn) WritePrompt(prompt string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = prompt
	return c.write([]byte(prompt))
}

// Notify interrupts an idle prompt with lines, then redraws the prompt.
func (c *Conn) Notify(lines ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write([]byte("\r\n" + joinLines(lines) + c.prompt))
}

func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(l, "\r\n", "\n"), "\n", "\r\n"))
		b.WriteString("\r\n")
	}
	return b.String()
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

// FilterIAC removes Telnet command sequences from input. Escaped IAC IAC
// yields a single 0xFF.
func FilterIAC(input []byte) []byte {
	out := make([]byte, 0, len(input))
	for i := 0; i < len(input); i++ {
		if input[i] != IAC || i+1 >= len(input) {
			out = append(out, input[i])
			continue
		}
		switch cmd := input[i+1]; cmd {
		case WILL, WONT, DO, DONT:
			i += 2
		case SB:
			j := i + 2
			for j < len(input)-1 && (input[j] != IAC || input[j+1] != SE) {
				j++
			}
			if j < len(input)-1 {
				j++
			} else {
				j = len(input) - 1
			}
			i = j
		case IAC:
			out = append(out, IAC)
			i++
		default:
			i++
		}
	}
	return out
}
