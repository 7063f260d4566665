package serialport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	DefaultBaudRate = 115200
	DefaultTimeout  = 2 * time.Second
)

var ErrTimeout = errors.New("timed out waiting for line")

// Port is the subset of serial.Port used for line based communication
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Open opens a serial device, replaced in tests
var Open = func(name string, baudRate int) (Port, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baudRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return port, nil
}

// LineConn exchanges newline terminated text lines with a serial device.
// The port is opened lazily and reopened after an I/O error.
type LineConn struct {
	name     string
	baudRate int

	mu   sync.Mutex
	port Port
	buf  []byte
}

func NewLineConn(name string, baudRate int) *LineConn {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	return &LineConn{
		name:     name,
		baudRate: baudRate,
	}
}

func (c *LineConn) Name() string {
	return c.name
}

func (c *LineConn) ensureOpen() (Port, error) {
	if c.port != nil {
		return c.port, nil
	}
	port, err := Open(c.name, c.baudRate)
	if err != nil {
		return nil, err
	}
	c.port = port
	c.buf = nil
	return port, nil
}

func (c *LineConn) reset() {
	if c.port != nil {
		_ = c.port.Close()
	}
	c.port = nil
	c.buf = nil
}

// WriteLine writes the given text followed by a newline
func (c *LineConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	port, err := c.ensureOpen()
	if err != nil {
		return err
	}
	if _, err := port.Write([]byte(line + "\n")); err != nil {
		c.reset()
		return fmt.Errorf("failed to write to serial port %s: %w", c.name, err)
	}
	return nil
}

// Query discards pending input, writes the query line (if any) and
// waits for the next response line.
func (c *LineConn) Query(query string, timeout time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	port, err := c.ensureOpen()
	if err != nil {
		return "", err
	}

	if len(query) > 0 {
		if err := port.ResetInputBuffer(); err != nil {
			c.reset()
			return "", fmt.Errorf("failed to reset serial port %s: %w", c.name, err)
		}
		c.buf = nil
		if _, err := port.Write([]byte(query + "\n")); err != nil {
			c.reset()
			return "", fmt.Errorf("failed to write to serial port %s: %w", c.name, err)
		}
	}

	return c.readLine(port, timeout)
}

func (c *LineConn) readLine(port Port, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	chunk := make([]byte, 64)
	for {
		if i := bytes.IndexByte(c.buf, '\n'); i >= 0 {
			line := string(c.buf[:i])
			c.buf = c.buf[i+1:]
			line = strings.TrimSpace(line)
			if len(line) <= 0 {
				continue
			}
			return line, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", fmt.Errorf("serial port %s: %w", c.name, ErrTimeout)
		}
		if err := port.SetReadTimeout(remaining); err != nil {
			c.reset()
			return "", err
		}
		n, err := port.Read(chunk)
		if err != nil {
			c.reset()
			return "", fmt.Errorf("failed to read from serial port %s: %w", c.name, err)
		}
		c.buf = append(c.buf, chunk[:n]...)
	}
}

func (c *LineConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port = nil
	c.buf = nil
	return err
}
