package tmi

import (
	"fmt"
	"io"
	"net"
)

// Transport is the byte-stream collaborator the client engine runs on.
// Implementations must return a zero-length slice with a nil error from
// Receive to signal a graceful close by the remote end, and must tolerate
// Close being called on an already-closed connection.
type Transport interface {
	Connect(host string, port int) error
	Send(data []byte) error
	Receive(max int) ([]byte, error)
	Close() error
	Connected() bool
}

// tcpTransport is the default Transport over a plain TCP connection.
type tcpTransport struct {
	conn      net.Conn
	connected bool
}

// NewTCPTransport returns a Transport backed by a TCP connection.
func NewTCPTransport() Transport {
	return &tcpTransport{}
}

// Connect dials the remote host.
func (t *tcpTransport) Connect(host string, port int) error {
	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("tmi: connect to %s:%d: %w", host, port, err)
	}
	t.conn = conn
	t.connected = true
	return nil
}

// Send writes data to the connection.
func (t *tcpTransport) Send(data []byte) error {
	if t.conn == nil {
		return io.ErrClosedPipe
	}
	_, err := t.conn.Write(data)
	return err
}

// Receive performs one blocking read of at most max bytes. A zero-length
// result with a nil error means the remote end closed the connection.
func (t *tcpTransport) Receive(max int) ([]byte, error) {
	if t.conn == nil {
		return nil, io.ErrClosedPipe
	}
	buf := make([]byte, max)
	n, err := t.conn.Read(buf)
	if err == io.EOF {
		t.connected = false
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Close closes the connection. Safe to call more than once.
func (t *tcpTransport) Close() error {
	t.connected = false
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// Connected reports whether the connection is open.
func (t *tcpTransport) Connected() bool {
	return t.connected && t.conn != nil
}
