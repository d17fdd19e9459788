// Package transport implements the narrow, point-to-point, reliable,
// ordered byte channel used between individual ranks of two coupled
// participants. It is deliberately not a general RPC framework
// on purpose: one connection, one peer, typed primitive
// and array codecs, nothing else.
package transport

import (
	"io"
	"net"
	"sync"

	"github.com/jabolina/precouple/pkg/precouple/definition"
	"github.com/jabolina/precouple/pkg/precouple/types"
)

// Transport is a bidirectional, reliable, ordered byte channel between
// a pair of ranks. Any I/O error is fatal: the coupling cannot recover
// from a lost participant.
type Transport interface {
	SendInt(v int32) error
	ReceiveInt() (int32, error)

	SendDouble(v float64) error
	ReceiveDouble() (float64, error)

	SendBool(v bool) error
	ReceiveBool() (bool, error)

	SendString(v string) error
	ReceiveString() (string, error)

	SendDoubleArray(v []float64) error
	ReceiveDoubleArray() ([]float64, error)

	SendIntArray(v []int32) error
	ReceiveIntArray() ([]int32, error)

	// Close releases the underlying connection. Safe to call more than
	// once.
	Close() error
}

// TCPTransport is the default Transport, a thin framing layer over a
// net.Conn: a struct pairing a logger with the underlying connection,
// typed primitive and array codecs replacing any notion of a generic
// message envelope.
type TCPTransport struct {
	log  definition.Logger
	conn net.Conn
	peer string

	mutex  sync.Mutex
	closed bool
}

// NewTCPTransport wraps an already-established net.Conn. Use
// AcceptConnection / RequestConnection to establish one.
func NewTCPTransport(conn net.Conn, peer string, log definition.Logger) *TCPTransport {
	return &TCPTransport{conn: conn, peer: peer, log: log}
}

// AcceptConnection blocks on the listener for one inbound connection
// from peer.
func AcceptConnection(listener net.Listener, peer string, log definition.Logger) (*TCPTransport, error) {
	conn, err := listener.Accept()
	if err != nil {
		return nil, types.TransportError(peer, err)
	}
	log.Infof("accepted connection from %s", peer)
	return NewTCPTransport(conn, peer, log), nil
}

// RequestConnection dials addr to reach peer, mirroring
// requestConnection(peer, self).
func RequestConnection(addr string, peer string, log definition.Logger) (*TCPTransport, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, types.TransportError(peer, err)
	}
	log.Infof("connected to %s at %s", peer, addr)
	return NewTCPTransport(conn, peer, log), nil
}

func (t *TCPTransport) SendInt(v int32) error {
	return t.wrap(types.WriteInt(t.conn, v))
}

func (t *TCPTransport) ReceiveInt() (int32, error) {
	v, err := types.ReadInt(t.conn)
	return v, t.wrap(err)
}

func (t *TCPTransport) SendDouble(v float64) error {
	return t.wrap(types.WriteDouble(t.conn, v))
}

func (t *TCPTransport) ReceiveDouble() (float64, error) {
	v, err := types.ReadDouble(t.conn)
	return v, t.wrap(err)
}

func (t *TCPTransport) SendBool(v bool) error {
	return t.wrap(types.WriteBool(t.conn, v))
}

func (t *TCPTransport) ReceiveBool() (bool, error) {
	v, err := types.ReadBool(t.conn)
	return v, t.wrap(err)
}

func (t *TCPTransport) SendString(v string) error {
	return t.wrap(types.WriteString(t.conn, v))
}

func (t *TCPTransport) ReceiveString() (string, error) {
	v, err := types.ReadString(t.conn)
	return v, t.wrap(err)
}

func (t *TCPTransport) SendDoubleArray(v []float64) error {
	return t.wrap(types.WriteDoubleArray(t.conn, v))
}

func (t *TCPTransport) ReceiveDoubleArray() ([]float64, error) {
	v, err := types.ReadDoubleArray(t.conn)
	return v, t.wrap(err)
}

func (t *TCPTransport) SendIntArray(v []int32) error {
	return t.wrap(types.WriteIntArray(t.conn, v))
}

func (t *TCPTransport) ReceiveIntArray() ([]int32, error) {
	v, err := types.ReadIntArray(t.conn)
	return v, t.wrap(err)
}

func (t *TCPTransport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}

// wrap turns any I/O error into the fatal ErrTransport kind, tagging it
// with the peer name. io.EOF is wrapped the same way: a lost connection
// mid-exchange is exactly the "peer is gone" condition this runtime
// treats as unrecoverable.
func (t *TCPTransport) wrap(err error) error {
	if err == nil {
		return nil
	}
	if err == io.EOF {
		t.log.Errorf("connection to %s closed", t.peer)
	}
	return types.TransportError(t.peer, err)
}
