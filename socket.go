// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrSocketClosed  = errors.New("bridge: socket transport closed")
	ErrInvalidFrame  = errors.New("bridge: invalid frame")
	errValueTooShort = errors.New("bridge: truncated value segment")
)

// frameType identifies socket frame types
type frameType uint8

const (
	frameRequest  frameType = 0x01
	frameResponse frameType = 0x02
	frameError    frameType = 0x03
)

const maxFrameLen = 64 * 1024 * 1024 // 64MB max

// Value segments on the wire: [1 kind][4 len][bytes]. Binary and
// encoded payloads cross byte-exact; undefined crosses as an empty
// segment with its own kind so the host can tell it from an empty
// object.
func appendValue(buf []byte, v Value) []byte {
	var body []byte
	switch v.kind {
	case KindString:
		body = []byte(v.str)
	case KindBinary, KindEncoded:
		body = v.bin
	}
	buf = append(buf, byte(v.kind))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(body)))
	return append(buf, body...)
}

func readValue(b []byte) (Value, int, error) {
	if len(b) < 5 {
		return Undefined, 0, errValueTooShort
	}
	kind := Kind(b[0])
	n := int(binary.BigEndian.Uint32(b[1:5]))
	if len(b) < 5+n {
		return Undefined, 0, errValueTooShort
	}
	body := b[5 : 5+n]

	switch kind {
	case KindUndefined:
		return Undefined, 5 + n, nil
	case KindString:
		return StringValue(string(body)), 5 + n, nil
	case KindBinary:
		return BinaryValue(body), 5 + n, nil
	case KindEncoded:
		return EncodedValue(body), 5 + n, nil
	default:
		return Undefined, 0, ErrInvalidFrame
	}
}

// SocketTransport is the host boundary over a framed TCP connection,
// for hosts that run out of process.
type SocketTransport struct {
	conn     net.Conn
	writeMu  sync.Mutex
	pending  sync.Map // requestID -> chan *socketResponse
	nextID   atomic.Uint32
	closed   atomic.Bool
	readDone chan struct{}
}

type socketResponse struct {
	value Value
	raw   Value // error frame payload
	isErr bool
}

// DialSocket connects to a socket host.
func DialSocket(ctx context.Context, addr string) (*SocketTransport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bridge dial: %w", err)
	}

	t := &SocketTransport{
		conn:     conn,
		readDone: make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

// Invoke issues a single framed call and waits for the matching
// response. A host error frame resolves to *Error carrying the raw
// error value byte-exact.
func (t *SocketTransport) Invoke(ctx context.Context, cmd string, args Value, opts Options) (Value, error) {
	if t.closed.Load() {
		return Undefined, ErrSocketClosed
	}

	requestID := t.nextID.Add(1)
	respCh := make(chan *socketResponse, 1)
	t.pending.Store(requestID, respCh)
	defer t.pending.Delete(requestID)

	// Frame: [4 len][1 type][4 reqID][2 cmdLen][cmd][args value][headers value]
	cmdBytes := []byte(cmd)
	body := make([]byte, 0, 7+len(cmdBytes)+10)
	body = append(body, byte(frameRequest))
	body = binary.BigEndian.AppendUint32(body, requestID)
	body = binary.BigEndian.AppendUint16(body, uint16(len(cmdBytes)))
	body = append(body, cmdBytes...)
	body = appendValue(body, args)
	body = appendValue(body, opts.headers)

	buf := binary.BigEndian.AppendUint32(make([]byte, 0, 4+len(body)), uint32(len(body)))
	buf = append(buf, body...)

	t.writeMu.Lock()
	_, err := t.conn.Write(buf)
	t.writeMu.Unlock()
	if err != nil {
		return Undefined, fmt.Errorf("bridge write: %w", err)
	}

	select {
	case <-ctx.Done():
		return Undefined, ctx.Err()
	case resp := <-respCh:
		if resp.isErr {
			return Undefined, HostError(resp.raw)
		}
		return resp.value, nil
	case <-t.readDone:
		return Undefined, ErrSocketClosed
	}
}

// Embedded reports whether the connection to the host is still up.
func (t *SocketTransport) Embedded() bool {
	if t.closed.Load() {
		return false
	}
	select {
	case <-t.readDone:
		return false
	default:
		return true
	}
}

// Stringify renders a boundary value for display.
func (t *SocketTransport) Stringify(v Value) string { return v.String() }

func (t *SocketTransport) readLoop() {
	defer close(t.readDone)

	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(t.conn, header); err != nil {
			return
		}

		msgLen := binary.BigEndian.Uint32(header)
		if msgLen == 0 || msgLen > maxFrameLen {
			return
		}

		msg := make([]byte, msgLen)
		if _, err := io.ReadFull(t.conn, msg); err != nil {
			return
		}

		if len(msg) < 5 {
			continue
		}

		typ := frameType(msg[0])
		requestID := binary.BigEndian.Uint32(msg[1:5])
		payload, _, err := readValue(msg[5:])
		if err != nil {
			continue
		}

		if ch, ok := t.pending.Load(requestID); ok {
			respCh := ch.(chan *socketResponse)
			switch typ {
			case frameResponse:
				respCh <- &socketResponse{value: payload}
			case frameError:
				respCh <- &socketResponse{raw: payload, isErr: true}
			}
		}
	}
}

// Close closes the connection.
func (t *SocketTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	return t.conn.Close()
}

// SocketHost serves bridge commands to socket transports. The command
// table is a LocalHost, so handlers registered here behave identically
// in and out of process.
type SocketHost struct {
	listener net.Listener
	commands *LocalHost
	conns    sync.Map
	closed   atomic.Bool
}

// ListenSocket creates a socket host on addr.
func ListenSocket(addr string) (*SocketHost, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &SocketHost{
		listener: listener,
		commands: NewLocalHost(),
	}, nil
}

// Register installs a handler for the named command.
func (h *SocketHost) Register(cmd string, fn Handler) {
	h.commands.Register(cmd, fn)
}

// Serve accepts connections until the host is closed.
func (h *SocketHost) Serve(ctx context.Context) error {
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			if h.closed.Load() {
				return nil
			}
			continue
		}
		go h.handleConn(ctx, conn)
	}
}

func (h *SocketHost) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	h.conns.Store(conn, struct{}{})
	defer h.conns.Delete(conn)

	var writeMu sync.Mutex
	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}

		msgLen := binary.BigEndian.Uint32(header)
		if msgLen == 0 || msgLen > maxFrameLen {
			return
		}

		msg := make([]byte, msgLen)
		if _, err := io.ReadFull(conn, msg); err != nil {
			return
		}

		if len(msg) < 7 || frameType(msg[0]) != frameRequest {
			continue
		}
		requestID := binary.BigEndian.Uint32(msg[1:5])
		cmdLen := binary.BigEndian.Uint16(msg[5:7])
		if len(msg) < 7+int(cmdLen) {
			continue
		}
		cmd := string(msg[7 : 7+cmdLen])

		rest := msg[7+cmdLen:]
		args, n, err := readValue(rest)
		if err != nil {
			continue
		}
		headers, _, err := readValue(rest[n:])
		if err != nil {
			continue
		}

		go func() {
			res, err := h.commands.Invoke(ctx, cmd, args, Options{headers: headers})
			h.sendResponse(conn, &writeMu, requestID, res, err)
		}()
	}
}

func (h *SocketHost) sendResponse(conn net.Conn, writeMu *sync.Mutex, requestID uint32, res Value, err error) {
	typ := frameResponse
	payload := res
	if err != nil {
		typ = frameError
		if be, ok := err.(*Error); ok {
			payload = be.Raw
		} else {
			payload = StringValue(err.Error())
		}
	}

	body := make([]byte, 0, 10)
	body = append(body, byte(typ))
	body = binary.BigEndian.AppendUint32(body, requestID)
	body = appendValue(body, payload)

	buf := binary.BigEndian.AppendUint32(make([]byte, 0, 4+len(body)), uint32(len(body)))
	buf = append(buf, body...)

	writeMu.Lock()
	defer writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	conn.Write(buf)
}

// Close closes the host.
func (h *SocketHost) Close() error {
	h.closed.Store(true)
	h.conns.Range(func(key, _ any) bool {
		key.(net.Conn).Close()
		return true
	})
	return h.listener.Close()
}

// Addr returns the host's listen address.
func (h *SocketHost) Addr() string {
	return h.listener.Addr().String()
}
