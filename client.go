// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge provides a typed command/event bridge between
// sandboxed frontend modules and a host application. Frontend code
// uses the Client against the Transport interface without caring about
// how the host is reached (in-process, socket, JSON-RPC, gRPC).
package bridge

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Transport is the host boundary. It consists of a single opaque
// asynchronous call primitive plus two synchronous queries. Everything
// above this interface is pure and independently testable against a
// stub implementation.
type Transport interface {
	// Invoke issues one call to the host and resolves with its raw
	// result value or an error. Host-reported failures come back as
	// *Error so the original error value is preserved unchanged.
	Invoke(ctx context.Context, cmd string, args Value, opts Options) (Value, error)

	// Embedded reports whether the current execution context is
	// connected to the expected host runtime.
	Embedded() bool

	// Stringify renders an arbitrary boundary value to display text.
	// The shape of host error values is host-defined, so rendering is
	// delegated rather than decoded locally.
	Stringify(v Value) string
}

// Client builds typed invoke and emit requests against a Transport.
type Client struct {
	t     Transport
	codec Codec
	log   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCodec sets a custom codec for structured args and replies.
func WithCodec(c Codec) Option {
	return func(cl *Client) { cl.codec = c }
}

// WithLogger sets the client's logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// New creates a client over the given transport.
func New(t Transport, opts ...Option) *Client {
	c := &Client{
		t:     t,
		codec: defaultCodec,
		log:   Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embedded reports whether the client is running against the expected
// host runtime.
func (c *Client) Embedded() bool {
	return c.t.Embedded()
}

// Call makes a command invocation with structured args and decodes the
// reply, in one step. Pass nil args to invoke without arguments and a
// nil reply to discard the result.
func (c *Client) Call(ctx context.Context, cmd string, args, reply any) error {
	inv := c.Invoke(cmd)
	if args != nil {
		inv = inv.WithArgs(Data(args))
	}
	res, err := inv.Await(ctx)
	if err != nil {
		return err
	}
	if reply == nil {
		return nil
	}
	return res.decodeWith(c.codec, reply)
}

// InvokeArgs invokes a command with arguments and awaits the result.
func (c *Client) InvokeArgs(ctx context.Context, cmd string, args Args) (Value, error) {
	return c.Invoke(cmd).WithArgs(args).Await(ctx)
}

// InvokeOptions invokes a command with arguments and options and
// awaits the result.
func (c *Client) InvokeOptions(ctx context.Context, cmd string, args Args, opts Options) (Value, error) {
	return c.Invoke(cmd).WithArgs(args).WithOptions(opts).Await(ctx)
}

// wrapErr normalizes a transport failure. A *Error passes through with
// the transport's stringify attached; anything else (network faults,
// context cancellation surfaced by the transport) is wrapped with its
// message as the raw value.
func (c *Client) wrapErr(err error) error {
	var be *Error
	if errors.As(err, &be) {
		if be.stringify == nil {
			be.stringify = c.t.Stringify
		}
		return be
	}
	return &Error{
		Kind:      ErrKindHost,
		Raw:       StringValue(err.Error()),
		cause:     err,
		stringify: c.t.Stringify,
	}
}
