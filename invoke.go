// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Invoke configures a single command invocation. Builder steps have
// value semantics: each step returns a new request reflecting the
// added field and never mutates a previously returned one. All values
// derived from the same chain share a one-shot gate, so awaiting fires
// exactly one boundary call; a second await fails with ErrConsumed.
//
//	res, err := client.Invoke("login").
//		WithArgs(bridge.Data(user)).
//		Await(ctx)
type Invoke struct {
	c     *Client
	cmd   Value
	args  Value
	opts  Options
	err   *Error
	fired *atomic.Bool
}

// Invoke starts a request for the named command. Args default to the
// Undefined sentinel and options to the absent-headers sentinel until
// replaced. Command names are forwarded as given; an empty name is not
// rejected locally.
func (c *Client) Invoke(cmd string) Invoke {
	return Invoke{
		c:     c,
		cmd:   StringValue(cmd),
		args:  Undefined,
		opts:  NoOptions(),
		fired: new(atomic.Bool),
	}
}

// WithArgs replaces the default args with an encoded payload. Encoding
// happens here; a failure is carried in the returned request and
// surfaces when it is awaited, without reaching the host.
func (in Invoke) WithArgs(a Args) Invoke {
	if in.err != nil {
		return in
	}
	v, err := a.encodeArgs(in.c.codec)
	if err != nil {
		in.err = argsError(err)
		return in
	}
	in.args = v
	return in
}

// WithOptions replaces the default options. It may be applied with or
// without WithArgs.
func (in Invoke) WithOptions(o Options) Invoke {
	in.opts = o
	return in
}

// Await issues the call and blocks until the host resolves it. The
// request is single-use. Abandoning the context stops the caller from
// observing a result but does not undo a command the host may already
// be processing.
func (in Invoke) Await(ctx context.Context) (Value, error) {
	if !in.fired.CompareAndSwap(false, true) {
		return Undefined, ErrConsumed
	}
	if in.err != nil {
		in.err.stringify = in.c.t.Stringify
		return Undefined, in.err
	}

	in.c.log.Debug("invoke",
		zap.String("cmd", in.cmd.Text()),
		zap.Bool("args", !in.args.IsUndefined()),
		zap.Bool("headers", !in.opts.headers.IsUndefined()),
	)

	res, err := in.c.t.Invoke(ctx, in.cmd.Text(), in.args, in.opts)
	if err != nil {
		return Undefined, in.c.wrapErr(err)
	}
	return res, nil
}
