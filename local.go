// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"fmt"
	"sync"
)

// Handler handles one command invocation on the host side.
type Handler func(ctx context.Context, args Value, opts Options) (Value, error)

// LocalHost is an in-process Transport backed by a command handler
// registry. It serves as the stub host for tests and as the command
// table behind SocketHost.
type LocalHost struct {
	mu       sync.RWMutex
	handlers map[string]Handler

	// Stringify override for rendering raw error values. Defaults to
	// the value's own rendering.
	StringifyFunc func(Value) string
}

// NewLocalHost creates an empty in-process host.
func NewLocalHost() *LocalHost {
	return &LocalHost{
		handlers: make(map[string]Handler),
	}
}

// Register installs a handler for the named command, replacing any
// previous one. The reserved event commands "emit" and "emit_to" are
// registered the same way as any other command.
func (h *LocalHost) Register(cmd string, fn Handler) {
	h.mu.Lock()
	h.handlers[cmd] = fn
	h.mu.Unlock()
}

// Invoke dispatches one call to the registered handler. A handler
// returning *Error passes through unchanged so raw error values are
// preserved; other errors are wrapped with their message as the raw
// value.
func (h *LocalHost) Invoke(ctx context.Context, cmd string, args Value, opts Options) (Value, error) {
	h.mu.RLock()
	fn, ok := h.handlers[cmd]
	h.mu.RUnlock()
	if !ok {
		return Undefined, HostError(StringValue(fmt.Sprintf("unknown command: %s", cmd)))
	}

	res, err := fn(ctx, args, opts)
	if err != nil {
		if be, ok := err.(*Error); ok {
			return Undefined, be
		}
		return Undefined, HostError(StringValue(err.Error()))
	}
	return res, nil
}

// Embedded always reports true: the host is the current process.
func (h *LocalHost) Embedded() bool { return true }

// Stringify renders a boundary value for display.
func (h *LocalHost) Stringify(v Value) string {
	if h.StringifyFunc != nil {
		return h.StringifyFunc(v)
	}
	return v.String()
}
