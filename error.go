// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"errors"
	"fmt"
)

// ErrConsumed is returned when a request value is awaited more than
// once. A request fires exactly one boundary call; every value derived
// from the same builder chain shares that single shot.
var ErrConsumed = errors.New("bridge: request already awaited")

// ErrorKind categorizes where a bridge failure originated.
type ErrorKind string

const (
	// ErrKindArgs means the call arguments could not be encoded.
	// The call never reached the host.
	ErrKindArgs ErrorKind = "args"

	// ErrKindHeaders means the option headers could not be encoded.
	// The call never reached the host.
	ErrKindHeaders ErrorKind = "headers"

	// ErrKindHost means the host resolved the call with an error value.
	ErrKindHost ErrorKind = "host"
)

// Error wraps a raw host-boundary failure value. The original value is
// preserved unchanged in Raw for programmatic inspection; the textual
// form is derived lazily through the transport's stringify primitive,
// so the raw payload is always recoverable.
type Error struct {
	Kind ErrorKind
	Raw  Value

	cause     error
	stringify func(Value) string
}

func (e *Error) Error() string {
	render := e.stringify
	if render == nil {
		render = Value.String
	}
	return fmt.Sprintf("bridge: %s: %s", e.Kind, render(e.Raw))
}

// Unwrap returns the local cause for encoding failures, nil for
// host-reported failures.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches two bridge errors by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// argsError wraps a local args-encoding failure.
func argsError(cause error) *Error {
	return &Error{
		Kind:  ErrKindArgs,
		Raw:   StringValue(cause.Error()),
		cause: cause,
	}
}

// headersError wraps a local headers-encoding failure.
func headersError(cause error) *Error {
	return &Error{
		Kind:  ErrKindHeaders,
		Raw:   StringValue(cause.Error()),
		cause: cause,
	}
}

// HostError wraps a raw error value produced by the host. Transports
// return it from Invoke so the original value crosses back unchanged.
func HostError(raw Value) *Error {
	return &Error{Kind: ErrKindHost, Raw: raw}
}
