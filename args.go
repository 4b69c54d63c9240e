// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"fmt"
)

// Args is a payload source for an invoke call. Three sources are
// accepted through this one interface: raw byte buffers (Raw),
// pre-built transport values (Value), and arbitrary serializable
// structures (Data).
type Args interface {
	encodeArgs(c Codec) (Value, error)
}

// Raw passes a byte buffer as a binary-array argument. The exact byte
// content is preserved; nothing is re-encoded as text or base64.
// Fixed-size arrays pass through as Raw(arr[:]).
type Raw []byte

func (r Raw) encodeArgs(Codec) (Value, error) {
	return BinaryValue(r), nil
}

// A pre-built transport value is used as arguments unchanged.
func (v Value) encodeArgs(Codec) (Value, error) {
	return v, nil
}

// Data wraps an arbitrary serializable structure for use as call
// arguments. The structure is converted with the client's codec when
// the request is built; unsupported content fails the call locally.
func Data(v any) Args {
	return structArgs{v: v}
}

type structArgs struct {
	v any
}

func (a structArgs) encodeArgs(c Codec) (Value, error) {
	enc, err := c.Encode(a.v)
	if err != nil {
		return Undefined, fmt.Errorf("could not encode arguments: %w", err)
	}
	return encodedValue(enc), nil
}
