// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the shape of a transport value.
type Kind uint8

const (
	// KindUndefined marks an omitted value. Omitted args and absent
	// headers always resolve to this sentinel, never to null or an
	// empty object.
	KindUndefined Kind = iota

	// KindString holds text data.
	KindString

	// KindBinary holds an exact byte sequence, carried as a binary
	// array across the boundary (never base64 or a string).
	KindBinary

	// KindEncoded holds the output of a Codec for an arbitrary
	// serializable structure.
	KindEncoded
)

// Value is an opaque unit of data that can cross the host boundary.
// A Value is immutable once produced; constructors copy their inputs.
type Value struct {
	kind Kind
	str  string
	bin  []byte
}

// Undefined is the sentinel value for omitted args and absent headers.
var Undefined = Value{kind: KindUndefined}

// StringValue converts text into a transport value. Go strings are
// immutable, so the conversion is total and copy-free; a string-kind
// Value passes through unchanged wherever text is accepted.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// BinaryValue converts a byte buffer into a binary-array transport
// value. The buffer is copied so later caller mutation cannot be
// observed across the boundary.
func BinaryValue(b []byte) Value {
	return Value{kind: KindBinary, bin: bytes.Clone(b)}
}

// EncodedValue wraps already-encoded structure bytes (typically raw
// JSON) as a transport value. The bytes are copied.
func EncodedValue(b []byte) Value {
	return Value{kind: KindEncoded, bin: bytes.Clone(b)}
}

// encodedValue is the non-copying internal constructor for buffers the
// caller does not retain.
func encodedValue(b []byte) Value {
	return Value{kind: KindEncoded, bin: b}
}

// Kind returns the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether the value is the omitted-value sentinel.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// Text returns the text of a string value, or "" for other kinds.
func (v Value) Text() string { return v.str }

// Binary returns a copy of the bytes of a binary value.
func (v Value) Binary() []byte {
	if v.kind != KindBinary {
		return nil
	}
	return bytes.Clone(v.bin)
}

// Encoded returns a copy of the encoded bytes of an encoded value.
func (v Value) Encoded() []byte {
	if v.kind != KindEncoded {
		return nil
	}
	return bytes.Clone(v.bin)
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.str == o.str && bytes.Equal(v.bin, o.bin)
}

// Decode unmarshals the value into dst using the default codec. Use
// Client.Call to decode with a custom codec.
func (v Value) Decode(dst any) error {
	return v.decodeWith(defaultCodec, dst)
}

func (v Value) decodeWith(c Codec, dst any) error {
	switch v.kind {
	case KindUndefined:
		return fmt.Errorf("bridge: cannot decode undefined value")
	case KindString:
		if p, ok := dst.(*string); ok {
			*p = v.str
			return nil
		}
		enc, err := c.Encode(v.str)
		if err != nil {
			return err
		}
		return c.Decode(enc, dst)
	case KindBinary:
		if p, ok := dst.(*[]byte); ok {
			*p = bytes.Clone(v.bin)
			return nil
		}
		return fmt.Errorf("bridge: cannot decode binary value into %T", dst)
	default:
		return c.Decode(v.bin, dst)
	}
}

// wireJSON renders the value for JSON-carrying transports. Undefined
// values return nil so envelopes can omit the field entirely, which is
// how the host tells "no options" apart from "empty options".
func (v Value) wireJSON() (json.RawMessage, error) {
	switch v.kind {
	case KindUndefined:
		return nil, nil
	case KindString:
		return json.Marshal(v.str)
	case KindBinary:
		// Binary arrays stay arrays of numbers on JSON transports;
		// encoding/json would silently base64 a []byte.
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, b := range v.bin {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Itoa(int(b)))
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.RawMessage(v.bin), nil
	}
}

// String renders the value for display. Transports may substitute a
// host-provided rendering via Transport.Stringify.
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindString:
		return v.str
	case KindBinary:
		return fmt.Sprintf("<%d bytes>", len(v.bin))
	default:
		return string(v.bin)
	}
}
