// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"bytes"
	"encoding/json"
)

// Options carries transport-level call options. The only option today
// is an optional headers map. Absent headers are the Undefined
// sentinel, never an empty object, so the host can tell "no options
// provided" apart from "options provided but empty".
type Options struct {
	headers Value
}

// NoOptions returns the options sentinel for a call without options.
func NoOptions() Options {
	return Options{headers: Undefined}
}

// Headers returns the encoded headers value, or Undefined when no
// headers were provided.
func (o Options) Headers() Value {
	return o.headers
}

// Header is one (name, value) text pair.
type Header struct {
	Name  string
	Value string
}

// HeadersFromPairs builds options from an ordered sequence of header
// pairs. Field order is preserved exactly as given; the receiving side
// may compare or concatenate headers in order. Conversion is total
// over text pairs.
func HeadersFromPairs(pairs ...Header) Options {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(p.Name)
		val, _ := json.Marshal(p.Value)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return Options{headers: encodedValue(buf.Bytes())}
}

// HeadersFromMap builds options from a string-to-string map. Iteration
// order follows the map and carries no order guarantee.
func HeadersFromMap(m map[string]string) Options {
	enc, _ := json.Marshal(m) // string map marshaling is total
	return Options{headers: encodedValue(enc)}
}

// EncodeHeaders builds options from an arbitrary serializable struct
// using the default codec. A failed conversion reports a
// headers-encoding error, distinct from an args-encoding failure.
func EncodeHeaders(v any) (Options, error) {
	enc, err := defaultCodec.Encode(v)
	if err != nil {
		return NoOptions(), headersError(err)
	}
	return Options{headers: encodedValue(enc)}, nil
}
