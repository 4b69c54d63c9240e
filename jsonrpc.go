// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	rpc "github.com/gorilla/rpc/v2/json2"
)

// JSONRPCTransport is the host boundary over HTTP JSON-RPC 2.0, for
// development harnesses and hosts that expose the bridge on a web
// endpoint. Calls are single-shot: a request either resolves or fails
// once, with no retry.
type JSONRPCTransport struct {
	endpoint *url.URL
	client   *http.Client
	seen     atomic.Bool
}

// invokeParams is the params object of a bridge call. Undefined args
// and absent headers omit the field entirely, so the host can tell
// "no options" apart from "empty options".
type invokeParams struct {
	Args    json.RawMessage `json:"args,omitempty"`
	Headers json.RawMessage `json:"headers,omitempty"`
}

// DialJSONRPC creates a JSON-RPC transport against the endpoint URL.
func DialJSONRPC(endpoint string) (*JSONRPCTransport, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("bridge: invalid endpoint: %w", err)
	}
	return &JSONRPCTransport{
		endpoint: u,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Invoke issues one JSON-RPC call with the command as the method name.
func (t *JSONRPCTransport) Invoke(ctx context.Context, cmd string, args Value, opts Options) (Value, error) {
	var params invokeParams
	var err error
	if params.Args, err = args.wireJSON(); err != nil {
		return Undefined, fmt.Errorf("bridge: encode args: %w", err)
	}
	if params.Headers, err = opts.headers.wireJSON(); err != nil {
		return Undefined, fmt.Errorf("bridge: encode headers: %w", err)
	}

	body, err := rpc.EncodeClientRequest(cmd, &params)
	if err != nil {
		return Undefined, fmt.Errorf("bridge: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return Undefined, fmt.Errorf("bridge: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return Undefined, fmt.Errorf("bridge: issue request: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Undefined, fmt.Errorf("bridge: received status code: %d", resp.StatusCode)
	}

	var result json.RawMessage
	if err := rpc.DecodeClientResponse(resp.Body, &result); err != nil {
		var rpcErr *rpc.Error
		if errors.As(err, &rpcErr) {
			// Carry the host's error object back unchanged.
			raw, mErr := json.Marshal(rpcErr)
			if mErr != nil {
				raw = []byte(fmt.Sprintf("%q", rpcErr.Message))
			}
			return Undefined, HostError(EncodedValue(raw))
		}
		return Undefined, fmt.Errorf("bridge: decode response: %w", err)
	}

	t.seen.Store(true)
	return EncodedValue(result), nil
}

// Embedded reports whether the endpoint has answered at least one call
// in this execution context.
func (t *JSONRPCTransport) Embedded() bool {
	return t.seen.Load()
}

// Stringify renders a boundary value for display.
func (t *JSONRPCTransport) Stringify(v Value) string { return v.String() }

// drainAndClose drains and closes an HTTP response body to prevent
// HTTP/2 GOAWAY errors caused by closing bodies with unread data.
// See: https://github.com/golang/go/issues/46071
func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, body)
	body.Close()
}
