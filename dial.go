// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"fmt"
	"net/url"
)

// Dial connects a client to a host, picking the transport by URL
// scheme: "tcp://host:port" for the framed socket transport,
// "http(s)://..." for JSON-RPC, "grpc://..." with the grpc build tag.
func Dial(ctx context.Context, rawURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("bridge: invalid host URL: %w", err)
	}

	transportsMu.RLock()
	dial, ok := transports[u.Scheme]
	transportsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("bridge: unknown transport scheme: %s", u.Scheme)
	}

	t, err := dial(ctx, u)
	if err != nil {
		return nil, err
	}
	return New(t, opts...), nil
}
