//go:build grpc

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func init() {
	// Register gRPC transport when build tag is enabled
	registerTransport(SchemeGRPC, dialGRPCTransport)
}

func dialGRPCTransport(ctx context.Context, u *url.URL) (Transport, error) {
	conn, err := grpc.DialContext(ctx, u.Host,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("bridge grpc dial: %w", err)
	}
	return &grpcTransport{conn: conn}, nil
}

// grpcTransport carries bridge calls over a single unary gRPC method.
// The command, args, and headers travel in a JSON envelope so the host
// service stays schema-free.
type grpcTransport struct {
	conn *grpc.ClientConn
}

type grpcEnvelope struct {
	Command string          `json:"cmd"`
	Args    json.RawMessage `json:"args,omitempty"`
	Headers json.RawMessage `json:"headers,omitempty"`
}

func (t *grpcTransport) Invoke(ctx context.Context, cmd string, args Value, opts Options) (Value, error) {
	env := grpcEnvelope{Command: cmd}
	var err error
	if env.Args, err = args.wireJSON(); err != nil {
		return Undefined, fmt.Errorf("bridge: encode args: %w", err)
	}
	if env.Headers, err = opts.headers.wireJSON(); err != nil {
		return Undefined, fmt.Errorf("bridge: encode headers: %w", err)
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return Undefined, fmt.Errorf("bridge: encode envelope: %w", err)
	}

	var resp []byte
	if err := t.conn.Invoke(ctx, "/bridge.Host/Invoke", payload, &resp); err != nil {
		return Undefined, err
	}
	return EncodedValue(resp), nil
}

func (t *grpcTransport) Embedded() bool {
	return t.conn != nil
}

func (t *grpcTransport) Stringify(v Value) string { return v.String() }

func (t *grpcTransport) Close() error {
	return t.conn.Close()
}
