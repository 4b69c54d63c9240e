// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge provides a typed command/event bridge between sandboxed
// frontend modules and the Lux host application.
//
// # Transport Selection
//
// The framed socket transport is the default for out-of-process hosts.
// In-process hosts use LocalHost directly. Use build tags to enable
// alternative transports:
//
//	go build              # socket + JSON-RPC (default)
//	go build -tags grpc   # Enable gRPC transport
//
// # Usage
//
// Invoking host commands:
//
//	client, err := bridge.Dial(ctx, "tcp://localhost:9000")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Bare command
//	res, err := client.Invoke("connect").Await(ctx)
//
//	// Structured args and options
//	res, err = client.Invoke("login").
//	    WithArgs(bridge.Data(User{Name: "anon", Pass: "x"})).
//	    WithOptions(bridge.HeadersFromPairs(bridge.Header{Name: "secret", Value: "37"})).
//	    Await(ctx)
//
//	var session Session
//	err = res.Decode(&session)
//
// Emitting events:
//
//	// Broadcast
//	err = client.Emit("file-selected", "/tmp/a").Await(ctx)
//
//	// Targeted
//	err = client.Emit("file-selected", "/tmp/a").
//	    To(bridge.TargetWindow("main")).
//	    Await(ctx)
//
// Host-side failures resolve to *Error values that preserve the raw
// error payload the host produced:
//
//	var be *bridge.Error
//	if errors.As(err, &be) {
//	    be.Raw.Decode(&details)
//	}
//
// # Request semantics
//
// A request value fires exactly one boundary call. Builder steps have
// value semantics and transition only forward; awaiting any value from
// the same chain a second time fails with ErrConsumed. Omitted args
// and absent headers always resolve to the Undefined sentinel, never
// to null or an empty object — hosts rely on the distinction.
//
// # Event targeting
//
// EventTarget encodes into a fixed (discriminant, label) wire pair:
// 0 no target, 1 Any, 2 AnyLabel, 3 App, 4 Window, 5 Webview,
// 6 WebviewWindow. Untargeted emission calls the reserved "emit"
// command; any targeted emission calls "emit_to". The mapping is a
// wire contract and is never renumbered.
//
// # Architecture
//
// The package separates concerns:
//
//   - client.go: Client and the Transport boundary interface
//   - value.go: opaque transport values and text/byte conversion
//   - args.go: payload encoding (bytes, prebuilt values, structures)
//   - options.go: headers/options construction
//   - invoke.go: single-shot invoke request builder
//   - event.go: event emission and target encoding
//   - error.go: raw host error wrapping
//   - codec.go: Codec interface for structure encoding
//   - local.go: in-process host (stub host for tests)
//   - socket.go: framed socket transport and host (default)
//   - jsonrpc.go: JSON-RPC transport over HTTP
//   - transport_grpc.go: gRPC transport (requires -tags grpc)
//
// Application code should only depend on Client and Transport, making
// transport selection a deployment decision rather than a code change.
package bridge
