// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"errors"
	"testing"
	"time"
)

func startSocketHost(t testing.TB, ctx context.Context) *SocketHost {
	t.Helper()

	host, err := ListenSocket(":0")
	if err != nil {
		t.Fatalf("ListenSocket: %v", err)
	}
	t.Cleanup(func() { host.Close() })

	go host.Serve(ctx)

	// Give the host time to start
	time.Sleep(10 * time.Millisecond)
	return host
}

func TestSocketRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := startSocketHost(t, ctx)
	host.Register("echo", func(_ context.Context, args Value, _ Options) (Value, error) {
		return args, nil
	})

	tr, err := DialSocket(ctx, host.Addr())
	if err != nil {
		t.Fatalf("DialSocket: %v", err)
	}
	defer tr.Close()

	client := New(tr)

	payload := []byte("hello world")
	res, err := client.Invoke("echo").WithArgs(Raw(payload)).Await(ctx)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if !res.Equal(BinaryValue(payload)) {
		t.Errorf("got %q, want %q", res.Binary(), payload)
	}
}

func TestSocketStructuredCall(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := startSocketHost(t, ctx)
	host.Register("add", func(_ context.Context, args Value, _ Options) (Value, error) {
		var req struct{ A, B int }
		if err := args.Decode(&req); err != nil {
			return Undefined, err
		}
		enc, err := defaultCodec.Encode(struct{ Sum int }{Sum: req.A + req.B})
		if err != nil {
			return Undefined, err
		}
		return EncodedValue(enc), nil
	})

	tr, err := DialSocket(ctx, host.Addr())
	if err != nil {
		t.Fatalf("DialSocket: %v", err)
	}
	defer tr.Close()

	client := New(tr)
	var resp struct{ Sum int }
	if err := client.Call(ctx, "add", struct{ A, B int }{A: 2, B: 3}, &resp); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp.Sum != 5 {
		t.Errorf("got %d, want 5", resp.Sum)
	}
}

func TestSocketSentinelsCrossTheWire(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := startSocketHost(t, ctx)
	host.Register("inspect", func(_ context.Context, args Value, opts Options) (Value, error) {
		if !args.IsUndefined() {
			return Undefined, errors.New("args should be undefined")
		}
		if !opts.Headers().IsUndefined() {
			return Undefined, errors.New("headers should be undefined")
		}
		return StringValue("ok"), nil
	})
	host.Register("inspect-empty", func(_ context.Context, _ Value, opts Options) (Value, error) {
		if opts.Headers().IsUndefined() {
			return Undefined, errors.New("empty headers should not collapse to undefined")
		}
		return StringValue("ok"), nil
	})

	tr, err := DialSocket(ctx, host.Addr())
	if err != nil {
		t.Fatalf("DialSocket: %v", err)
	}
	defer tr.Close()

	client := New(tr)
	if _, err := client.Invoke("inspect").Await(ctx); err != nil {
		t.Errorf("omitted fields: %v", err)
	}
	if _, err := client.Invoke("inspect-empty").WithOptions(HeadersFromPairs()).Await(ctx); err != nil {
		t.Errorf("empty headers object: %v", err)
	}
}

func TestSocketHostErrorPreservesRaw(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := startSocketHost(t, ctx)
	raw := EncodedValue([]byte(`{"code":42}`))
	host.Register("boom", func(context.Context, Value, Options) (Value, error) {
		return Undefined, HostError(raw)
	})

	tr, err := DialSocket(ctx, host.Addr())
	if err != nil {
		t.Fatalf("DialSocket: %v", err)
	}
	defer tr.Close()

	client := New(tr)
	_, err = client.Invoke("boom").Await(ctx)

	var be *Error
	if !errors.As(err, &be) || be.Kind != ErrKindHost {
		t.Fatalf("want host error, got %v", err)
	}
	if !be.Raw.Equal(raw) {
		t.Errorf("raw error value corrupted across the wire: %s", be.Raw.Encoded())
	}
}

func TestSocketEmbedded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := startSocketHost(t, ctx)
	tr, err := DialSocket(ctx, host.Addr())
	if err != nil {
		t.Fatalf("DialSocket: %v", err)
	}

	if !tr.Embedded() {
		t.Error("connected transport should report embedded")
	}
	tr.Close()
	if tr.Embedded() {
		t.Error("closed transport should not report embedded")
	}
}

func BenchmarkSocketRoundTrip(b *testing.B) {
	ctx := context.Background()

	host := startSocketHost(b, ctx)
	host.Register("echo", func(_ context.Context, args Value, _ Options) (Value, error) {
		return args, nil
	})

	tr, err := DialSocket(ctx, host.Addr())
	if err != nil {
		b.Fatalf("DialSocket: %v", err)
	}
	defer tr.Close()

	client := New(tr)
	payload := make([]byte, 1024)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := client.Invoke("echo").WithArgs(Raw(payload)).Await(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
