// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newJSONRPCHost serves a minimal JSON-RPC 2.0 host with an "echo"
// command that reflects the request params and a "reject" command that
// always fails with a structured error.
func newJSONRPCHost(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params invokeParams    `json:"params"`
			ID     json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch req.Method {
		case "echo":
			result := map[string]any{
				"hasArgs":    req.Params.Args != nil,
				"hasHeaders": req.Params.Headers != nil,
			}
			if req.Params.Args != nil {
				result["args"] = req.Params.Args
			}
			resp := map[string]any{"jsonrpc": "2.0", "result": result, "id": req.ID}
			json.NewEncoder(w).Encode(resp)
		default:
			resp := map[string]any{
				"jsonrpc": "2.0",
				"error":   map[string]any{"code": 42, "message": "nope", "data": map[string]int{"code": 42}},
				"id":      req.ID,
			}
			json.NewEncoder(w).Encode(resp)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestJSONRPCInvoke(t *testing.T) {
	ctx := context.Background()
	srv := newJSONRPCHost(t)

	client, err := Dial(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	type user struct {
		Name string `json:"name"`
	}
	res, err := client.Invoke("echo").WithArgs(Data(user{Name: "anon"})).Await(ctx)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}

	var got struct {
		HasArgs    bool `json:"hasArgs"`
		HasHeaders bool `json:"hasHeaders"`
		Args       user `json:"args"`
	}
	if err := res.Decode(&got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.HasArgs || got.HasHeaders || got.Args.Name != "anon" {
		t.Errorf("got %+v", got)
	}
}

func TestJSONRPCOmitsUndefinedFields(t *testing.T) {
	ctx := context.Background()
	srv := newJSONRPCHost(t)

	client, err := Dial(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	res, err := client.Invoke("echo").Await(ctx)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}

	var got struct {
		HasArgs    bool `json:"hasArgs"`
		HasHeaders bool `json:"hasHeaders"`
	}
	if err := res.Decode(&got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.HasArgs || got.HasHeaders {
		t.Errorf("omitted args/options must not appear on the wire: %+v", got)
	}
}

func TestJSONRPCHostError(t *testing.T) {
	ctx := context.Background()
	srv := newJSONRPCHost(t)

	tr, err := DialJSONRPC(srv.URL)
	if err != nil {
		t.Fatalf("DialJSONRPC: %v", err)
	}
	client := New(tr)

	if tr.Embedded() {
		t.Error("transport should not report embedded before a call succeeds")
	}

	_, err = client.Invoke("reject").Await(ctx)
	var be *Error
	if !errors.As(err, &be) || be.Kind != ErrKindHost {
		t.Fatalf("want host error, got %v", err)
	}

	var raw struct {
		Code int `json:"code"`
		Data struct {
			Code int `json:"code"`
		} `json:"data"`
	}
	if err := be.Raw.Decode(&raw); err != nil {
		t.Fatalf("Raw.Decode: %v", err)
	}
	if raw.Code != 42 || raw.Data.Code != 42 {
		t.Errorf("raw host error corrupted: %s", be.Raw.Encoded())
	}

	if _, err := client.Invoke("echo").Await(ctx); err != nil {
		t.Fatalf("Await: %v", err)
	}
	if !tr.Embedded() {
		t.Error("transport should report embedded after a successful call")
	}
}
