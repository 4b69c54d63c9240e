// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"net/url"
	"sync"
)

// Transport schemes
const (
	SchemeSocket = "tcp"  // framed socket, default
	SchemeHTTP   = "http" // JSON-RPC over HTTP
	SchemeHTTPS  = "https"
	SchemeGRPC   = "grpc" // requires build tag
)

type dialFunc func(ctx context.Context, u *url.URL) (Transport, error)

var (
	transportsMu sync.RWMutex
	transports   = map[string]dialFunc{
		SchemeSocket: dialSocketTransport,
		SchemeHTTP:   dialJSONRPCTransport,
		SchemeHTTPS:  dialJSONRPCTransport,
	}
)

// registerTransport registers a new transport scheme (used by build tags)
func registerTransport(scheme string, dial dialFunc) {
	transportsMu.Lock()
	defer transportsMu.Unlock()
	transports[scheme] = dial
}

// AvailableTransports returns the list of available transport schemes
func AvailableTransports() []string {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	result := make([]string, 0, len(transports))
	for scheme := range transports {
		result = append(result, scheme)
	}
	return result
}

// HasTransport checks if a transport scheme is available
func HasTransport(scheme string) bool {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	_, ok := transports[scheme]
	return ok
}

func dialSocketTransport(ctx context.Context, u *url.URL) (Transport, error) {
	return DialSocket(ctx, u.Host)
}

func dialJSONRPCTransport(_ context.Context, u *url.URL) (Transport, error) {
	return DialJSONRPC(u.String())
}
