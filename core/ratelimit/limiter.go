// Package ratelimit implements the per-(ip, method) request limiter (C4),
// with a local in-memory mode and a KV-store-backed mode shared across a
// fleet of processes.
package ratelimit

import "context"

// Limiter gates incoming requests. ShouldLimit never returns an error to
// the caller: store failures fail open and are only observable through
// a logged warning; no error counter is incremented for them.
type Limiter interface {
	// ShouldLimit reports whether the request identified by (ip, method)
	// should be denied under the configured (limit, duration) window.
	ShouldLimit(ctx context.Context, ip, method string, limit int, requestID string) bool
}

// Disabled is a Limiter that never denies a request.
type Disabled struct{}

func (Disabled) ShouldLimit(context.Context, string, string, int, string) bool {
	return false
}
