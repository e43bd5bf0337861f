// Package ratelimit provides fixed-window request limiting keyed by a
// client identifier. The limiter is an injected capability: handlers receive
// a Limiter, never reach for ambient package state.
package ratelimit

import "context"

// Limiter admits or rejects a request for the given client key.
type Limiter interface {
	// Allow records the request and returns apperrors.ErrRateLimited when
	// the key has exhausted its window.
	Allow(ctx context.Context, key string) error
}

// NopLimiter admits everything. Used for routes that are deliberately
// unlimited.
type NopLimiter struct{}

// Allow implements Limiter.
func (NopLimiter) Allow(context.Context, string) error { return nil }
