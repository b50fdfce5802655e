// Package session keeps per-caller conversation history for each endpoint.
// History is bounded by a sliding window and expires after a period of
// inactivity.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashureev/bloomify/internal/domain"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("session store closed")

// Store persists conversation turns between requests.
type Store interface {
	// Get returns the live turns for key, or an empty conversation when
	// the session does not exist or has expired.
	Get(ctx context.Context, key domain.SessionKey) (*domain.Conversation, error)

	// Append adds turns to the session, creating it if needed, trimming it
	// to the window and refreshing its expiry.
	Append(ctx context.Context, key domain.SessionKey, turns ...domain.Turn) error

	// Delete removes one session.
	Delete(ctx context.Context, key domain.SessionKey) error

	// DeleteCaller removes every session owned by callerID and returns how
	// many were dropped.
	DeleteCaller(ctx context.Context, callerID string) (int, error)

	// Len returns the number of live sessions.
	Len(ctx context.Context) (int, error)

	// Sweep drops sessions idle since before now minus the TTL.
	Sweep(ctx context.Context, now time.Time) (int, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Options configures a store.
type Options struct {
	TTL          time.Duration
	HistoryTurns int
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = 30 * time.Minute
	}
	if o.HistoryTurns <= 0 {
		o.HistoryTurns = 20
	}
	return o
}

// New builds the store selected by backend.
func New(ctx context.Context, backend, redisAddr string, opts Options) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(opts), nil
	case "redis":
		return NewRedisStore(ctx, redisAddr, opts)
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}
