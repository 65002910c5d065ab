// Package session stores active admin session ids. A JWT alone cannot be
// revoked; keeping its JTI here makes logout and forced invalidation
// possible. The Redis store is the production backend, the memory store
// serves single-instance setups and tests.
package session

import (
	"context"
	"time"
)

// Store tracks which session ids (JWT JTIs) are currently valid.
type Store interface {
	Put(ctx context.Context, jti string, ttl time.Duration) error
	Exists(ctx context.Context, jti string) (bool, error)
	Delete(ctx context.Context, jti string) error
}
