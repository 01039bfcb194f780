package cache

import (
	"context"
	"time"
)

// RefreshLimiter gates repeated sync refreshes for the same member within a
// cooldown window. Allow atomically starts the cooldown when it grants.
type RefreshLimiter interface {
	// Allow reports whether a refresh for the member may proceed now.
	// A false result means the member is still inside its cooldown window.
	Allow(ctx context.Context, memberNo string, cooldown time.Duration) (bool, error)

	// Close releases any resources held by the limiter
	Close() error
}
