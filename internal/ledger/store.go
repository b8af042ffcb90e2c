// Package ledger tracks which lead and message IDs have already been handled,
// guaranteeing at-most-once dispatch per item. The in-memory store scopes that
// guarantee to the process lifetime; the redis and postgres stores extend it
// across restarts.
package ledger

import (
	"context"
	"time"
)

// Store records processed item IDs. Marking is the last step of handling an
// item, so a crash mid-handler causes at most one re-delivery on the next
// cycle.
type Store interface {
	// IsProcessed reports whether the item ID has already been handled.
	IsProcessed(ctx context.Context, id string) (bool, error)

	// MarkProcessed records the item ID with its processing timestamp.
	// Marking an already-marked ID is a no-op, not an error.
	MarkProcessed(ctx context.Context, id string, at time.Time) error

	// Close releases any resources held by the store.
	Close() error
}
