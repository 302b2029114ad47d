// Package processed tracks fax identifiers that have reached a terminal
// state, so the poller never reprocesses them. Implementations must be safe
// for concurrent use; Add is atomic per identifier.
package processed

import (
	"context"
	"time"
)

// Set is the dedup set consulted by the poller.
type Set interface {
	// Contains reports whether id has already been fully handled.
	Contains(ctx context.Context, id string) (bool, error)

	// Add records id as fully handled. Adding an existing id is a no-op.
	Add(ctx context.Context, id string) error

	// Size returns the number of tracked identifiers.
	Size(ctx context.Context) (int, error)

	// PruneOlderThan removes identifiers added before cutoff and returns the
	// number removed. Pruning never affects correctness; a pruned-but-routed
	// fax may at worst be re-delivered.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
