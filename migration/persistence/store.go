// Package persistence implements the destination-store side of the
// migration engine: a pgx-backed store for real runs, an in-memory store
// for tests and dry runs, and the reference cache loader that hydrates
// the run's in-memory indices from previously-imported rows.
package persistence

import (
	"context"

	"github.com/parishsource/shepherd/migration/domain"
)

// Store is the destination data store. UpsertBatch writes one chunk of a
// single kind atomically; there is no partial-success signaling below
// batch granularity. QueryByForeignKey and QueryAllByMarker only see rows
// tagged by this tool — user-created destination rows carry no marker and
// are invisible to the engine.
type Store interface {
	UpsertBatch(ctx context.Context, kind domain.Kind, entities []domain.Entity) error
	QueryByForeignKey(ctx context.Context, kind domain.Kind, key string) (domain.Entity, error)
	QueryAllByMarker(ctx context.Context, kind domain.Kind) ([]domain.Entity, error)

	// Recycle resets the underlying session at a chunk boundary, bounding
	// per-run memory on long imports.
	Recycle(ctx context.Context) error
}
