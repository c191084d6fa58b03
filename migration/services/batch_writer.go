package services

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/parishsource/shepherd/migration/domain"
	"github.com/parishsource/shepherd/migration/persistence"
	"github.com/parishsource/shepherd/pkg/metrics"
)

// BatchWriter accumulates newly-created entities per kind and flushes
// them to the destination store in chunks. Each flush is transactional
// for that chunk only: a failure aborts the run, chunks already flushed
// stay committed. Entity creation is idempotent (foreign-key lookups
// before create), so re-running after a failure picks up the remainder
// without duplicating anything.
type BatchWriter struct {
	store   persistence.Store
	sink    ProgressSink
	staged  map[domain.Kind][]domain.Entity
	flushes int
}

func NewBatchWriter(store persistence.Store, sink ProgressSink) *BatchWriter {
	return &BatchWriter{
		store:  store,
		sink:   sink,
		staged: map[domain.Kind][]domain.Entity{},
	}
}

// Stage queues an entity for the next flush. Staging never touches the
// destination store.
func (w *BatchWriter) Stage(e domain.Entity) {
	kind := e.EntityKind()
	w.staged[kind] = append(w.staged[kind], e)
}

// StagedCount reports how many entities await the next flush.
func (w *BatchWriter) StagedCount() int {
	n := 0
	for _, list := range w.staged {
		n += len(list)
	}
	return n
}

// Flushes reports how many chunk flushes have completed.
func (w *BatchWriter) Flushes() int { return w.flushes }

// MaybeFlush flushes when the caller has completed a whole chunk of
// source rows. completed counts rows processed so far for the current
// table; rows that were skipped still count toward chunk boundaries so
// checkpoint spacing stays bounded by input size, not output size.
func (w *BatchWriter) MaybeFlush(ctx context.Context, completed, chunkSize int) error {
	if chunkSize <= 0 || completed == 0 || completed%chunkSize != 0 {
		return nil
	}
	return w.Flush(ctx)
}

// Flush writes everything staged, in dependency order, then recycles the
// store session and emits a progress tick. Parent entities always flush
// before children referencing them.
func (w *BatchWriter) Flush(ctx context.Context) error {
	if w.StagedCount() == 0 {
		return nil
	}
	for _, kind := range domain.FlushOrder {
		list := w.staged[kind]
		if len(list) == 0 {
			continue
		}
		if err := w.store.UpsertBatch(ctx, kind, list); err != nil {
			return errors.Wrapf(domain.ErrPersistenceFailure, "flush %d of %d %s entities: %s", w.flushes+1, len(list), kind, err)
		}
		metrics.EntitiesWritten.WithLabelValues(string(kind)).Add(float64(len(list)))
		delete(w.staged, kind)
	}
	if err := w.store.Recycle(ctx); err != nil {
		return errors.Wrap(err, "recycle store session")
	}
	w.flushes++
	metrics.ChunksFlushed.Inc()
	w.sink.Tick()
	return nil
}
