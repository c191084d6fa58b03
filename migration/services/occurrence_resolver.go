package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/parishsource/shepherd/migration/domain"
	"github.com/parishsource/shepherd/migration/persistence"
)

// occurrenceCacheSize must stay well above the chunk size: ids staged in
// the current chunk are only findable through the cache until they flush.
const occurrenceCacheSize = 65536

// OccurrenceResolver maps (group, location, schedule, date) tuples to a
// single destination occurrence. The cache is a bounded LRU; a cache
// miss first consults the store by composite foreign key, so neither
// eviction nor a fresh run can create a duplicate occurrence.
type OccurrenceResolver struct {
	store  persistence.Store
	writer *BatchWriter
	cache  *lru.Cache[string, uuid.UUID]
}

func NewOccurrenceResolver(store persistence.Store, writer *BatchWriter) (*OccurrenceResolver, error) {
	cache, err := lru.New[string, uuid.UUID](occurrenceCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "occurrence cache")
	}
	return &OccurrenceResolver{store: store, writer: writer, cache: cache}, nil
}

// OccurrenceKey builds the composite cache key. Nil group/location become
// empty tokens; the pipe delimiter keeps distinct nil/non-nil
// combinations from colliding.
func OccurrenceKey(groupID, locationID *uuid.UUID, scheduleID uuid.UUID, date time.Time) string {
	parts := []string{"", "", scheduleID.String(), dayOnly(date).Format("2006-01-02")}
	if groupID != nil {
		parts[0] = groupID.String()
	}
	if locationID != nil {
		parts[1] = locationID.String()
	}
	return strings.Join(parts, "|")
}

// ResolveOrCreateOccurrence returns the occurrence id for the tuple,
// creating and staging a new occurrence on first sight. Write-through:
// the new id is cached immediately so later rows in the same run reuse
// it even before the chunk flushes.
func (r *OccurrenceResolver) ResolveOrCreateOccurrence(
	ctx context.Context,
	groupID, locationID *uuid.UUID,
	scheduleID uuid.UUID,
	date time.Time,
) (uuid.UUID, error) {
	key := OccurrenceKey(groupID, locationID, scheduleID, date)
	if id, ok := r.cache.Get(key); ok {
		return id, nil
	}

	existing, err := r.store.QueryByForeignKey(ctx, domain.KindOccurrence, key)
	switch {
	case err == nil:
		id := existing.DestinationID()
		r.cache.Add(key, id)
		return id, nil
	case errors.Is(err, domain.ErrNotFound):
	default:
		return uuid.Nil, errors.Wrap(err, "look up occurrence")
	}

	occ := domain.OccurrenceRecord{
		ID:         uuid.New(),
		Key:        key,
		GroupID:    groupID,
		LocationID: locationID,
		ScheduleID: scheduleID,
		Date:       dayOnly(date),
	}
	r.writer.Stage(occ)
	r.cache.Add(key, occ.ID)
	return occ.ID, nil
}

func dayOnly(t time.Time) time.Time {
	u := t.UTC()
	y, m, d := u.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
