package persistence

import (
	"context"

	"github.com/parishsource/shepherd/migration/domain"
)

// MemoryStore keeps destination entities in per-kind maps keyed by
// foreign key. It backs unit tests and --dry-run imports; behavior
// mirrors the postgres store, including ignore-on-conflict upserts.
type MemoryStore struct {
	entities map[domain.Kind]map[string]domain.Entity
	order    map[domain.Kind][]string

	upsertErr error // injected by tests to simulate a flush failure
	recycles  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: map[domain.Kind]map[string]domain.Entity{},
		order:    map[domain.Kind][]string{},
	}
}

func (s *MemoryStore) UpsertBatch(ctx context.Context, kind domain.Kind, entities []domain.Entity) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	byKey := s.entities[kind]
	if byKey == nil {
		byKey = map[string]domain.Entity{}
		s.entities[kind] = byKey
	}
	for _, e := range entities {
		if _, exists := byKey[e.ForeignKey()]; exists {
			continue
		}
		byKey[e.ForeignKey()] = e
		s.order[kind] = append(s.order[kind], e.ForeignKey())
	}
	return nil
}

func (s *MemoryStore) QueryByForeignKey(ctx context.Context, kind domain.Kind, key string) (domain.Entity, error) {
	if e, ok := s.entities[kind][key]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryStore) QueryAllByMarker(ctx context.Context, kind domain.Kind) ([]domain.Entity, error) {
	keys := s.order[kind]
	out := make([]domain.Entity, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.entities[kind][k])
	}
	return out, nil
}

func (s *MemoryStore) Recycle(ctx context.Context) error {
	s.recycles++
	return nil
}

// Count reports how many entities of a kind are stored.
func (s *MemoryStore) Count(kind domain.Kind) int { return len(s.entities[kind]) }

// Recycles reports how many chunk-boundary session recycles occurred.
func (s *MemoryStore) Recycles() int { return s.recycles }

// FailNextUpserts makes every subsequent UpsertBatch return err.
func (s *MemoryStore) FailNextUpserts(err error) { s.upsertErr = err }

// Seed inserts entities directly, bypassing the upsert path. Tests use it
// to model a destination that already holds previously-imported rows.
func (s *MemoryStore) Seed(entities ...domain.Entity) {
	for _, e := range entities {
		_ = s.UpsertBatch(context.Background(), e.EntityKind(), []domain.Entity{e})
	}
}
