package persistence_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/parishsource/shepherd/migration/domain"
	"github.com/parishsource/shepherd/migration/persistence"
)

func TestMemoryStore_UpsertIgnoresConflicts(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	first := domain.GroupTypeNode{ID: uuid.New(), Key: "GT_MINISTRY", Name: "Ministry"}

	require.NoError(t, store.UpsertBatch(ctx, domain.KindGroupType, []domain.Entity{first}))
	require.NoError(t, store.UpsertBatch(ctx, domain.KindGroupType, []domain.Entity{
		domain.GroupTypeNode{ID: uuid.New(), Key: "GT_MINISTRY", Name: "Shadow"},
	}))

	require.Equal(t, 1, store.Count(domain.KindGroupType))
	got, err := store.QueryByForeignKey(ctx, domain.KindGroupType, "GT_MINISTRY")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.DestinationID())
}

func TestMemoryStore_QueryByForeignKeyNotFound(t *testing.T) {
	store := persistence.NewMemoryStore()

	_, err := store.QueryByForeignKey(context.Background(), domain.KindGroup, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_QueryAllPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	for _, key := range []string{"A", "B", "C"} {
		require.NoError(t, store.UpsertBatch(ctx, domain.KindGroup, []domain.Entity{
			domain.GroupNode{ID: uuid.New(), Key: key},
		}))
	}

	all, err := store.QueryAllByMarker(ctx, domain.KindGroup)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "A", all[0].ForeignKey())
	require.Equal(t, "C", all[2].ForeignKey())
}
