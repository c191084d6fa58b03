package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/parishsource/shepherd/migration/domain"
	"github.com/parishsource/shepherd/migration/persistence"
)

func newTestHierarchy() (*Hierarchy, *domain.ReferenceSet, *BatchWriter) {
	refs := domain.NewReferenceSet()
	writer := NewBatchWriter(persistence.NewMemoryStore(), NopSink{})
	return NewHierarchy(refs, writer, testLogger()), refs, writer
}

func TestEnsureNode_PlainChain(t *testing.T) {
	h, refs, _ := newTestHierarchy()

	ministry := h.EnsureMinistry("MINISTRY_1", "Outreach")
	require.NotNil(t, ministry)
	activity := h.EnsureActivity("ACTIVITY_2", "Ushers", "MINISTRY_1", nil)
	require.NotNil(t, activity)
	room := h.EnsureRoom("RLC_3", "Room 101", "MINISTRY_1", "ACTIVITY_2", nil)
	require.NotNil(t, room)

	require.Equal(t, ministry.ID, *activity.ParentID)
	require.Equal(t, activity.ID, *room.ParentID)

	// Ministries attach under the archive root.
	root, ok := refs.GroupByKey("ARCHIVE_MINISTRIES")
	require.True(t, ok)
	require.Equal(t, root.ID, *ministry.ParentID)
}

func TestEnsureNode_Idempotent(t *testing.T) {
	h, _, writer := newTestHierarchy()

	first := h.EnsureMinistry("MINISTRY_1", "Outreach")
	staged := writer.StagedCount()
	second := h.EnsureMinistry("MINISTRY_1", "Outreach")

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, staged, writer.StagedCount())
}

func TestEnsureNode_DeletionSentinel(t *testing.T) {
	h, _, writer := newTestHierarchy()

	require.Nil(t, h.EnsureMinistry("MINISTRY_1", "Delete"))
	require.Nil(t, h.EnsureMinistry("MINISTRY_2", "SERV: delete"))
	require.Zero(t, writer.StagedCount())
}

func TestEnsureNode_MissingParentAttachesToArchiveRoot(t *testing.T) {
	h, refs, _ := newTestHierarchy()

	activity := h.EnsureActivity("ACTIVITY_9", "Orphan", "MINISTRY_MISSING", nil)
	require.NotNil(t, activity)

	root, ok := refs.GroupByKey("ARCHIVE_MINISTRIES")
	require.True(t, ok)
	require.Equal(t, root.ID, *activity.ParentID)
}

func TestEnsureNode_CampusExtraction(t *testing.T) {
	h, refs, _ := newTestHierarchy()
	campusID := uuid.New()
	refs.SetCampuses([]domain.CampusRecord{{ID: campusID, Key: "CAMPUS_NORTH", Name: "North"}})

	ministry := h.EnsureMinistry("MINISTRY_1", "North - Outreach")
	require.NotNil(t, ministry)
	require.Equal(t, "Outreach", ministry.Name)
	require.NotNil(t, ministry.CampusID)
	require.Equal(t, campusID, *ministry.CampusID)
}

func TestEnsureNode_ServingDirect(t *testing.T) {
	h, refs, _ := newTestHierarchy()

	h.EnsureMinistry("MINISTRY_1", "Outreach")
	serving := h.EnsureActivity("ACTIVITY_2", "SERV: Ushers", "MINISTRY_1", nil)
	require.NotNil(t, serving)
	require.Equal(t, "SERV_ACTIVITY_2", serving.Key)
	require.Equal(t, "Ushers", serving.Name)

	// The plain ministry gets a serving clone; the serving root anchors it.
	clone, ok := refs.GroupByKey("SERVT_MINISTRY_1")
	require.True(t, ok)
	require.Equal(t, clone.ID, *serving.ParentID)

	servingRoot, ok := refs.GroupByKey("ARCHIVE_SERVING_TEAMS")
	require.True(t, ok)
	require.Equal(t, servingRoot.ID, *clone.ParentID)
}

func TestEnsureNode_ServingCascade(t *testing.T) {
	h, refs, _ := newTestHierarchy()

	h.EnsureMinistry("MINISTRY_1", "Outreach")
	direct := h.EnsureActivity("ACTIVITY_2", "SERV: Ushers", "MINISTRY_1", nil)

	// An unmarked room under a serving activity cascades.
	room := h.EnsureRoom("RLC_3", "Lobby Team", "MINISTRY_1", "ACTIVITY_2", nil)
	require.NotNil(t, room)
	require.Equal(t, "SERVT_RLC_3", room.Key)
	require.Equal(t, direct.ID, *room.ParentID)

	// The plain variants of the serving nodes never exist.
	_, ok := refs.GroupByKey("ACTIVITY_2")
	require.False(t, ok)
	_, ok = refs.GroupByKey("RLC_3")
	require.False(t, ok)
}

func TestEnsureNode_ServingCloneReused(t *testing.T) {
	h, refs, writer := newTestHierarchy()

	h.EnsureMinistry("MINISTRY_1", "Outreach")
	h.EnsureActivity("ACTIVITY_2", "SERV: Ushers", "MINISTRY_1", nil)
	staged := writer.StagedCount()

	// A second serving activity under the same ministry reuses the clone.
	h.EnsureActivity("ACTIVITY_3", "SERV: Greeters", "MINISTRY_1", nil)

	require.Equal(t, staged+1, writer.StagedCount())
	_, ok := refs.GroupByKey("SERVT_MINISTRY_1")
	require.True(t, ok)
}

func TestEnsureNode_ServingLeafRerequestedNotDuplicated(t *testing.T) {
	h, refs, writer := newTestHierarchy()

	h.EnsureMinistry("MINISTRY_1", "Outreach")
	h.EnsureActivity("ACTIVITY_2", "Ushers", "MINISTRY_1", nil)

	first := h.EnsureRoom("RLC_3", "SERV: Greeters", "MINISTRY_1", "ACTIVITY_2", nil)
	require.NotNil(t, first)
	require.Equal(t, "SERV_RLC_3", first.Key)
	staged := writer.StagedCount()

	// The clone chain created for the first request must not reclassify
	// the identical leaf on a re-request.
	second := h.EnsureRoom("RLC_3", "SERV: Greeters", "MINISTRY_1", "ACTIVITY_2", nil)
	require.NotNil(t, second)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, staged, writer.StagedCount())

	_, ok := refs.GroupByKey("SERVT_RLC_3")
	require.False(t, ok)
}

func TestEnsureNode_PlainSiblingUnaffectedByServingClone(t *testing.T) {
	h, refs, _ := newTestHierarchy()

	h.EnsureMinistry("MINISTRY_1", "Outreach")
	activity := h.EnsureActivity("ACTIVITY_2", "Ushers", "MINISTRY_1", nil)
	h.EnsureRoom("RLC_3", "SERV: Greeters", "MINISTRY_1", "ACTIVITY_2", nil)

	// The serving mirror of the unmarked activity exists now; an unmarked
	// room under it still belongs to the plain tree.
	_, ok := refs.GroupByKey("SERVT_ACTIVITY_2")
	require.True(t, ok)

	room := h.EnsureRoom("RLC_5", "Room 102", "MINISTRY_1", "ACTIVITY_2", nil)
	require.NotNil(t, room)
	require.Equal(t, "RLC_5", room.Key)
	require.Equal(t, activity.ID, *room.ParentID)
}

func TestEnsureNode_PlainAndServingCoexist(t *testing.T) {
	h, refs, _ := newTestHierarchy()

	h.EnsureMinistry("MINISTRY_1", "Outreach")
	plain := h.EnsureActivity("ACTIVITY_2", "Ushers", "MINISTRY_1", nil)
	serving := h.EnsureActivity("ACTIVITY_3", "SERV: Ushers", "MINISTRY_1", nil)

	require.Equal(t, "ACTIVITY_2", plain.Key)
	require.Equal(t, "SERV_ACTIVITY_3", serving.Key)

	ministry, _ := refs.GroupByKey("MINISTRY_1")
	require.Equal(t, ministry.ID, *plain.ParentID)
	require.NotEqual(t, *plain.ParentID, *serving.ParentID)
}

func TestEnsureGroupType_SharedPerLevel(t *testing.T) {
	h, _, writer := newTestHierarchy()

	first := h.EnsureGroupType(LevelMinistry)
	second := h.EnsureGroupType(LevelMinistry)
	other := h.EnsureGroupType(LevelRoom)

	require.Equal(t, first.ID, second.ID)
	require.NotEqual(t, first.ID, other.ID)
	require.Equal(t, 2, writer.StagedCount())
}
