package domain

import (
	"sort"

	"github.com/google/uuid"
)

// ReferenceSet carries every previously-imported entity the run needs to
// resolve against. It is loaded once at run start, owned by the
// orchestrator, mutated only by the single processing goroutine, and
// discarded at run end — the destination store is the durable copy.
type ReferenceSet struct {
	personsByForeignID  map[int]PersonKey
	personsByHousehold  map[int][]PersonKey
	groupsByKey         map[string]GroupNode
	groupTypesByKey     map[string]GroupTypeNode
	schedulesByKey      map[string]ScheduleNode
	batchIDsByForeignID map[int]uuid.UUID
	campuses            []CampusRecord
}

func NewReferenceSet() *ReferenceSet {
	return &ReferenceSet{
		personsByForeignID:  map[int]PersonKey{},
		personsByHousehold:  map[int][]PersonKey{},
		groupsByKey:         map[string]GroupNode{},
		groupTypesByKey:     map[string]GroupTypeNode{},
		schedulesByKey:      map[string]ScheduleNode{},
		batchIDsByForeignID: map[int]uuid.UUID{},
	}
}

// AddPerson indexes a person key. The person foreign id is unique within
// the cache; a duplicate is ignored so re-staged rows cannot shadow the
// already-imported identity.
func (r *ReferenceSet) AddPerson(k PersonKey) {
	if _, exists := r.personsByForeignID[k.ForeignID]; exists {
		return
	}
	r.personsByForeignID[k.ForeignID] = k
	if k.HouseholdForeignID != 0 {
		r.personsByHousehold[k.HouseholdForeignID] = append(r.personsByHousehold[k.HouseholdForeignID], k)
	}
}

func (r *ReferenceSet) PersonByForeignID(id int) (PersonKey, bool) {
	k, ok := r.personsByForeignID[id]
	return k, ok
}

// PersonsByHousehold returns household members ordered by the tie-break
// ranking, so index 0 is always the primary candidate.
func (r *ReferenceSet) PersonsByHousehold(householdID int) []PersonKey {
	members := r.personsByHousehold[householdID]
	out := make([]PersonKey, len(members))
	copy(out, members)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (r *ReferenceSet) PersonCount() int { return len(r.personsByForeignID) }

func (r *ReferenceSet) AddGroup(g GroupNode) {
	if _, exists := r.groupsByKey[g.Key]; exists {
		return
	}
	r.groupsByKey[g.Key] = g
}

func (r *ReferenceSet) GroupByKey(key string) (GroupNode, bool) {
	g, ok := r.groupsByKey[key]
	return g, ok
}

func (r *ReferenceSet) GroupCount() int { return len(r.groupsByKey) }

func (r *ReferenceSet) AddGroupType(t GroupTypeNode) {
	if _, exists := r.groupTypesByKey[t.Key]; exists {
		return
	}
	r.groupTypesByKey[t.Key] = t
}

func (r *ReferenceSet) GroupTypeByKey(key string) (GroupTypeNode, bool) {
	t, ok := r.groupTypesByKey[key]
	return t, ok
}

func (r *ReferenceSet) AddSchedule(s ScheduleNode) {
	if _, exists := r.schedulesByKey[s.Key]; exists {
		return
	}
	r.schedulesByKey[s.Key] = s
}

func (r *ReferenceSet) ScheduleByKey(key string) (ScheduleNode, bool) {
	s, ok := r.schedulesByKey[key]
	return s, ok
}

func (r *ReferenceSet) AddBatchID(foreignID int, id uuid.UUID) {
	if _, exists := r.batchIDsByForeignID[foreignID]; exists {
		return
	}
	r.batchIDsByForeignID[foreignID] = id
}

func (r *ReferenceSet) BatchID(foreignID int) (uuid.UUID, bool) {
	id, ok := r.batchIDsByForeignID[foreignID]
	return id, ok
}

func (r *ReferenceSet) SetCampuses(campuses []CampusRecord) {
	r.campuses = campuses
}

func (r *ReferenceSet) Campuses() []CampusRecord { return r.campuses }
