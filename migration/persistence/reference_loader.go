package persistence

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/parishsource/shepherd/migration/domain"
)

// BaseTable is the source table the whole import hangs off. A run that
// has no prior imported people, no prior imported groups and no base
// table to read is starved and must not write anything.
const BaseTable = "Individual_Household"

// ReferenceLoader hydrates a ReferenceSet from the destination store at
// run start. Purely additive read; any store failure is fatal to the run.
type ReferenceLoader struct {
	store Store
	log   *logrus.Logger
}

func NewReferenceLoader(store Store, log *logrus.Logger) *ReferenceLoader {
	return &ReferenceLoader{store: store, log: log}
}

func (l *ReferenceLoader) LoadReferences(ctx context.Context, availableTables []string) (*domain.ReferenceSet, error) {
	refs := domain.NewReferenceSet()

	persons, err := l.store.QueryAllByMarker(ctx, domain.KindPerson)
	if err != nil {
		return nil, errors.Wrap(err, "load person references")
	}
	for _, e := range persons {
		if p, ok := e.(domain.PersonRecord); ok {
			refs.AddPerson(p.Key())
		}
	}

	groupTypes, err := l.store.QueryAllByMarker(ctx, domain.KindGroupType)
	if err != nil {
		return nil, errors.Wrap(err, "load group type references")
	}
	for _, e := range groupTypes {
		if t, ok := e.(domain.GroupTypeNode); ok {
			refs.AddGroupType(t)
		}
	}

	groups, err := l.store.QueryAllByMarker(ctx, domain.KindGroup)
	if err != nil {
		return nil, errors.Wrap(err, "load group references")
	}
	for _, e := range groups {
		if g, ok := e.(domain.GroupNode); ok {
			refs.AddGroup(g)
		}
	}

	schedules, err := l.store.QueryAllByMarker(ctx, domain.KindSchedule)
	if err != nil {
		return nil, errors.Wrap(err, "load schedule references")
	}
	for _, e := range schedules {
		if s, ok := e.(domain.ScheduleNode); ok {
			refs.AddSchedule(s)
		}
	}

	batches, err := l.store.QueryAllByMarker(ctx, domain.KindBatch)
	if err != nil {
		return nil, errors.Wrap(err, "load batch references")
	}
	for _, e := range batches {
		if b, ok := e.(domain.BatchRecord); ok && b.ForeignID != 0 {
			refs.AddBatchID(b.ForeignID, b.ID)
		}
	}

	campuses, err := l.store.QueryAllByMarker(ctx, domain.KindCampus)
	if err != nil {
		return nil, errors.Wrap(err, "load campus references")
	}
	campusRecords := make([]domain.CampusRecord, 0, len(campuses))
	for _, e := range campuses {
		if c, ok := e.(domain.CampusRecord); ok {
			campusRecords = append(campusRecords, c)
		}
	}
	refs.SetCampuses(campusRecords)

	if refs.PersonCount() == 0 && refs.GroupCount() == 0 && !slices.Contains(availableTables, BaseTable) {
		return nil, errors.Wrapf(domain.ErrMissingDependency,
			"no imported people or groups in destination and source table %q is absent", BaseTable)
	}

	l.log.WithFields(logrus.Fields{
		"persons":   refs.PersonCount(),
		"groups":    refs.GroupCount(),
		"campuses":  len(campusRecords),
		"schedules": len(schedules),
		"batches":   len(batches),
	}).Info("reference caches loaded")

	return refs, nil
}
