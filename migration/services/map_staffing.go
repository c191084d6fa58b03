package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/parishsource/shepherd/migration/domain"
)

// staffingMapper imports volunteer assignments into the serving-team
// tree. An assignment targets the serving variant of its room (or
// activity, when no room is assigned); rows whose serving group cannot
// be found are skipped, with the unresolved group key accumulated into
// the skip report surfaced at end of run.
type staffingMapper struct{}

func (staffingMapper) Table() string { return "Staffing_Assignment" }

func (m staffingMapper) Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error {
	return forEachRow(ctx, run, m.Table(), rows, total, func(row domain.Row) error {
		return m.mapRow(run, row)
	})
}

func (m staffingMapper) mapRow(run *Run, row domain.Row) error {
	individualID := row.GetInt("Individual_ID")
	if individualID == nil {
		return errors.Wrap(domain.ErrMalformedValue, "staffing row without individual")
	}
	person := run.Persons.ResolvePerson(individualID, nil, true)
	if person == nil {
		return errors.Wrapf(domain.ErrUnresolvedReference, "staffing individual %d", *individualID)
	}

	base := ""
	if rlc := row.GetInt("RLC_ID"); rlc != nil {
		base = run.Key("RLC_%d", *rlc)
	} else if activity := row.GetInt("Activity_ID"); activity != nil {
		base = run.Key("ACTIVITY_%d", *activity)
	}
	if base == "" {
		return errors.Wrap(domain.ErrMalformedValue, "staffing row without activity or room")
	}

	group, ok := m.servingGroup(run, base)
	if !ok {
		run.recordServingSkip(base)
		return errors.Wrapf(domain.ErrUnresolvedReference, "serving group %s", base)
	}

	role := "Member"
	if v := row.GetString("Staffing_Assignment_Name"); v != nil {
		role = *v
	}
	run.Writer.Stage(domain.GroupMemberRecord{
		ID:       uuid.New(),
		Key:      run.Key("STAFF_%s_P_%d", base, *individualID),
		GroupID:  group.ID,
		PersonID: person.PersonID,
		Role:     role,
	})
	return nil
}

// servingGroup looks the assignment target up in serving variant order:
// cascade first, direct second. Plain groups are not valid staffing
// targets.
func (m staffingMapper) servingGroup(run *Run, base string) (domain.GroupNode, bool) {
	if g, ok := run.Refs.GroupByKey(servingCascadePrefix + base); ok {
		return g, true
	}
	if g, ok := run.Refs.GroupByKey(servingDirectPrefix + base); ok {
		return g, true
	}
	return domain.GroupNode{}, false
}
