package services

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/parishsource/shepherd/migration/domain"
)

// groupsMapper imports flat small groups. The source table is one row
// per membership: group fields repeat on every row, so the group and its
// type are ensured lazily and the person is attached.
type groupsMapper struct{}

func (groupsMapper) Table() string { return "Groups" }

func (m groupsMapper) Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error {
	return forEachRow(ctx, run, m.Table(), rows, total, func(row domain.Row) error {
		return m.mapRow(run, row)
	})
}

func (m groupsMapper) mapRow(run *Run, row domain.Row) error {
	groupID := row.GetInt("Group_ID")
	groupName := row.GetString("Group_Name")
	individualID := row.GetInt("Individual_ID")
	if groupID == nil || groupName == nil {
		return errors.Wrap(domain.ErrMalformedValue, "group row missing id or name")
	}
	if IsDeletedSentinel(*groupName) {
		return nil
	}

	typeName := "Small Group"
	if v := row.GetString("Group_Type_Name"); v != nil {
		typeName = *v
	}
	groupType := run.Hierarchy.EnsureNamedGroupType(
		run.Key("GT_%s", strings.ToUpper(strings.ReplaceAll(typeName, " ", "_"))),
		typeName,
	)

	key := run.Key("GROUP_%d", *groupID)
	group, ok := run.Refs.GroupByKey(key)
	if !ok {
		name, campusID := ExtractCampus(*groupName, run.Refs.Campuses())
		root := run.Hierarchy.EnsureRoot(VariantPlain)
		rootID := root.ID
		group = domain.GroupNode{
			ID:          uuid.New(),
			Key:         key,
			ParentID:    &rootID,
			GroupTypeID: groupType.ID,
			CampusID:    campusID,
			Name:        name,
		}
		run.Writer.Stage(group)
		run.Refs.AddGroup(group)
	}

	if individualID == nil {
		return nil
	}
	person := run.Persons.ResolvePerson(individualID, nil, true)
	if person == nil {
		return errors.Wrapf(domain.ErrUnresolvedReference, "group %d member individual %d", *groupID, *individualID)
	}
	run.Writer.Stage(domain.GroupMemberRecord{
		ID:       uuid.New(),
		Key:      run.Key("GROUP_%d_P_%d", *groupID, *individualID),
		GroupID:  group.ID,
		PersonID: person.PersonID,
		Role:     "Member",
	})
	return nil
}
