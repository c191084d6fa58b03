package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/parishsource/shepherd/migration/domain"
)

// familyTypeKey is the group type for destination family groups.
const familyTypeKey = "GT_FAMILY"

// peopleMapper imports the base table: one row per person carrying the
// household reference and position. Creates the PersonKey, the family
// group for the household, and the person's membership in it.
type peopleMapper struct{}

func (peopleMapper) Table() string { return "Individual_Household" }

func (m peopleMapper) Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error {
	return forEachRow(ctx, run, m.Table(), rows, total, func(row domain.Row) error {
		return m.mapRow(run, row)
	})
}

func (m peopleMapper) mapRow(run *Run, row domain.Row) error {
	individualID := row.GetInt("Individual_ID")
	if individualID == nil {
		return errors.Wrap(domain.ErrMalformedValue, "row without Individual_ID")
	}
	// Already imported in an earlier run or chunk; nothing to create.
	if _, ok := run.Refs.PersonByForeignID(*individualID); ok {
		return nil
	}

	householdID := 0
	if hid := row.GetInt("Household_ID"); hid != nil {
		householdID = *hid
	}

	person := domain.PersonRecord{
		ID:                 uuid.New(),
		AliasID:            uuid.New(),
		ForeignID:          *individualID,
		HouseholdForeignID: householdID,
		Gender:             domain.GenderUnknown,
		Role:               domain.RoleVisitor,
		Marker:             run.Key("PERSON_%d", *individualID),
	}
	if v := row.GetString("First_Name"); v != nil {
		person.FirstName = *v
	}
	if v := row.GetString("Last_Name"); v != nil {
		person.LastName = *v
	}
	if v := row.GetString("Gender"); v != nil {
		person.Gender = domain.ParseGender(*v)
	}
	if v := row.GetString("Household_Position"); v != nil {
		person.Role = domain.ParseFamilyRole(*v)
	}
	// Primary contact fields travel on the base table; additional
	// addresses arrive later via the communication rows.
	if v := row.GetString("Email"); v != nil {
		person.Email = *v
	}
	if v := row.GetString("Phone"); v != nil {
		person.Phone = *v
	}
	person.Birthdate = row.GetDate("Date_Of_Birth")

	run.Writer.Stage(person)
	run.Refs.AddPerson(person.Key())

	if householdID != 0 {
		family := m.ensureFamilyGroup(run, householdID, person.LastName)
		run.Writer.Stage(domain.GroupMemberRecord{
			ID:       uuid.New(),
			Key:      run.Key("FAMILY_%d_P_%d", householdID, *individualID),
			GroupID:  family.ID,
			PersonID: person.ID,
			Role:     person.Role.String(),
		})
	}
	return nil
}

// ensureFamilyGroup returns the destination family group for a
// household, creating it on the household's first member.
func (m peopleMapper) ensureFamilyGroup(run *Run, householdID int, lastName string) domain.GroupNode {
	key := run.Key("FAMILY_%d", householdID)
	if g, ok := run.Refs.GroupByKey(key); ok {
		return g
	}
	name := "Family"
	if lastName != "" {
		name = lastName + " Family"
	}
	family := domain.GroupNode{
		ID:          uuid.New(),
		Key:         key,
		GroupTypeID: run.Hierarchy.EnsureNamedGroupType(familyTypeKey, "Family").ID,
		Name:        name,
	}
	run.Writer.Stage(family)
	run.Refs.AddGroup(family)
	return family
}
