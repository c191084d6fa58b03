package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/parishsource/shepherd/migration/domain"
)

// communicationsMapper imports emails and phone numbers. A row scoped to
// an individual lands on that person; a household-scoped row fans out to
// every member of the family, visitors included.
type communicationsMapper struct{}

func (communicationsMapper) Table() string { return "Communication" }

func (m communicationsMapper) Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error {
	return forEachRow(ctx, run, m.Table(), rows, total, func(row domain.Row) error {
		return m.mapRow(run, row)
	})
}

func (m communicationsMapper) mapRow(run *Run, row domain.Row) error {
	commID := row.GetInt("Communication_ID")
	value := row.GetString("Communication_Value")
	medium := row.GetString("Communication_Type")
	if commID == nil || value == nil || medium == nil {
		return errors.Wrap(domain.ErrMalformedValue, "communication row missing id, type or value")
	}

	individualID := row.GetInt("Individual_ID")
	householdID := row.GetInt("Household_ID")

	if individualID != nil {
		person := run.Persons.ResolvePerson(individualID, nil, true)
		if person == nil {
			return errors.Wrapf(domain.ErrUnresolvedReference, "individual %d", *individualID)
		}
		m.stage(run, *commID, person.PersonID, person.ForeignID, *medium, *value)
		return nil
	}
	if householdID == nil {
		return errors.Wrap(domain.ErrMalformedValue, "communication row without individual or household")
	}

	family := run.Persons.ResolveFamily(*householdID, true)
	if len(family) == 0 {
		return errors.Wrapf(domain.ErrUnresolvedReference, "household %d", *householdID)
	}
	for _, member := range family {
		m.stage(run, *commID, member.PersonID, member.ForeignID, *medium, *value)
	}
	return nil
}

func (m communicationsMapper) stage(run *Run, commID int, personID uuid.UUID, personForeignID int, medium, value string) {
	run.Writer.Stage(domain.CommunicationRecord{
		ID:       uuid.New(),
		Key:      run.Key("COMM_%d_P_%d", commID, personForeignID),
		PersonID: personID,
		Medium:   medium,
		Value:    value,
	})
}
