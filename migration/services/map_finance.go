package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/parishsource/shepherd/migration/domain"
)

type batchesMapper struct{}

func (batchesMapper) Table() string { return "Batch" }

func (m batchesMapper) Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error {
	return forEachRow(ctx, run, m.Table(), rows, total, func(row domain.Row) error {
		id := row.GetInt("Batch_ID")
		if id == nil {
			return errors.Wrap(domain.ErrMalformedValue, "batch row without id")
		}
		if _, ok := run.Refs.BatchID(*id); ok {
			return nil
		}
		batch := domain.BatchRecord{
			ID:        uuid.New(),
			ForeignID: *id,
			Key:       run.Key("BATCH_%d", *id),
			Name:      "Unnamed Batch",
			Date:      row.GetDate("Batch_Date"),
		}
		if v := row.GetString("Batch_Name"); v != nil {
			batch.Name = *v
		}
		run.Writer.Stage(batch)
		run.Refs.AddBatchID(*id, batch.ID)
		return nil
	})
}

// contributionsMapper imports financial transactions. The contributor is
// resolved by individual id first, household tie-break second; rows with
// no resolvable owner or no parseable amount are skipped. Batch
// attribution is optional — a missing batch leaves the transaction
// unattributed rather than dropping it.
type contributionsMapper struct{}

func (contributionsMapper) Table() string { return "Contribution" }

func (m contributionsMapper) Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error {
	return forEachRow(ctx, run, m.Table(), rows, total, func(row domain.Row) error {
		return m.mapRow(run, row)
	})
}

func (m contributionsMapper) mapRow(run *Run, row domain.Row) error {
	contributionID := row.GetInt("ContributionID")
	if contributionID == nil {
		return errors.Wrap(domain.ErrMalformedValue, "contribution row without id")
	}
	amount := row.GetDecimal("Amount")
	if amount == nil {
		return errors.Wrapf(domain.ErrMalformedValue, "contribution %d without parseable amount", *contributionID)
	}

	person := run.Persons.ResolvePerson(row.GetInt("Individual_ID"), row.GetInt("Household_ID"), true)
	if person == nil {
		return errors.Wrapf(domain.ErrUnresolvedReference, "contribution %d has no resolvable contributor", *contributionID)
	}

	var batchID *uuid.UUID
	if bid := row.GetInt("Batch_ID"); bid != nil {
		if id, ok := run.Refs.BatchID(*bid); ok {
			batchID = &id
		}
	}

	txn := domain.TransactionRecord{
		ID:                uuid.New(),
		Key:               run.Key("CONTRIB_%d", *contributionID),
		AuthorizedAliasID: person.AliasID,
		BatchID:           batchID,
		Amount:            *amount,
		Date:              row.GetDate("Received_Date"),
	}
	if v := row.GetString("Fund_Name"); v != nil {
		txn.Fund = *v
	}
	run.Writer.Stage(txn)
	return nil
}
