package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/parishsource/shepherd/migration/domain"
	"github.com/parishsource/shepherd/pkg/composables"
)

// PgStore persists destination entities in Postgres. Every row carries a
// foreign_key marker column; inserts are ON CONFLICT DO NOTHING on that
// column, which is what makes interrupted runs safely resumable.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) UpsertBatch(ctx context.Context, kind domain.Kind, entities []domain.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	return composables.InTx(composables.WithPool(ctx, s.pool), func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, e := range entities {
			if err := queueInsert(batch, kind, e); err != nil {
				return err
			}
		}
		if err := tx.SendBatch(txCtx, batch).Close(); err != nil {
			return errors.Wrapf(err, "upsert %s batch", kind)
		}
		return nil
	})
}

func (s *PgStore) QueryByForeignKey(ctx context.Context, kind domain.Kind, key string) (domain.Entity, error) {
	rows, err := s.pool.Query(ctx, selectSQL(kind)+" WHERE foreign_key = $1", key)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s by foreign key", kind)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrNotFound
	}
	return scanEntity(kind, rows)
}

func (s *PgStore) QueryAllByMarker(ctx context.Context, kind domain.Kind) ([]domain.Entity, error) {
	rows, err := s.pool.Query(ctx, selectSQL(kind)+" WHERE foreign_key IS NOT NULL AND foreign_key <> '' ORDER BY foreign_key")
	if err != nil {
		return nil, errors.Wrapf(err, "query %s by marker", kind)
	}
	defer rows.Close()

	var out []domain.Entity
	for rows.Next() {
		e, err := scanEntity(kind, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recycle drops the pool's idle connections at a chunk boundary so a long
// run does not pin session-local state or server-side memory.
func (s *PgStore) Recycle(ctx context.Context) error {
	s.pool.Reset()
	return nil
}

func queueInsert(batch *pgx.Batch, kind domain.Kind, e domain.Entity) error {
	switch v := e.(type) {
	case domain.CampusRecord:
		batch.Queue(
			`INSERT INTO campus (id, name, short_code, foreign_key)
			 VALUES ($1, $2, $3, $4) ON CONFLICT (foreign_key) DO NOTHING`,
			v.ID, v.Name, v.ShortCode, v.Key,
		)
	case domain.GroupTypeNode:
		batch.Queue(
			`INSERT INTO group_type (id, name, foreign_key)
			 VALUES ($1, $2, $3) ON CONFLICT (foreign_key) DO NOTHING`,
			v.ID, v.Name, v.Key,
		)
	case domain.ScheduleNode:
		batch.Queue(
			`INSERT INTO group_schedule (id, name, day_of_week, time_of_day_seconds, foreign_key)
			 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (foreign_key) DO NOTHING`,
			v.ID, v.Name, int(v.DayOfWeek), int(v.TimeOfDay/time.Second), v.Key,
		)
	case domain.GroupNode:
		batch.Queue(
			`INSERT INTO ministry_group (id, name, parent_id, group_type_id, campus_id, schedule_id, foreign_key)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (foreign_key) DO NOTHING`,
			v.ID, v.Name, pgUUIDPtr(v.ParentID), v.GroupTypeID, pgUUIDPtr(v.CampusID), pgUUIDPtr(v.ScheduleID), v.Key,
		)
	case domain.PersonRecord:
		batch.Queue(
			`INSERT INTO person (id, alias_id, first_name, last_name, gender, family_role,
			                     email, phone, birthdate, foreign_id, household_foreign_id, foreign_key)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 ON CONFLICT (foreign_key) DO NOTHING`,
			v.ID, v.AliasID, v.FirstName, v.LastName, int(v.Gender), int(v.Role),
			v.Email, v.Phone, pgDatePtr(v.Birthdate), v.ForeignID, v.HouseholdForeignID, v.Marker,
		)
	case domain.GroupMemberRecord:
		batch.Queue(
			`INSERT INTO group_member (id, group_id, person_id, role, foreign_key)
			 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (foreign_key) DO NOTHING`,
			v.ID, v.GroupID, v.PersonID, v.Role, v.Key,
		)
	case domain.CommunicationRecord:
		batch.Queue(
			`INSERT INTO person_communication (id, person_id, medium, value, foreign_key)
			 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (foreign_key) DO NOTHING`,
			v.ID, v.PersonID, v.Medium, v.Value, v.Key,
		)
	case domain.OccurrenceRecord:
		batch.Queue(
			`INSERT INTO occurrence (id, group_id, location_id, schedule_id, occurred_on, foreign_key)
			 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (foreign_key) DO NOTHING`,
			v.ID, pgUUIDPtr(v.GroupID), pgUUIDPtr(v.LocationID), v.ScheduleID, pgDate(v.Date), v.Key,
		)
	case domain.AttendanceRecord:
		batch.Queue(
			`INSERT INTO attendance (id, occurrence_id, person_alias_id, started_at, did_attend, foreign_key)
			 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (foreign_key) DO NOTHING`,
			v.ID, v.OccurrenceID, v.PersonAliasID, v.StartedAt, v.DidAttend, v.Key,
		)
	case domain.BatchRecord:
		batch.Queue(
			`INSERT INTO financial_batch (id, foreign_id, name, batch_date, foreign_key)
			 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (foreign_key) DO NOTHING`,
			v.ID, v.ForeignID, v.Name, pgDatePtr(v.Date), v.Key,
		)
	case domain.TransactionRecord:
		batch.Queue(
			`INSERT INTO financial_transaction (id, authorized_alias_id, batch_id, amount, fund, txn_date, foreign_key)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (foreign_key) DO NOTHING`,
			v.ID, v.AuthorizedAliasID, pgUUIDPtr(v.BatchID), v.Amount.String(), v.Fund, pgDatePtr(v.Date), v.Key,
		)
	default:
		return errors.Errorf("unsupported entity kind %s", kind)
	}
	return nil
}

func selectSQL(kind domain.Kind) string {
	switch kind {
	case domain.KindCampus:
		return `SELECT id, name, short_code, foreign_key FROM campus`
	case domain.KindGroupType:
		return `SELECT id, name, foreign_key FROM group_type`
	case domain.KindSchedule:
		return `SELECT id, name, day_of_week, time_of_day_seconds, foreign_key FROM group_schedule`
	case domain.KindGroup:
		return `SELECT id, name, parent_id, group_type_id, campus_id, schedule_id, foreign_key FROM ministry_group`
	case domain.KindPerson:
		return `SELECT id, alias_id, first_name, last_name, gender, family_role,
		        email, phone, birthdate, foreign_id, household_foreign_id, foreign_key FROM person`
	case domain.KindGroupMember:
		return `SELECT id, group_id, person_id, role, foreign_key FROM group_member`
	case domain.KindCommunication:
		return `SELECT id, person_id, medium, value, foreign_key FROM person_communication`
	case domain.KindOccurrence:
		return `SELECT id, group_id, location_id, schedule_id, occurred_on, foreign_key FROM occurrence`
	case domain.KindAttendance:
		return `SELECT id, occurrence_id, person_alias_id, started_at, did_attend, foreign_key FROM attendance`
	case domain.KindBatch:
		return `SELECT id, foreign_id, name, batch_date, foreign_key FROM financial_batch`
	case domain.KindTransaction:
		return `SELECT id, authorized_alias_id, batch_id, amount, fund, txn_date, foreign_key FROM financial_transaction`
	}
	return ``
}

func scanEntity(kind domain.Kind, rows pgx.Rows) (domain.Entity, error) {
	switch kind {
	case domain.KindCampus:
		var v domain.CampusRecord
		if err := rows.Scan(&v.ID, &v.Name, &v.ShortCode, &v.Key); err != nil {
			return nil, err
		}
		return v, nil
	case domain.KindGroupType:
		var v domain.GroupTypeNode
		if err := rows.Scan(&v.ID, &v.Name, &v.Key); err != nil {
			return nil, err
		}
		return v, nil
	case domain.KindSchedule:
		var v domain.ScheduleNode
		var day, seconds int
		if err := rows.Scan(&v.ID, &v.Name, &day, &seconds, &v.Key); err != nil {
			return nil, err
		}
		v.DayOfWeek = time.Weekday(day)
		v.TimeOfDay = time.Duration(seconds) * time.Second
		return v, nil
	case domain.KindGroup:
		var v domain.GroupNode
		var parent, campus, schedule pgtype.UUID
		if err := rows.Scan(&v.ID, &v.Name, &parent, &v.GroupTypeID, &campus, &schedule, &v.Key); err != nil {
			return nil, err
		}
		v.ParentID = uuidPtr(parent)
		v.CampusID = uuidPtr(campus)
		v.ScheduleID = uuidPtr(schedule)
		return v, nil
	case domain.KindPerson:
		var v domain.PersonRecord
		var gender, role int
		var birth pgtype.Date
		if err := rows.Scan(&v.ID, &v.AliasID, &v.FirstName, &v.LastName, &gender, &role,
			&v.Email, &v.Phone, &birth, &v.ForeignID, &v.HouseholdForeignID, &v.Marker); err != nil {
			return nil, err
		}
		v.Gender = domain.Gender(gender)
		v.Role = domain.FamilyRole(role)
		if birth.Valid {
			t := birth.Time
			v.Birthdate = &t
		}
		return v, nil
	case domain.KindGroupMember:
		var v domain.GroupMemberRecord
		if err := rows.Scan(&v.ID, &v.GroupID, &v.PersonID, &v.Role, &v.Key); err != nil {
			return nil, err
		}
		return v, nil
	case domain.KindCommunication:
		var v domain.CommunicationRecord
		if err := rows.Scan(&v.ID, &v.PersonID, &v.Medium, &v.Value, &v.Key); err != nil {
			return nil, err
		}
		return v, nil
	case domain.KindOccurrence:
		var v domain.OccurrenceRecord
		var group, location pgtype.UUID
		var on pgtype.Date
		if err := rows.Scan(&v.ID, &group, &location, &v.ScheduleID, &on, &v.Key); err != nil {
			return nil, err
		}
		v.GroupID = uuidPtr(group)
		v.LocationID = uuidPtr(location)
		v.Date = on.Time
		return v, nil
	case domain.KindAttendance:
		var v domain.AttendanceRecord
		if err := rows.Scan(&v.ID, &v.OccurrenceID, &v.PersonAliasID, &v.StartedAt, &v.DidAttend, &v.Key); err != nil {
			return nil, err
		}
		return v, nil
	case domain.KindBatch:
		var v domain.BatchRecord
		var on pgtype.Date
		if err := rows.Scan(&v.ID, &v.ForeignID, &v.Name, &on, &v.Key); err != nil {
			return nil, err
		}
		if on.Valid {
			t := on.Time
			v.Date = &t
		}
		return v, nil
	case domain.KindTransaction:
		var v domain.TransactionRecord
		var batchID pgtype.UUID
		var amount string
		var on pgtype.Date
		if err := rows.Scan(&v.ID, &v.AuthorizedAliasID, &batchID, &amount, &v.Fund, &on, &v.Key); err != nil {
			return nil, err
		}
		v.BatchID = uuidPtr(batchID)
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, errors.Wrap(err, "decode transaction amount")
		}
		v.Amount = d
		if on.Valid {
			t := on.Time
			v.Date = &t
		}
		return v, nil
	}
	return nil, errors.Errorf("unsupported entity kind %s", kind)
}

func pgUUIDPtr(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func uuidPtr(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}

func pgDate(t time.Time) pgtype.Date {
	u := t.UTC()
	y, m, d := u.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func pgDatePtr(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgDate(*t)
}
