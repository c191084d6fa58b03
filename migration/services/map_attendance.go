package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/parishsource/shepherd/migration/domain"
)

// unknownScheduleKey anchors occurrences for attendance rows whose
// source carries no schedule reference.
const unknownScheduleKey = "SCHEDULE_UNKNOWN"

// attendanceMapper imports dated attendance. Each row resolves the
// person, then resolves-or-creates the day's occurrence for its
// (group, location, schedule) tuple and attaches an attendance record.
type attendanceMapper struct{}

func (attendanceMapper) Table() string { return "GroupsAttendance" }

func (m attendanceMapper) Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error {
	return forEachRow(ctx, run, m.Table(), rows, total, func(row domain.Row) error {
		return m.mapRow(ctx, run, row)
	})
}

func (m attendanceMapper) mapRow(ctx context.Context, run *Run, row domain.Row) error {
	individualID := row.GetInt("Individual_ID")
	date := row.GetDate("AttendanceDate")
	if individualID == nil || date == nil {
		return errors.Wrap(domain.ErrMalformedValue, "attendance row missing individual or date")
	}
	person := run.Persons.ResolvePerson(individualID, nil, true)
	if person == nil {
		return errors.Wrapf(domain.ErrUnresolvedReference, "attendance individual %d", *individualID)
	}

	var groupID *uuid.UUID
	groupForeign := 0
	if gid := row.GetInt("Group_ID"); gid != nil {
		groupForeign = *gid
		if group, ok := run.Refs.GroupByKey(run.Key("GROUP_%d", *gid)); ok {
			id := group.ID
			groupID = &id
		}
	}
	var locationID *uuid.UUID
	if rlc := row.GetInt("RLC_ID"); rlc != nil {
		if room, ok := run.Refs.GroupByKey(run.Key("RLC_%d", *rlc)); ok {
			id := room.ID
			locationID = &id
		}
	}

	schedule := m.resolveSchedule(run, row)
	occurrenceID, err := run.Occurrences.ResolveOrCreateOccurrence(ctx, groupID, locationID, schedule.ID, *date)
	if err != nil {
		return err
	}

	startedAt := *date
	if checkin := row.GetDate("CheckinDateTime"); checkin != nil {
		startedAt = *checkin
	}
	run.Writer.Stage(domain.AttendanceRecord{
		ID:            uuid.New(),
		Key:           run.Key("ATT_%d_%d_%s", groupForeign, *individualID, dayOnly(*date).Format("20060102")),
		OccurrenceID:  occurrenceID,
		PersonAliasID: person.AliasID,
		StartedAt:     startedAt,
		DidAttend:     true,
	})
	return nil
}

func (m attendanceMapper) resolveSchedule(run *Run, row domain.Row) domain.ScheduleNode {
	if sid := row.GetInt("Schedule_ID"); sid != nil {
		if s, ok := run.Refs.ScheduleByKey(run.Key("SCHEDULE_%d", *sid)); ok {
			return s
		}
	}
	key := run.Key(unknownScheduleKey)
	if s, ok := run.Refs.ScheduleByKey(key); ok {
		return s
	}
	s := domain.ScheduleNode{ID: uuid.New(), Key: key, Name: "Unknown Schedule"}
	run.Writer.Stage(s)
	run.Refs.AddSchedule(s)
	return s
}
