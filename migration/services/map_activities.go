package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/parishsource/shepherd/migration/domain"
)

// The activity tables arrive flat and independently ordered; the three
// mappers below feed them level by level into the hierarchy synthesizer.
// Dependency ordering guarantees ministries are in the reference set
// before activities, and activities before rooms.

type ministriesMapper struct{}

func (ministriesMapper) Table() string { return "Activity_Ministry" }

func (m ministriesMapper) Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error {
	return forEachRow(ctx, run, m.Table(), rows, total, func(row domain.Row) error {
		id := row.GetInt("Ministry_ID")
		name := row.GetString("Ministry_Name")
		if id == nil || name == nil {
			return errors.Wrap(domain.ErrMalformedValue, "ministry row missing id or name")
		}
		run.Hierarchy.EnsureMinistry(run.Key("MINISTRY_%d", *id), *name)
		return nil
	})
}

type activitiesMapper struct{}

func (activitiesMapper) Table() string { return "Activity_Group" }

func (m activitiesMapper) Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error {
	return forEachRow(ctx, run, m.Table(), rows, total, func(row domain.Row) error {
		id := row.GetInt("Activity_ID")
		ministryID := row.GetInt("Ministry_ID")
		name := row.GetString("Activity_Name")
		if id == nil || name == nil {
			return errors.Wrap(domain.ErrMalformedValue, "activity row missing id or name")
		}
		if ministryID == nil {
			return errors.Wrapf(domain.ErrUnresolvedReference, "activity %d without ministry", *id)
		}
		run.activityMinistry[*id] = *ministryID
		run.Hierarchy.EnsureActivity(
			run.Key("ACTIVITY_%d", *id),
			*name,
			run.Key("MINISTRY_%d", *ministryID),
			nil,
		)
		return nil
	})
}

type schedulesMapper struct{}

func (schedulesMapper) Table() string { return "Activity_Schedule" }

func (m schedulesMapper) Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error {
	return forEachRow(ctx, run, m.Table(), rows, total, func(row domain.Row) error {
		id := row.GetInt("Schedule_ID")
		if id == nil {
			return errors.Wrap(domain.ErrMalformedValue, "schedule row without id")
		}
		key := run.Key("SCHEDULE_%d", *id)
		if _, ok := run.Refs.ScheduleByKey(key); ok {
			return nil
		}
		node := domain.ScheduleNode{
			ID:  uuid.New(),
			Key: key,
		}
		if v := row.GetString("Activity_Time_Name"); v != nil {
			node.Name = *v
		}
		// Malformed day/time leave the zero values; the schedule is still
		// usable as an occurrence anchor.
		if start := row.GetDate("Activity_Start_Time"); start != nil {
			node.DayOfWeek = start.Weekday()
			node.TimeOfDay = time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute
		}
		run.Writer.Stage(node)
		run.Refs.AddSchedule(node)
		return nil
	})
}

type roomsMapper struct{}

func (roomsMapper) Table() string { return "RLC" }

func (m roomsMapper) Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error {
	return forEachRow(ctx, run, m.Table(), rows, total, func(row domain.Row) error {
		id := row.GetInt("RLC_ID")
		activityID := row.GetInt("Activity_ID")
		name := row.GetString("RLC_Name")
		if id == nil || name == nil {
			return errors.Wrap(domain.ErrMalformedValue, "room row missing id or name")
		}
		if activityID == nil {
			return errors.Wrapf(domain.ErrUnresolvedReference, "room %d without activity", *id)
		}
		ministryBase := ""
		if ministryID, ok := run.activityMinistry[*activityID]; ok {
			ministryBase = run.Key("MINISTRY_%d", ministryID)
		}
		activityBase := run.Key("ACTIVITY_%d", *activityID)
		if ministryBase == "" {
			run.Hierarchy.EnsureNode(LevelRoom, run.Key("RLC_%d", *id), *name, []string{activityBase}, nil)
			return nil
		}
		run.Hierarchy.EnsureRoom(run.Key("RLC_%d", *id), *name, ministryBase, activityBase, nil)
		return nil
	})
}
