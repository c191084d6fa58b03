package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/parishsource/shepherd/migration/domain"
	"github.com/parishsource/shepherd/migration/persistence"
	"github.com/parishsource/shepherd/pkg/eventbus"
	"github.com/parishsource/shepherd/pkg/metrics"
)

// RunState tracks the orchestrator's progress through a run.
type RunState string

const (
	StateIdle              RunState = "idle"
	StateLoadingReferences RunState = "loading_references"
	StateMapping           RunState = "mapping"
	StateCompleted         RunState = "completed"
	StateAborted           RunState = "aborted"
)

// tableOrder is the fixed dependency order: lookup tables before the
// tables that reference them. Available tables outside this list are
// processed afterwards in name order; tables with no mapper are ignored.
var tableOrder = []string{
	"Individual_Household",
	"Communication",
	"Activity_Ministry",
	"Activity_Group",
	"Activity_Schedule",
	"RLC",
	"Groups",
	"GroupsAttendance",
	"Staffing_Assignment",
	"Batch",
	"Contribution",
}

// TableSummary is the imported/skipped tally for one source table.
type TableSummary struct {
	Table    string
	Imported int
	Skipped  int
}

// Summary is the end-of-run report.
type Summary struct {
	State               RunState
	Tables              []TableSummary
	SkippedServingKeys  []string
	Started             time.Time
	Finished            time.Time
}

// ImportCompletedEvent is published on the bus when a run finishes,
// successfully or not.
type ImportCompletedEvent struct {
	Summary *Summary
}

// Run is the per-run working state threaded through every mapper:
// reference caches, resolvers, the batch writer and the running tallies.
// Nothing in it is shared between runs.
type Run struct {
	Refs        *domain.ReferenceSet
	Writer      *BatchWriter
	Persons     *PersonResolver
	Occurrences *OccurrenceResolver
	Hierarchy   *Hierarchy
	Sink        ProgressSink
	Log         *logrus.Logger
	ChunkSize   int
	Namespace   string

	// activityMinistry remembers which ministry each activity belongs to,
	// so room rows can hand the full ancestor chain to the synthesizer.
	activityMinistry map[int]int

	summary            *Summary
	skippedServingKeys map[string]struct{}
}

// Key builds a namespaced foreign key.
func (r *Run) Key(format string, args ...any) string {
	return r.Namespace + fmt.Sprintf(format, args...)
}

func (r *Run) recordServingSkip(key string) {
	if _, seen := r.skippedServingKeys[key]; seen {
		return
	}
	r.skippedServingKeys[key] = struct{}{}
	r.summary.SkippedServingKeys = append(r.summary.SkippedServingKeys, key)
}

// TableMapper maps one source table into staged destination entities.
type TableMapper interface {
	Table() string
	Map(ctx context.Context, run *Run, rows domain.RowIter, total int) error
}

// Orchestrator drives a whole import run: loads references once, then
// walks the available tables in dependency order, handing each to its
// mapper. Single-threaded by design; the caches need no locking.
type Orchestrator struct {
	scanner   domain.TableScanner
	store     persistence.Store
	loader    *persistence.ReferenceLoader
	sink      ProgressSink
	publisher eventbus.EventBus
	log       *logrus.Logger
	chunkSize int
	namespace string

	state RunState
}

func NewOrchestrator(
	scanner domain.TableScanner,
	store persistence.Store,
	sink ProgressSink,
	publisher eventbus.EventBus,
	log *logrus.Logger,
	chunkSize int,
	namespace string,
) *Orchestrator {
	return &Orchestrator{
		scanner:   scanner,
		store:     store,
		loader:    persistence.NewReferenceLoader(store, log),
		sink:      sink,
		publisher: publisher,
		log:       log,
		chunkSize: chunkSize,
		namespace: namespace,
		state:     StateIdle,
	}
}

func (o *Orchestrator) State() RunState { return o.state }

// Execute performs one full run. A reference-loader failure or a
// persistence failure aborts the run; everything flushed before the
// failure stays committed.
func (o *Orchestrator) Execute(ctx context.Context) (*Summary, error) {
	summary := &Summary{State: StateAborted, Started: time.Now()}
	defer func() {
		summary.Finished = time.Now()
		if o.publisher != nil {
			o.publisher.Publish(ImportCompletedEvent{Summary: summary})
		}
	}()

	o.state = StateLoadingReferences
	available := o.scanner.Tables()
	refs, err := o.loader.LoadReferences(ctx, available)
	if err != nil {
		o.state = StateAborted
		return summary, errors.Wrap(err, "load references")
	}

	writer := NewBatchWriter(o.store, o.sink)
	occurrences, err := NewOccurrenceResolver(o.store, writer)
	if err != nil {
		o.state = StateAborted
		return summary, err
	}
	run := &Run{
		Refs:               refs,
		Writer:             writer,
		Persons:            NewPersonResolver(refs),
		Occurrences:        occurrences,
		Hierarchy:          NewHierarchy(refs, writer, o.log),
		Sink:               o.sink,
		Log:                o.log,
		ChunkSize:          o.chunkSize,
		Namespace:          o.namespace,
		activityMinistry:   map[int]int{},
		summary:            summary,
		skippedServingKeys: map[string]struct{}{},
	}

	o.state = StateMapping
	for _, table := range orderTables(available) {
		mapper, ok := mapperFor(table)
		if !ok {
			o.log.WithField("table", table).Debug("no mapper for table, ignoring")
			continue
		}
		if err := o.processTable(ctx, run, mapper); err != nil {
			o.state = StateAborted
			return summary, err
		}
	}

	o.state = StateCompleted
	summary.State = StateCompleted
	o.reportSummary(summary)
	return summary, nil
}

func (o *Orchestrator) processTable(ctx context.Context, run *Run, mapper TableMapper) error {
	table := mapper.Table()
	total, err := o.scanner.RowCount(ctx, table)
	if err != nil {
		return errors.Wrapf(err, "count rows of %s", table)
	}
	rows, err := o.scanner.Scan(ctx, table)
	if err != nil {
		return errors.Wrapf(err, "scan %s", table)
	}
	defer func() { _ = rows.Close() }()

	o.log.WithFields(logrus.Fields{"table": table, "rows": total}).Info("mapping table")
	if err := mapper.Map(ctx, run, rows, total); err != nil {
		return errors.Wrapf(err, "map %s", table)
	}
	return nil
}

func (o *Orchestrator) reportSummary(summary *Summary) {
	for _, t := range summary.Tables {
		o.sink.Report(100, fmt.Sprintf("%s: %d imported, %d skipped", t.Table, t.Imported, t.Skipped))
	}
	for _, key := range summary.SkippedServingKeys {
		o.log.WithField("group_key", key).Warn("serving assignment skipped: group not found")
	}
}

// orderTables arranges the available tables: dependency-ordered ones
// first, everything else after in name order so processing stays
// deterministic.
func orderTables(available []string) []string {
	availSet := make(map[string]struct{}, len(available))
	for _, t := range available {
		availSet[t] = struct{}{}
	}
	ordered := make([]string, 0, len(available))
	ranked := map[string]struct{}{}
	for _, t := range tableOrder {
		if _, ok := availSet[t]; ok {
			ordered = append(ordered, t)
			ranked[t] = struct{}{}
		}
	}
	rest := make([]string, 0, len(available))
	for _, t := range available {
		if _, ok := ranked[t]; !ok {
			rest = append(rest, t)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

// rowHandler processes one source row. Skip-level errors
// (ErrUnresolvedReference, ErrMalformedValue, ErrMissingDependency) drop
// the row; anything else aborts the table.
type rowHandler func(row domain.Row) error

// forEachRow is the shared mapping loop: iterate, classify per-row
// errors, count, checkpoint at chunk boundaries, report measured
// progress, final flush, record the table summary.
func forEachRow(ctx context.Context, run *Run, table string, rows domain.RowIter, total int, handle rowHandler) error {
	unit := (total + 99) / 100
	completed := 0
	skipped := 0

	for rows.Next() {
		if err := handle(rows.Row()); err != nil {
			if isSkippable(err) {
				skipped++
				metrics.RowsSkipped.WithLabelValues(table).Inc()
				run.Log.WithError(err).WithField("table", table).Debug("row skipped")
			} else {
				return err
			}
		}
		completed++
		metrics.RowsProcessed.WithLabelValues(table).Inc()
		if unit > 0 && completed%unit == 0 {
			run.Sink.Report(completed/unit, fmt.Sprintf("%s: %d of %d rows", table, completed, total))
		}
		if err := run.Writer.MaybeFlush(ctx, completed, run.ChunkSize); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrapf(err, "read %s", table)
	}
	if err := run.Writer.Flush(ctx); err != nil {
		return err
	}

	run.summary.Tables = append(run.summary.Tables, TableSummary{
		Table:    table,
		Imported: completed - skipped,
		Skipped:  skipped,
	})
	return nil
}

func isSkippable(err error) bool {
	return errors.Is(err, domain.ErrUnresolvedReference) ||
		errors.Is(err, domain.ErrMalformedValue) ||
		errors.Is(err, domain.ErrMissingDependency)
}
