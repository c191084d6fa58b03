package services

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/parishsource/shepherd/migration/domain"
	"github.com/parishsource/shepherd/migration/persistence"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestRun wires a complete Run around a store, the way the
// orchestrator does at the start of Execute.
func newTestRun(t *testing.T, store persistence.Store) *Run {
	t.Helper()
	refs := domain.NewReferenceSet()
	writer := NewBatchWriter(store, NopSink{})
	occurrences, err := NewOccurrenceResolver(store, writer)
	require.NoError(t, err)
	return &Run{
		Refs:               refs,
		Writer:             writer,
		Persons:            NewPersonResolver(refs),
		Occurrences:        occurrences,
		Hierarchy:          NewHierarchy(refs, writer, testLogger()),
		Sink:               NopSink{},
		Log:                testLogger(),
		ChunkSize:          100,
		activityMinistry:   map[int]int{},
		summary:            &Summary{},
		skippedServingKeys: map[string]struct{}{},
	}
}

// sliceRows is an in-memory RowIter.
type sliceRows struct {
	rows []domain.Row
	pos  int
}

func rowsOf(rows ...domain.Row) *sliceRows {
	return &sliceRows{rows: rows}
}

func (s *sliceRows) Next() bool {
	if s.pos >= len(s.rows) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceRows) Row() domain.Row { return s.rows[s.pos-1] }
func (s *sliceRows) Err() error      { return nil }
func (s *sliceRows) Close() error    { return nil }

// fakeScanner serves fixed tables from memory.
type fakeScanner struct {
	tables []string
	data   map[string][]domain.Row
}

func (f *fakeScanner) Tables() []string { return f.tables }

func (f *fakeScanner) RowCount(_ context.Context, table string) (int, error) {
	return len(f.data[table]), nil
}

func (f *fakeScanner) Scan(_ context.Context, table string) (domain.RowIter, error) {
	return rowsOf(f.data[table]...), nil
}

func mapTable(t *testing.T, run *Run, mapper TableMapper, rows ...domain.Row) {
	t.Helper()
	err := mapper.Map(context.Background(), run, rowsOf(rows...), len(rows))
	require.NoError(t, err)
}
