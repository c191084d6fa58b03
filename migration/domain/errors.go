package domain

import "github.com/go-faster/errors"

// Error taxonomy for a run. Per-row trouble is skipped and logged;
// only loader and persistence failures abort the run.
var (
	// ErrMissingDependency marks a required lookup table or row that is
	// absent. Fatal only when it starves the run of a minimum viable
	// entity set (zero importable people); otherwise downgraded to a skip.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrUnresolvedReference marks a row pointing at a person or group the
	// resolver cannot find. The row is skipped, never retried.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrMalformedValue marks an unparseable date/enum/number. The derived
	// field is left zero; the row is still processed when it has enough
	// valid data to be meaningful.
	ErrMalformedValue = errors.New("malformed value")

	// ErrPersistenceFailure marks a failed chunk flush. Fatal; chunks
	// already flushed remain committed.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrNotFound is returned by store lookups that match nothing.
	ErrNotFound = errors.New("not found")
)
