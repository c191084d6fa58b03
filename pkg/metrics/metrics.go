// Package metrics exposes the engine's prometheus counters. A CLI run
// reads them for the final summary; a long-lived host can scrape them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shepherd",
		Name:      "rows_processed_total",
		Help:      "Source rows processed, by table.",
	}, []string{"table"})

	RowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shepherd",
		Name:      "rows_skipped_total",
		Help:      "Source rows skipped for unresolved references or malformed data, by table.",
	}, []string{"table"})

	EntitiesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shepherd",
		Name:      "entities_written_total",
		Help:      "Destination entities flushed, by kind.",
	}, []string{"kind"})

	ChunksFlushed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shepherd",
		Name:      "chunks_flushed_total",
		Help:      "Checkpoint chunk flushes completed.",
	})
)
