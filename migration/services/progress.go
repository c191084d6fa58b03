// Package services holds the migration engine proper: entity and
// occurrence resolvers, the hierarchy synthesizer, the checkpointing
// batch writer and the orchestrator that drives per-table mappers.
package services

import (
	"github.com/sirupsen/logrus"

	"github.com/parishsource/shepherd/pkg/eventbus"
)

// ProgressSink receives user-facing progress. Implementations must never
// fail; reporting is best-effort and cannot abort a run.
type ProgressSink interface {
	// Report publishes measured progress for the current table.
	Report(percent int, message string)
	// Tick signals unmeasured partial progress, once per chunk flush.
	Tick()
}

// ProgressEvent is published on the event bus on every measured report,
// so the CLI (or anything else subscribed) can render it.
type ProgressEvent struct {
	Percent int
	Message string
}

// TickEvent is published once per chunk flush.
type TickEvent struct{}

type logSink struct {
	log       *logrus.Logger
	publisher eventbus.EventBus
}

// NewProgressSink reports through logrus and fans events out on the bus.
// The publisher may be nil when nothing subscribes.
func NewProgressSink(log *logrus.Logger, publisher eventbus.EventBus) ProgressSink {
	return &logSink{log: log, publisher: publisher}
}

func (s *logSink) Report(percent int, message string) {
	s.log.WithField("percent", percent).Info(message)
	if s.publisher != nil {
		s.publisher.Publish(ProgressEvent{Percent: percent, Message: message})
	}
}

func (s *logSink) Tick() {
	s.log.Debug("chunk flushed")
	if s.publisher != nil {
		s.publisher.Publish(TickEvent{})
	}
}

// NopSink discards progress; tests use it.
type NopSink struct{}

func (NopSink) Report(int, string) {}
func (NopSink) Tick()              {}
