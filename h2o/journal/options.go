package journal

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// Option defines a functional option for configuring a Journal.
type Option func(*Journal) error

// WithLogger sets the logger for the Journal.
// Debug level: every written line, Warn level: recording failures, Error level: write failures.
func WithLogger(logger h2o.Logger) Option {
	return func(j *Journal) error {
		j.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Journal.
func WithMetrics(collector h2o.MetricsCollector) Option {
	return func(j *Journal) error {
		j.metricsCollector = collector
		return nil
	}
}

// WithRunID sets the id used as CorrelationID of all recorded events.
func WithRunID(runID uuid.UUID) Option {
	return func(j *Journal) error {
		if runID == uuid.Nil {
			return h2o.ErrEmptyRunID
		}

		j.runID = runID

		return nil
	}
}

// WithoutRecording only writes lines, Query will always return an empty result.
func WithoutRecording() Option {
	return func(j *Journal) error {
		j.recording = false
		return nil
	}
}
