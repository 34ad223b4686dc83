package rendezvous

import (
	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// Option defines a functional option for configuring a Simulation.
type Option func(*Simulation) error

// WithLogger sets the logger for the Simulation.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: Protocol transitions of single atoms (pairing, admission, drain)
// Info level: Run start and completion with molecule and line counts
// Warn level: Shortage activation
// Error level: Actor failures and spawn failures.
func WithLogger(logger h2o.Logger) Option {
	return func(s *Simulation) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Simulation.
// When set, it is preferred over the plain logger, so that log records carry the trace of the atom span.
func WithContextualLogger(logger h2o.ContextualLogger) Option {
	return func(s *Simulation) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Simulation.
// The collector will receive queue wait and barrier durations, reservation, molecule and shortage counts.
func WithMetrics(collector h2o.MetricsCollector) Option {
	return func(s *Simulation) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Simulation.
// Every run gets one span and every atom gets a child span covering its whole lifecycle.
func WithTracing(collector h2o.TracingCollector) Option {
	return func(s *Simulation) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithDelayer replaces the random think time source.
func WithDelayer(delayer Delayer) Option {
	return func(s *Simulation) error {
		if delayer == nil {
			return h2o.ErrNilDelayer
		}

		s.delayer = delayer

		return nil
	}
}
