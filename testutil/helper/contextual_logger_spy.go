package helper

import (
	"context"
	"sync"
)

// ContextualLoggerSpy is an h2o.ContextualLogger implementation that captures contextual logging calls.
// It keeps the context of each call, so tests can check that records carry the active span.
type ContextualLoggerSpy struct {
	records []SpyContextualLogRecord
	mu      sync.Mutex
}

// SpyContextualLogRecord represents a recorded contextual log call.
type SpyContextualLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// NewContextualLoggerSpy creates a new ContextualLoggerSpy.
func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{records: make([]SpyContextualLogRecord, 0)}
}

// DebugContext implements the h2o.ContextualLogger interface.
func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

// InfoContext implements the h2o.ContextualLogger interface.
func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

// WarnContext implements the h2o.ContextualLogger interface.
func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

// ErrorContext implements the h2o.ContextualLogger interface.
func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

func (s *ContextualLoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyContextualLogRecord{
		Level:   level,
		Message: msg,
		Args:    args,
		Context: ctx,
	})
}

// GetRecordsForLevel returns a copy of all records of the given level ("debug", "info", "warn", "error").
func (s *ContextualLoggerSpy) GetRecordsForLevel(level string) []SpyContextualLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyContextualLogRecord, 0)
	for _, record := range s.records {
		if record.Level == level {
			records = append(records, record)
		}
	}

	return records
}

// HasRecord checks if there's a record with the given level and message.
func (s *ContextualLoggerSpy) HasRecord(level, msg string) bool {
	for _, record := range s.GetRecordsForLevel(level) {
		if record.Message == msg {
			return true
		}
	}

	return false
}
