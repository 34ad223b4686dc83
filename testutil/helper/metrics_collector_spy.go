package helper

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MetricsCollectorSpy captures metrics calls for testing.
// It implements h2o.ContextualMetricsCollector, so it also tells whether the context-aware methods were used.
type MetricsCollectorSpy struct {
	durationRecords []SpyDurationRecord
	counterRecords  []SpyCounterRecord
	valueRecords    []SpyValueRecord
	contextualCalls int
	mu              sync.Mutex
	contextual      bool
}

// SpyDurationRecord represents a recorded duration metric call.
type SpyDurationRecord struct {
	Metric   string
	Duration time.Duration
	Labels   map[string]string
}

// SpyCounterRecord represents a recorded counter increment call.
type SpyCounterRecord struct {
	Metric string
	Labels map[string]string
}

// SpyValueRecord represents a recorded value metric call.
type SpyValueRecord struct {
	Metric string
	Value  float64
	Labels map[string]string
}

// NewMetricsCollectorSpy creates a new MetricsCollectorSpy.
// With contextual set to true, the spy counts calls of the context-aware methods.
func NewMetricsCollectorSpy(contextual bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{
		durationRecords: make([]SpyDurationRecord, 0),
		counterRecords:  make([]SpyCounterRecord, 0),
		valueRecords:    make([]SpyValueRecord, 0),
		contextual:      contextual,
	}
}

// RecordDuration implements the h2o.MetricsCollector interface.
func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durationRecords = append(s.durationRecords, SpyDurationRecord{
		Metric:   metric,
		Duration: duration,
		Labels:   maps.Clone(labels),
	})
}

// IncrementCounter implements the h2o.MetricsCollector interface.
func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counterRecords = append(s.counterRecords, SpyCounterRecord{
		Metric: metric,
		Labels: maps.Clone(labels),
	})
}

// RecordValue implements the h2o.MetricsCollector interface.
func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.valueRecords = append(s.valueRecords, SpyValueRecord{
		Metric: metric,
		Value:  value,
		Labels: maps.Clone(labels),
	})
}

// RecordDurationContext implements the h2o.ContextualMetricsCollector interface.
func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.countContextualCall()
	s.RecordDuration(metric, duration, labels)
}

// IncrementCounterContext implements the h2o.ContextualMetricsCollector interface.
func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.countContextualCall()
	s.IncrementCounter(metric, labels)
}

// RecordValueContext implements the h2o.ContextualMetricsCollector interface.
func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.countContextualCall()
	s.RecordValue(metric, value, labels)
}

func (s *MetricsCollectorSpy) countContextualCall() {
	if !s.contextual {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.contextualCalls++
}

// GetContextualCallCount returns how often a context-aware method was called.
func (s *MetricsCollectorSpy) GetContextualCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.contextualCalls
}

// HasDurationRecord checks if there's a duration record with the specified metric name.
func (s *MetricsCollectorSpy) HasDurationRecord(metric string) bool {
	return s.CountDurationRecordsForMetric(metric) > 0
}

// HasCounterRecord checks if there's a counter record with the specified metric name.
func (s *MetricsCollectorSpy) HasCounterRecord(metric string) bool {
	return s.CountCounterRecordsForMetric(metric) > 0
}

// HasValueRecord checks if there's a value record with the specified metric name.
func (s *MetricsCollectorSpy) HasValueRecord(metric string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.valueRecords {
		if record.Metric == metric {
			return true
		}
	}

	return false
}

// CountDurationRecordsForMetric counts how many duration records exist for a specific metric.
func (s *MetricsCollectorSpy) CountDurationRecordsForMetric(metric string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.durationRecords {
		if record.Metric == metric {
			count++
		}
	}

	return count
}

// CountCounterRecordsForMetric counts how many counter records exist for a specific metric.
func (s *MetricsCollectorSpy) CountCounterRecordsForMetric(metric string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.counterRecords {
		if record.Metric == metric {
			count++
		}
	}

	return count
}

// CountCounterRecordsWithLabel counts the counter records of a metric carrying the given label value.
func (s *MetricsCollectorSpy) CountCounterRecordsWithLabel(metric, key, value string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.counterRecords {
		if record.Metric == metric && record.Labels[key] == value {
			count++
		}
	}

	return count
}

// GetValueRecords returns a copy of all captured value records.
func (s *MetricsCollectorSpy) GetValueRecords() []SpyValueRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyValueRecord, len(s.valueRecords))
	copy(records, s.valueRecords)

	return records
}
