package helper

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

type spySpanKey struct{}

// SpySpanContext implements h2o.SpanContext for testing.
type SpySpanContext struct {
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

// SetStatus implements the h2o.SpanContext interface.
func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// AddAttribute implements the h2o.SpanContext interface.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}
	c.attributes[key] = value
}

// GetAttributes returns a copy of all attributes added while the span was active.
func (c *SpySpanContext) GetAttributes() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return maps.Clone(c.attributes)
}

// SpySpanRecord represents a recorded span.
type SpySpanRecord struct {
	Name            string
	ParentName      string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	Finished        bool
	SpanContext     *SpySpanContext
}

// TracingCollectorSpy is an h2o.TracingCollector implementation that captures spans for testing.
// The span is stored in the returned context, so spans started from it record their parent.
type TracingCollectorSpy struct {
	spanRecords []SpySpanRecord
	names       map[*SpySpanContext]string
	mu          sync.Mutex
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{
		spanRecords: make([]SpySpanRecord, 0),
		names:       make(map[*SpySpanContext]string),
	}
}

// StartSpan implements the h2o.TracingCollector interface.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, h2o.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parentName := ""
	if parent, ok := ctx.Value(spySpanKey{}).(*SpySpanContext); ok {
		parentName = s.names[parent]
	}

	spanCtx := &SpySpanContext{attributes: make(map[string]string)}
	s.names[spanCtx] = name

	s.spanRecords = append(s.spanRecords, SpySpanRecord{
		Name:            name,
		ParentName:      parentName,
		StartAttributes: maps.Clone(attrs),
		SpanContext:     spanCtx,
	})

	return context.WithValue(ctx, spySpanKey{}, spanCtx), spanCtx
}

// FinishSpan implements the h2o.TracingCollector interface.
func (s *TracingCollectorSpy) FinishSpan(spanCtx h2o.SpanContext, status string, attrs map[string]string) {
	testSpanCtx, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.spanRecords {
		if s.spanRecords[i].SpanContext == testSpanCtx {
			s.spanRecords[i].Status = status
			s.spanRecords[i].EndAttributes = maps.Clone(attrs)
			s.spanRecords[i].Finished = true

			break
		}
	}
}

// GetSpanRecords returns a copy of all captured span records.
func (s *TracingCollectorSpy) GetSpanRecords() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpySpanRecord, len(s.spanRecords))
	copy(records, s.spanRecords)

	return records
}

// GetSpanRecordsForName returns a copy of all span records with the given name.
func (s *TracingCollectorSpy) GetSpanRecordsForName(name string) []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpySpanRecord, 0)
	for _, record := range s.spanRecords {
		if record.Name == name {
			records = append(records, record)
		}
	}

	return records
}

// CountSpanRecordsForName counts how many span records exist for a specific name.
func (s *TracingCollectorSpy) CountSpanRecordsForName(name string) int {
	return len(s.GetSpanRecordsForName(name))
}
