package journal

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

const (
	logMsgLineWritten       = "line written"
	logMsgWriteLineFailed   = "failed to write output line"
	logMsgRecordEventFailed = "failed to record event"
	logAttrError            = "error"
	logAttrLine             = "line"
	logAttrEventType        = "event_type"
	logAttrDurationMS       = "duration_ms"
	metricAppendDuration    = "h2o_journal_append_duration_seconds"
	metricWriteErrors       = "h2o_journal_write_errors_total"
	labelEventType          = "event_type"
	labelStatus             = "status"
	statusSuccess           = "success"
	statusError             = "error"
)

// Journal is the single sink for all output lines of a run.
//
// Append numbers lines gap-free starting at 1, writes them to the underlying io.Writer and
// records them as h2o.StorableEvent(s), so that they can be queried with an h2o.Filter afterward.
type Journal struct {
	mu               sync.Mutex
	writer           io.Writer
	lines            h2o.LineNumberUint
	recorded         h2o.StorableEvents
	recording        bool
	runID            uuid.UUID
	logger           h2o.Logger
	metricsCollector h2o.MetricsCollector
}

// NewJournal creates a Journal writing to w. Each Journal gets a fresh run id unless WithRunID is supplied.
func NewJournal(w io.Writer, options ...Option) (*Journal, error) {
	if w == nil {
		return nil, h2o.ErrNilWriter
	}

	j := &Journal{
		writer:    w,
		recording: true,
		runID:     uuid.New(),
	}

	for _, option := range options {
		if err := option(j); err != nil {
			return nil, err
		}
	}

	return j, nil
}

// Append formats the event as the next line, writes it and advances the line counter in one step.
//
// When writing fails the counter is not advanced, so the next successful Append reuses the line number.
func (j *Journal) Append(ctx context.Context, event h2o.Event) (h2o.LineNumberUint, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	start := time.Now()
	line := j.lines + 1

	if _, err := io.WriteString(j.writer, event.Line(line)+"\n"); err != nil {
		if j.logger != nil {
			j.logger.Error(logMsgWriteLineFailed, logAttrError, err.Error(), logAttrLine, line, logAttrEventType, event.EventType)
		}

		j.incrementCounter(metricWriteErrors, map[string]string{labelEventType: event.EventType})
		j.recordDuration(metricAppendDuration, time.Since(start), event.EventType, statusError)

		return 0, errors.Join(h2o.ErrWritingLineFailed, err)
	}

	j.lines = line
	j.record(event, line)

	duration := time.Since(start)
	j.recordDuration(metricAppendDuration, duration, event.EventType, statusSuccess)

	if j.logger != nil {
		j.logger.Debug(logMsgLineWritten, logAttrLine, line, logAttrEventType, event.EventType, logAttrDurationMS, duration.Seconds()*1000)
	}

	return line, nil
}

// record keeps the written line as a StorableEvent. The line stays emitted even if mapping fails.
func (j *Journal) record(event h2o.Event, line h2o.LineNumberUint) {
	if !j.recording {
		return
	}

	metadata := h2o.BuildEventMetadata(uuid.New(), event.Reservation, j.runID)

	storableEvent, err := h2o.StorableEventFrom(event, line, metadata)
	if err != nil {
		if j.logger != nil {
			j.logger.Warn(logMsgRecordEventFailed, logAttrError, err.Error(), logAttrLine, line)
		}

		return
	}

	j.recorded = append(j.recorded, storableEvent)
}

// Query returns all recorded events matching the filter in line order.
func (j *Journal) Query(filter h2o.Filter) h2o.StorableEvents {
	j.mu.Lock()
	defer j.mu.Unlock()

	result := make(h2o.StorableEvents, 0)
	for _, storableEvent := range j.recorded {
		if filter.Matches(storableEvent) {
			result = append(result, storableEvent)
		}
	}

	return result
}

// Lines returns the number of lines written so far.
func (j *Journal) Lines() h2o.LineNumberUint {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.lines
}

// RunID returns the CorrelationID shared by all recorded events.
func (j *Journal) RunID() uuid.UUID {
	return j.runID
}

func (j *Journal) recordDuration(metric string, duration time.Duration, eventType, status string) {
	if j.metricsCollector != nil {
		j.metricsCollector.RecordDuration(metric, duration, map[string]string{
			labelEventType: eventType,
			labelStatus:    status,
		})
	}
}

func (j *Journal) incrementCounter(metric string, labels map[string]string) {
	if j.metricsCollector != nil {
		j.metricsCollector.IncrementCounter(metric, labels)
	}
}
