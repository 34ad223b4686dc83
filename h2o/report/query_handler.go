package report

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// ErrNilEventSource is returned when the QueryHandler is created without an EventSource.
var ErrNilEventSource = errors.New("nil event source supplied")

const (
	logMsgQueryCompleted = "run summary query completed"
	logMsgQueryFailed    = "run summary query failed"
	logAttrQueryType     = "query_type"
	logAttrEventCount    = "event_count"
	logAttrError         = "error"
	logAttrDurationMS    = "duration_ms"
	metricQueryDuration  = "h2o_report_query_duration_seconds"
	labelQueryType       = "query_type"
	labelStatus          = "status"
	statusSuccess        = "success"
	statusError          = "error"
)

// EventSource defines the interface needed by the QueryHandler, implemented by journal.Journal.
type EventSource interface {
	Query(filter h2o.Filter) h2o.StorableEvents
}

// QueryHandler orchestrates the query processing workflow: Query -> Unmarshal -> Project.
type QueryHandler struct {
	eventSource      EventSource
	logger           h2o.Logger
	metricsCollector h2o.MetricsCollector
}

// NewQueryHandler creates a new QueryHandler with the provided EventSource dependency and options.
func NewQueryHandler(eventSource EventSource, opts ...Option) (QueryHandler, error) {
	if eventSource == nil {
		return QueryHandler{}, ErrNilEventSource
	}

	h := QueryHandler{
		eventSource: eventSource,
	}

	for _, opt := range opts {
		if err := opt(&h); err != nil {
			return QueryHandler{}, err
		}
	}

	return h, nil
}

// Handle queries the recorded events, maps them back to h2o.Event(s) and projects the RunSummary.
func (h QueryHandler) Handle(query Query) (RunSummary, error) {
	start := time.Now()

	storableEvents := h.eventSource.Query(BuildEventFilter(query))

	history, err := h2o.EventsFrom(storableEvents)
	if err != nil {
		h.recordQuery(statusError, time.Since(start))
		if h.logger != nil {
			h.logger.Error(logMsgQueryFailed, logAttrQueryType, query.QueryType(), logAttrError, err.Error())
		}

		return RunSummary{}, err
	}

	summary := ProjectRunSummary(history, query)
	if len(storableEvents) > 0 {
		summary.LastLine = storableEvents[len(storableEvents)-1].SequenceNumber
	}

	duration := time.Since(start)
	h.recordQuery(statusSuccess, duration)

	if h.logger != nil {
		h.logger.Info(
			logMsgQueryCompleted,
			logAttrQueryType, query.QueryType(),
			logAttrEventCount, len(storableEvents),
			logAttrDurationMS, duration.Seconds()*1000,
		)
	}

	return summary, nil
}

func (h QueryHandler) recordQuery(status string, duration time.Duration) {
	if h.metricsCollector == nil {
		return
	}

	h.metricsCollector.RecordDuration(metricQueryDuration, duration, map[string]string{
		labelQueryType: queryType,
		labelStatus:    status,
	})
}

/*** Query Handler Options ***/

// Option defines a functional option for configuring QueryHandler.
type Option func(*QueryHandler) error

// WithLogging sets the logger for the QueryHandler.
func WithLogging(logger h2o.Logger) Option {
	return func(h *QueryHandler) error {
		h.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the QueryHandler.
func WithMetrics(collector h2o.MetricsCollector) Option {
	return func(h *QueryHandler) error {
		h.metricsCollector = collector
		return nil
	}
}
