package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

const (
	logMsgRunStarted        = "simulation run started"
	logMsgRunCompleted      = "simulation run completed"
	logMsgRunFailed         = "simulation run failed"
	logMsgSpawnFailed       = "spawning atom actors failed"
	logMsgAtomFailed        = "atom actor failed"
	logMsgShortageActivated = "shortage activated"
	logMsgTransition        = "rendezvous transition: "
	logActionPending        = "atom pending"
	logActionReserved       = "molecule reserved"
	logActionPreReleased    = "oxygen pre-released"
	logActionAllQueued      = "all atoms queued"
	logActionAdmitted       = "atom admitted"
	logActionDrained        = "atom drained"
	logActionCompleted      = "molecule completed"
	logAttrError            = "error"
	logAttrAtom             = "atom"
	logAttrMolecule         = "molecule"
	logAttrReservation      = "reservation"
	logAttrReservationSeq   = "reservation_seq"
	logAttrPendingOxygen    = "pending_oxygen"
	logAttrPendingHydrogen  = "pending_hydrogen"
	logAttrOxygen           = "oxygen"
	logAttrHydrogen         = "hydrogen"
	logAttrTotalMolecules   = "total_molecules"
	logAttrMoleculesCreated = "molecules_created"
	logAttrShortages        = "shortages"
	logAttrLines            = "lines"
	logAttrDurationMS       = "duration_ms"
)

const (
	metricRunDuration       = "h2o_run_duration_seconds"
	metricQueueWaitDuration = "h2o_queue_wait_duration_seconds"
	metricBarrierDuration   = "h2o_barrier_duration_seconds"
	metricReservations      = "h2o_reservations_total"
	metricMoleculesCreated  = "h2o_molecules_created_total"
	metricShortages         = "h2o_shortages_total"
	metricAtomErrors        = "h2o_atom_errors_total"
	metricLinesEmitted      = "h2o_lines_emitted"
	spanNameRun             = "h2o.run"
	spanNameAtom            = "h2o.atom"
	spanAttrKind            = "kind"
	spanAttrAtomID          = "atom_id"
	spanAttrOutcome         = "outcome"
	spanAttrMolecule        = "molecule"
	spanAttrOxygen          = "oxygen"
	spanAttrHydrogen        = "hydrogen"
	spanAttrTotalMolecules  = "total_molecules"
	spanAttrErrorType       = "error_type"
	spanAttrDurationMS      = "duration_ms"
	labelKind               = "kind"
	labelOutcome            = "outcome"
	labelStatus             = "status"
	statusSuccess           = "success"
	statusError             = "error"
	outcomeCreated          = "created"
	outcomeShortage         = "shortage"
	errorTypeCanceled       = "canceled"
	errorTypeEmitFailed     = "emit_failed"
	errorTypeSpawnFailed    = "spawn_failed"
)

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func classifyError(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errorTypeCanceled
	}

	return errorTypeEmitFailed
}

// === Logging ===
// The contextual logger is preferred so that records correlate with the active span.

func (s *Simulation) logDebug(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Simulation) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Simulation) logWarn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Simulation) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(msg, allArgs...)
	}
}

func (s *Simulation) logTransition(ctx context.Context, action string, atom h2o.Atom, args ...any) {
	allArgs := []any{logAttrAtom, atom.String()}
	allArgs = append(allArgs, args...)
	s.logDebug(ctx, logMsgTransition+action, allArgs...)
}

// === Metrics ===

func (s *Simulation) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	// Use context-aware method if available
	if contextualCollector, ok := s.metricsCollector.(h2o.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metric, duration, labels)
	}
}

func (s *Simulation) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(h2o.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
	} else {
		s.metricsCollector.IncrementCounter(metric, labels)
	}
}

func (s *Simulation) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(h2o.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
	} else {
		s.metricsCollector.RecordValue(metric, value, labels)
	}
}

// === Tracing Observer Pattern ===
// These observers simplify tracing span management by encapsulating lifecycle complexity.

type runTracingObserver struct {
	s    *Simulation
	span h2o.SpanContext
}

type atomTracingObserver struct {
	s    *Simulation
	span h2o.SpanContext
}

func (s *Simulation) startTraceSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, h2o.SpanContext) {

	if s.tracingCollector != nil {
		return s.tracingCollector.StartSpan(ctx, name, attrs)
	}

	return ctx, nil
}

func (s *Simulation) finishTraceSpan(span h2o.SpanContext, status string, attrs map[string]string) {
	if s.tracingCollector != nil && span != nil {
		s.tracingCollector.FinishSpan(span, status, attrs)
	}
}

func (s *Simulation) startRunTracing(ctx context.Context) (*runTracingObserver, context.Context) {
	newCtx, span := s.startTraceSpan(ctx, spanNameRun, map[string]string{
		spanAttrOxygen:         fmt.Sprintf("%d", s.config.Oxygen),
		spanAttrHydrogen:       fmt.Sprintf("%d", s.config.Hydrogen),
		spanAttrTotalMolecules: fmt.Sprintf("%d", s.config.TotalMolecules()),
	})

	return &runTracingObserver{s: s, span: span}, newCtx
}

func (rto *runTracingObserver) finishSuccess(outcome Outcome, duration time.Duration) {
	if rto.span == nil {
		return
	}

	rto.s.finishTraceSpan(rto.span, statusSuccess, map[string]string{
		spanAttrMolecule:   fmt.Sprintf("%d", outcome.MoleculesCreated),
		spanAttrDurationMS: fmt.Sprintf("%.2f", toMilliseconds(duration)),
	})
}

func (rto *runTracingObserver) finishError(errorType string, duration time.Duration) {
	if rto.span == nil {
		return
	}

	rto.s.finishTraceSpan(rto.span, statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: fmt.Sprintf("%.2f", toMilliseconds(duration)),
	})
}

func (s *Simulation) startAtomTracing(ctx context.Context, atom h2o.Atom) (*atomTracingObserver, context.Context) {
	newCtx, span := s.startTraceSpan(ctx, spanNameAtom, map[string]string{
		spanAttrKind:   atom.Kind.String(),
		spanAttrAtomID: fmt.Sprintf("%d", atom.ID),
	})

	return &atomTracingObserver{s: s, span: span}, newCtx
}

func (ato *atomTracingObserver) addMolecule(molecule h2o.MoleculeUint) {
	if ato.span == nil {
		return
	}

	ato.span.AddAttribute(spanAttrMolecule, fmt.Sprintf("%d", molecule))
}

func (ato *atomTracingObserver) finishSuccess(outcome string) {
	if ato.span == nil {
		return
	}

	ato.s.finishTraceSpan(ato.span, statusSuccess, map[string]string{spanAttrOutcome: outcome})
}

func (ato *atomTracingObserver) finishError(errorType string) {
	if ato.span == nil {
		return
	}

	ato.s.finishTraceSpan(ato.span, statusError, map[string]string{spanAttrErrorType: errorType})
}
