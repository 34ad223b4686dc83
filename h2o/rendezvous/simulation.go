package rendezvous

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// Simulation runs one oxygen/hydrogen rendezvous with one goroutine per atom.
type Simulation struct {
	config           Config
	sequencer        Sequencer
	delayer          Delayer
	logger           h2o.Logger
	contextualLogger h2o.ContextualLogger
	metricsCollector h2o.MetricsCollector
	tracingCollector h2o.TracingCollector
}

// NewSimulation creates a Simulation which emits all lines through the given Sequencer.
func NewSimulation(config Config, sequencer Sequencer, options ...Option) (*Simulation, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if sequencer == nil {
		return nil, h2o.ErrNilSequencer
	}

	s := &Simulation{
		config:    config,
		sequencer: sequencer,
		delayer:   NewRandomDelayer(),
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Config returns the validated configuration of the Simulation.
func (s *Simulation) Config() Config {
	return s.config
}

// Run spawns all oxygen atoms, then all hydrogen atoms, and waits until every spawned atom has terminated.
//
// If ctx is done before all atoms are spawned, spawning stops and the error wraps h2o.ErrSpawnFailure.
// The first failing atom (e.g. because emitting a line failed) cancels all others and its error is returned.
// The Outcome is valid in both cases and reflects what happened until then.
func (s *Simulation) Run(ctx context.Context) (Outcome, error) {
	start := time.Now()
	tracing, ctx := s.startRunTracing(ctx)

	s.logInfo(
		ctx,
		logMsgRunStarted,
		logAttrOxygen, s.config.Oxygen,
		logAttrHydrogen, s.config.Hydrogen,
		logAttrTotalMolecules, s.config.TotalMolecules(),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := newSharedState(s.config, s.sequencer)
	group, groupCtx := errgroup.WithContext(runCtx)

	spawnErr := s.spawn(groupCtx, group, state)
	if spawnErr != nil {
		cancel()
	}

	waitErr := group.Wait()
	outcome := state.outcome()
	duration := time.Since(start)

	s.recordDuration(ctx, metricRunDuration, duration, map[string]string{labelStatus: runStatus(spawnErr, waitErr)})
	s.recordValue(ctx, metricLinesEmitted, float64(outcome.Lines), map[string]string{labelStatus: runStatus(spawnErr, waitErr)})

	switch {
	case spawnErr != nil:
		err := errors.Join(h2o.ErrSpawnFailure, spawnErr)
		s.logError(ctx, logMsgSpawnFailed, err, logAttrLines, outcome.Lines)
		tracing.finishError(errorTypeSpawnFailed, duration)

		return outcome, err

	case waitErr != nil:
		s.logError(ctx, logMsgRunFailed, waitErr, logAttrLines, outcome.Lines)
		tracing.finishError(classifyError(waitErr), duration)

		return outcome, waitErr
	}

	s.logInfo(
		ctx,
		logMsgRunCompleted,
		logAttrMoleculesCreated, outcome.MoleculesCreated,
		logAttrShortages, outcome.Shortages,
		logAttrLines, outcome.Lines,
		logAttrDurationMS, toMilliseconds(duration),
	)
	tracing.finishSuccess(outcome, duration)

	return outcome, nil
}

// spawn starts one goroutine per atom, oxygen first, and stops as soon as ctx is done.
func (s *Simulation) spawn(ctx context.Context, group *errgroup.Group, state *sharedState) error {
	spawnKind := func(kind h2o.Kind, count uint) error {
		for id := h2o.AtomIDUint(1); id <= count; id++ {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}

			atom := h2o.BuildAtom(kind, id)
			group.Go(func() error {
				return s.runAtom(ctx, state, atom)
			})
		}

		return nil
	}

	if err := spawnKind(h2o.Oxygen, s.config.Oxygen); err != nil {
		return err
	}

	return spawnKind(h2o.Hydrogen, s.config.Hydrogen)
}

func runStatus(spawnErr, waitErr error) string {
	if spawnErr != nil || waitErr != nil {
		return statusError
	}

	return statusSuccess
}
