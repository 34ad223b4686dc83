package rendezvous

import (
	"context"
	"time"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// runAtom is the whole life of one actor. It returns nil once the atom has emitted its terminal line.
func (s *Simulation) runAtom(ctx context.Context, state *sharedState, atom h2o.Atom) error {
	tracing, ctx := s.startAtomTracing(ctx, atom)

	outcome, err := s.atomLifecycle(ctx, state, atom, tracing)
	if err != nil {
		errorType := classifyError(err)
		s.logError(ctx, logMsgAtomFailed, err, logAttrAtom, atom.String())
		s.incrementCounter(ctx, metricAtomErrors, map[string]string{
			labelKind:   atom.Kind.String(),
			labelStatus: errorType,
		})
		tracing.finishError(errorType)

		return err
	}

	tracing.finishSuccess(outcome)

	return nil
}

func (s *Simulation) atomLifecycle(
	ctx context.Context,
	state *sharedState,
	atom h2o.Atom,
	tracing *atomTracingObserver,
) (string, error) {

	if err := state.emit(ctx, h2o.BuildAtomStarted(atom, time.Now())); err != nil {
		return "", err
	}

	s.pair(ctx, state, atom)

	if err := s.delayer.Delay(ctx, s.config.MaxQueueWait); err != nil {
		return "", err
	}

	allQueued, err := state.enqueue(ctx, atom)
	if err != nil {
		return "", err
	}

	if allQueued {
		s.logTransition(ctx, logActionAllQueued, atom)
	}

	queuedAt := time.Now()

	r, err := state.awaitAdmission(ctx, atom.Kind)
	if err != nil {
		return "", err
	}

	if r == nil {
		if err = state.drain(ctx, atom); err != nil {
			return "", err
		}

		s.recordQueueWait(ctx, atom, outcomeShortage, time.Since(queuedAt))
		s.incrementCounter(ctx, metricShortages, map[string]string{labelKind: atom.Kind.String()})
		s.logTransition(ctx, logActionDrained, atom)

		return outcomeShortage, nil
	}

	s.recordQueueWait(ctx, atom, outcomeCreated, time.Since(queuedAt))
	s.logTransition(ctx, logActionAdmitted, atom, logAttrReservation, r.id.String(), logAttrReservationSeq, r.seq)

	if err = s.createMolecule(ctx, state, atom, r, tracing); err != nil {
		return "", err
	}

	return outcomeCreated, nil
}

// pair runs the pairing transaction, unless oxygen atoms are pre-released because there is not enough hydrogen.
func (s *Simulation) pair(ctx context.Context, state *sharedState, atom h2o.Atom) {
	if atom.Kind == h2o.Oxygen && state.preReleasesOxygen {
		s.logTransition(ctx, logActionPreReleased, atom)
		return
	}

	result := state.tryReserveMolecule(atom.Kind)
	if result.reservation == nil {
		s.logTransition(
			ctx,
			logActionPending,
			atom,
			logAttrPendingOxygen, result.pendingOxygen,
			logAttrPendingHydrogen, result.pendingHydrogen,
		)

		return
	}

	s.incrementCounter(ctx, metricReservations, map[string]string{labelKind: atom.Kind.String()})
	s.logTransition(
		ctx,
		logActionReserved,
		atom,
		logAttrReservation, result.reservation.id.String(),
		logAttrReservationSeq, result.reservation.seq,
		logAttrPendingOxygen, result.pendingOxygen,
		logAttrPendingHydrogen, result.pendingHydrogen,
	)
}

// createMolecule passes the barrier together with the other two token holders of the reservation.
func (s *Simulation) createMolecule(
	ctx context.Context,
	state *sharedState,
	atom h2o.Atom,
	r *reservation,
	tracing *atomTracingObserver,
) error {

	if err := state.awaitTurn(ctx, r); err != nil {
		return err
	}

	enteredAt := time.Now()

	if err := state.barrier.Enter(ctx); err != nil {
		return err
	}

	molecule, err := state.emitCreating(ctx, atom, r)
	if err != nil {
		return err
	}

	tracing.addMolecule(molecule)

	if atom.Kind == h2o.Oxygen {
		if err = s.delayer.Delay(ctx, s.config.MaxCreateWait); err != nil {
			return err
		}
	}

	if err = state.barrier.Exit(ctx); err != nil {
		return err
	}

	s.recordDuration(ctx, metricBarrierDuration, time.Since(enteredAt), map[string]string{labelKind: atom.Kind.String()})

	molecule, completed, shortageActivated, err := state.emitCreated(ctx, atom, r)
	if err != nil {
		return err
	}

	if completed {
		s.incrementCounter(ctx, metricMoleculesCreated, map[string]string{labelStatus: statusSuccess})
		s.logTransition(ctx, logActionCompleted, atom, logAttrMolecule, molecule, logAttrReservation, r.id.String())
	}

	if shortageActivated && state.unpairableAtoms() > 0 {
		s.logWarn(ctx, logMsgShortageActivated, logAttrMoleculesCreated, molecule, logAttrShortages, state.unpairableAtoms())
	}

	return nil
}

func (s *Simulation) recordQueueWait(ctx context.Context, atom h2o.Atom, outcome string, duration time.Duration) {
	s.recordDuration(ctx, metricQueueWaitDuration, duration, map[string]string{
		labelKind:    atom.Kind.String(),
		labelOutcome: outcome,
	})
}
