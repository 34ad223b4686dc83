package rendezvous

import (
	"context"
	"time"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// awaitAdmission blocks until the atom either receives a token of a reservation or
// the shortage is active. A nil reservation without error means the atom can never be paired.
func (s *sharedState) awaitAdmission(ctx context.Context, kind h2o.Kind) (*reservation, error) {
	tokens := s.hydrogenTokens
	if kind == h2o.Oxygen {
		tokens = s.oxygenTokens
	}

	select {
	case r := <-tokens:
		return r, nil
	case <-s.shortage:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// awaitTurn blocks until the previous cohort has left the barrier.
func (s *sharedState) awaitTurn(ctx context.Context, r *reservation) error {
	select {
	case <-r.turn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain lets an unpairable atom wait until every atom has queued and then emits its shortage line.
func (s *sharedState) drain(ctx context.Context, atom h2o.Atom) error {
	select {
	case <-s.allQueued:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := s.emit(ctx, h2o.BuildShortage(atom, time.Now())); err != nil {
		return err
	}

	s.shortages.Add(1)

	return nil
}
