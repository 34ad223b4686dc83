package rendezvous

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// Sequencer assigns the global line number to an event and emits it.
// Implementations must serialize Append and must not advance the line number when emitting fails.
type Sequencer interface {
	Append(ctx context.Context, event h2o.Event) (h2o.LineNumberUint, error)
}

// Outcome summarizes a finished (or aborted) run.
type Outcome struct {
	TotalMolecules   uint
	MoleculesCreated uint
	Shortages        uint
	Lines            uint
}

// sharedState is owned by one Simulation.Run. The mutex guards every field below it,
// the channels are only closed while holding it.
type sharedState struct {
	sequencer Sequencer
	barrier   *Barrier
	lines     atomic.Uint64
	shortages atomic.Uint64

	mu                sync.Mutex
	pendingOxygen     uint
	pendingHydrogen   uint
	queueArrivals     uint
	totalAtoms        uint
	totalMolecules    uint
	preReleasesOxygen bool
	creatingSeq       h2o.MoleculeUint
	createdSeq        h2o.MoleculeUint
	creatingTally     uint
	createdTally      uint
	shortageActive    bool
	reservations      uint
	lastTurn          chan struct{}

	oxygenTokens   chan *reservation
	hydrogenTokens chan *reservation
	shortage       chan struct{}
	allQueued      chan struct{}
}

func newSharedState(config Config, sequencer Sequencer) *sharedState {
	barrier, _ := NewBarrier(moleculeParties)

	firstTurn := make(chan struct{})
	close(firstTurn)

	s := &sharedState{
		sequencer:         sequencer,
		barrier:           barrier,
		totalAtoms:        config.TotalAtoms(),
		totalMolecules:    config.TotalMolecules(),
		preReleasesOxygen: config.preReleasesOxygen(),
		creatingSeq:       1,
		createdSeq:        1,
		lastTurn:          firstTurn,
		oxygenTokens:      make(chan *reservation, config.Oxygen),
		hydrogenTokens:    make(chan *reservation, config.Hydrogen),
		shortage:          make(chan struct{}),
		allQueued:         make(chan struct{}),
	}

	if s.createdSeq > s.totalMolecules {
		s.activateShortage()
	}

	return s
}

// emit appends one event through the sequencer and counts the emitted line.
func (s *sharedState) emit(ctx context.Context, event h2o.Event) error {
	if _, err := s.sequencer.Append(ctx, event); err != nil {
		return err
	}

	s.lines.Add(1)

	return nil
}

// enqueue emits the "going to queue" line of the atom and opens the drain
// once the last atom has done so.
func (s *sharedState) enqueue(ctx context.Context, atom h2o.Atom) (allQueued bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.emit(ctx, h2o.BuildAtomQueued(atom, time.Now())); err != nil {
		return false, err
	}

	s.queueArrivals++
	if s.queueArrivals == s.totalAtoms {
		close(s.allQueued)

		return true, nil
	}

	return false, nil
}

// emitCreating emits the "creating molecule" line while the atom is inside the barrier.
func (s *sharedState) emitCreating(ctx context.Context, atom h2o.Atom, r *reservation) (h2o.MoleculeUint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	molecule := s.creatingSeq
	if err := s.emit(ctx, h2o.BuildMoleculeCreating(atom, molecule, r.id, time.Now())); err != nil {
		return 0, err
	}

	s.creatingTally++
	if s.creatingTally == moleculeParties {
		s.creatingTally = 0
		s.creatingSeq++
	}

	return molecule, nil
}

// emitCreated emits the "molecule created" line after the atom has left the barrier.
// The third line of a cohort hands the barrier to the next reservation and, after the
// last molecule, activates the shortage.
func (s *sharedState) emitCreated(
	ctx context.Context,
	atom h2o.Atom,
	r *reservation,
) (molecule h2o.MoleculeUint, completed bool, shortageActivated bool, err error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	molecule = s.createdSeq
	if err = s.emit(ctx, h2o.BuildMoleculeCreated(atom, molecule, r.id, time.Now())); err != nil {
		return 0, false, false, err
	}

	s.createdTally++
	if s.createdTally < moleculeParties {
		return molecule, false, false, nil
	}

	s.createdTally = 0
	s.createdSeq++
	close(r.done)

	if s.createdSeq > s.totalMolecules {
		s.activateShortage()

		return molecule, true, true, nil
	}

	return molecule, true, false, nil
}

// activateShortage must be called with the mutex held (or before the state is shared).
func (s *sharedState) activateShortage() {
	if s.shortageActive {
		return
	}

	s.shortageActive = true
	close(s.shortage)
}

// unpairableAtoms is the number of atoms that will end in the drain.
func (s *sharedState) unpairableAtoms() uint {
	return s.totalAtoms - moleculeParties*s.totalMolecules
}

func (s *sharedState) outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Outcome{
		TotalMolecules:   s.totalMolecules,
		MoleculesCreated: s.createdSeq - 1,
		Shortages:        uint(s.shortages.Load()),
		Lines:            uint(s.lines.Load()),
	}
}
