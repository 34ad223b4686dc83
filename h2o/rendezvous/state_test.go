package rendezvous

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

var errSinkClosed = errors.New("sink closed")

// recordingSequencer keeps every appended event and fails once failing is set.
type recordingSequencer struct {
	mu      sync.Mutex
	events  h2o.Events
	failing bool
}

func (s *recordingSequencer) Append(_ context.Context, event h2o.Event) (h2o.LineNumberUint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return 0, errSinkClosed
	}

	s.events = append(s.events, event)

	return h2o.LineNumberUint(len(s.events)), nil
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func Test_TryReserveMolecule_OxygenArrivesFirst(t *testing.T) {
	state := newSharedState(Config{Oxygen: 1, Hydrogen: 2}, &recordingSequencer{})

	result := state.tryReserveMolecule(h2o.Oxygen)
	assert.Nil(t, result.reservation)
	assert.Equal(t, uint(1), result.pendingOxygen)
	assert.Equal(t, uint(0), result.pendingHydrogen)

	result = state.tryReserveMolecule(h2o.Hydrogen)
	assert.Nil(t, result.reservation)
	assert.Equal(t, uint(1), result.pendingHydrogen)

	result = state.tryReserveMolecule(h2o.Hydrogen)
	require.NotNil(t, result.reservation)
	assert.Equal(t, uint(0), result.pendingOxygen)
	assert.Equal(t, uint(0), result.pendingHydrogen)
	assert.Equal(t, uint(1), result.reservation.seq)
	assert.True(t, isClosed(result.reservation.turn), "the first reservation has the turn right away")

	assert.Len(t, state.oxygenTokens, 1)
	assert.Len(t, state.hydrogenTokens, 2)
}

func Test_TryReserveMolecule_HydrogenArrivesFirst(t *testing.T) {
	state := newSharedState(Config{Oxygen: 1, Hydrogen: 2}, &recordingSequencer{})

	assert.Nil(t, state.tryReserveMolecule(h2o.Hydrogen).reservation)

	result := state.tryReserveMolecule(h2o.Hydrogen)
	assert.Nil(t, result.reservation)
	assert.Equal(t, uint(2), result.pendingHydrogen)

	result = state.tryReserveMolecule(h2o.Oxygen)
	require.NotNil(t, result.reservation)
	assert.Equal(t, uint(0), result.pendingOxygen)
	assert.Equal(t, uint(0), result.pendingHydrogen)

	oxygenToken := <-state.oxygenTokens
	hydrogenToken1 := <-state.hydrogenTokens
	hydrogenToken2 := <-state.hydrogenTokens

	assert.Same(t, result.reservation, oxygenToken)
	assert.Same(t, result.reservation, hydrogenToken1)
	assert.Same(t, result.reservation, hydrogenToken2)
}

func Test_TryReserveMolecule_ChainsTurns(t *testing.T) {
	state := newSharedState(Config{Oxygen: 2, Hydrogen: 4}, &recordingSequencer{})

	var reservations []*reservation
	for _, kind := range []h2o.Kind{h2o.Hydrogen, h2o.Oxygen, h2o.Hydrogen, h2o.Hydrogen, h2o.Hydrogen, h2o.Oxygen} {
		if r := state.tryReserveMolecule(kind).reservation; r != nil {
			reservations = append(reservations, r)
		}
	}

	require.Len(t, reservations, 2)
	assert.Equal(t, uint(2), reservations[1].seq)
	assert.NotEqual(t, reservations[0].id, reservations[1].id)
	assert.True(t, reservations[1].turn == reservations[0].done)
	assert.False(t, isClosed(reservations[1].turn))
}

func Test_TryReserveMolecule_NeverMatchesDuringShortage(t *testing.T) {
	state := newSharedState(Config{Oxygen: 1, Hydrogen: 2}, &recordingSequencer{})

	state.mu.Lock()
	state.activateShortage()
	state.activateShortage() // closing twice must not panic
	state.mu.Unlock()

	for _, kind := range []h2o.Kind{h2o.Oxygen, h2o.Hydrogen, h2o.Hydrogen} {
		assert.Nil(t, state.tryReserveMolecule(kind).reservation)
	}

	assert.Empty(t, state.oxygenTokens)
	assert.True(t, isClosed(state.shortage))
}

func Test_NewSharedState_ActivatesShortageWithoutMolecules(t *testing.T) {
	testCases := []struct {
		description       string
		config            Config
		shortageActive    bool
		preReleasesOxygen bool
	}{
		{description: "no hydrogen", config: Config{Oxygen: 2}, shortageActive: true, preReleasesOxygen: true},
		{description: "one hydrogen", config: Config{Oxygen: 2, Hydrogen: 1}, shortageActive: true, preReleasesOxygen: true},
		{description: "no oxygen", config: Config{Hydrogen: 4}, shortageActive: true, preReleasesOxygen: false},
		{description: "one molecule", config: Config{Oxygen: 1, Hydrogen: 2}, shortageActive: false, preReleasesOxygen: false},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			state := newSharedState(tc.config, &recordingSequencer{})

			assert.Equal(t, tc.shortageActive, state.shortageActive)
			assert.Equal(t, tc.shortageActive, isClosed(state.shortage))
			assert.Equal(t, tc.preReleasesOxygen, state.preReleasesOxygen)
		})
	}
}

func Test_SharedState_CohortAdvancesSequences(t *testing.T) {
	sequencer := &recordingSequencer{}
	state := newSharedState(Config{Oxygen: 1, Hydrogen: 2}, sequencer)
	ctx := context.Background()

	oxygen := h2o.BuildAtom(h2o.Oxygen, 1)
	hydrogen1 := h2o.BuildAtom(h2o.Hydrogen, 1)
	hydrogen2 := h2o.BuildAtom(h2o.Hydrogen, 2)

	state.tryReserveMolecule(h2o.Oxygen)
	state.tryReserveMolecule(h2o.Hydrogen)
	r := state.tryReserveMolecule(h2o.Hydrogen).reservation
	require.NotNil(t, r)

	for _, atom := range []h2o.Atom{oxygen, hydrogen1, hydrogen2} {
		molecule, err := state.emitCreating(ctx, atom, r)
		require.NoError(t, err)
		assert.Equal(t, h2o.MoleculeUint(1), molecule)
	}

	assert.Equal(t, h2o.MoleculeUint(2), state.creatingSeq)
	assert.Equal(t, uint(0), state.creatingTally)

	for i, atom := range []h2o.Atom{hydrogen2, oxygen, hydrogen1} {
		molecule, completed, shortageActivated, err := state.emitCreated(ctx, atom, r)
		require.NoError(t, err)
		assert.Equal(t, h2o.MoleculeUint(1), molecule)
		assert.Equal(t, i == 2, completed)
		assert.Equal(t, i == 2, shortageActivated)
		assert.Equal(t, i == 2, isClosed(r.done))
	}

	assert.True(t, isClosed(state.shortage))

	outcome := state.outcome()
	assert.Equal(t, uint(1), outcome.MoleculesCreated)
	assert.Equal(t, uint(6), outcome.Lines)
	require.Len(t, sequencer.events, 6)

	for _, event := range sequencer.events {
		assert.Equal(t, r.id, event.Reservation)
	}
}

func Test_SharedState_EnqueueOpensDrainForLastAtom(t *testing.T) {
	state := newSharedState(Config{Oxygen: 1, Hydrogen: 1}, &recordingSequencer{})
	ctx := context.Background()

	allQueued, err := state.enqueue(ctx, h2o.BuildAtom(h2o.Oxygen, 1))
	require.NoError(t, err)
	assert.False(t, allQueued)
	assert.False(t, isClosed(state.allQueued))

	allQueued, err = state.enqueue(ctx, h2o.BuildAtom(h2o.Hydrogen, 1))
	require.NoError(t, err)
	assert.True(t, allQueued)
	assert.True(t, isClosed(state.allQueued))
}

func Test_SharedState_DrainEmitsShortageLine(t *testing.T) {
	sequencer := &recordingSequencer{}
	state := newSharedState(Config{Oxygen: 1, Hydrogen: 1}, sequencer)
	ctx := context.Background()

	r, err := state.awaitAdmission(ctx, h2o.Hydrogen)
	require.NoError(t, err)
	assert.Nil(t, r, "shortage is active from the start")

	for _, atom := range []h2o.Atom{h2o.BuildAtom(h2o.Oxygen, 1), h2o.BuildAtom(h2o.Hydrogen, 1)} {
		_, err = state.enqueue(ctx, atom)
		require.NoError(t, err)
	}

	require.NoError(t, state.drain(ctx, h2o.BuildAtom(h2o.Oxygen, 1)))
	require.NoError(t, state.drain(ctx, h2o.BuildAtom(h2o.Hydrogen, 1)))

	require.Len(t, sequencer.events, 4)
	assert.Equal(t, "not enough H", sequencer.events[2].Text())
	assert.Equal(t, "not enough O or H", sequencer.events[3].Text())
	assert.Equal(t, uint(2), state.outcome().Shortages)
	assert.Equal(t, uint(2), state.unpairableAtoms())
}

func Test_SharedState_WaitsObserveContext(t *testing.T) {
	state := newSharedState(Config{Oxygen: 1, Hydrogen: 2}, &recordingSequencer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := state.awaitAdmission(ctx, h2o.Oxygen)
	assert.ErrorIs(t, err, context.Canceled)

	assert.ErrorIs(t, state.drain(ctx, h2o.BuildAtom(h2o.Oxygen, 1)), context.Canceled)

	blocked := &reservation{turn: make(chan struct{})}
	assert.ErrorIs(t, state.awaitTurn(ctx, blocked), context.Canceled)
}

func Test_SharedState_FailedEmitIsNotCounted(t *testing.T) {
	sequencer := &recordingSequencer{failing: true}
	state := newSharedState(Config{Oxygen: 1, Hydrogen: 2}, sequencer)

	allQueued, err := state.enqueue(context.Background(), h2o.BuildAtom(h2o.Oxygen, 1))

	assert.ErrorIs(t, err, errSinkClosed)
	assert.False(t, allQueued)
	assert.Equal(t, uint(0), state.queueArrivals)
	assert.Equal(t, uint(0), state.outcome().Lines)
}
