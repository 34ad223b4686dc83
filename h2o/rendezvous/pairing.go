package rendezvous

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// reservation is one successful pairing transaction: one oxygen and two hydrogen tokens.
//
// Cohorts pass the barrier strictly one after the other. The holders of a reservation's
// tokens wait for turn, which is the done channel of the previous reservation.
type reservation struct {
	id   uuid.UUID
	seq  uint
	turn <-chan struct{}
	done chan struct{}
}

type pairingResult struct {
	reservation     *reservation
	pendingOxygen   uint
	pendingHydrogen uint
}

// tryReserveMolecule adds the arriving atom to its pending pool and reserves a molecule
// as soon as one oxygen and two hydrogen atoms are pending.
func (s *sharedState) tryReserveMolecule(kind h2o.Kind) pairingResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case h2o.Oxygen:
		s.pendingOxygen++
	case h2o.Hydrogen:
		s.pendingHydrogen++
	}

	if s.shortageActive || s.pendingOxygen < 1 || s.pendingHydrogen < 2 {
		return pairingResult{pendingOxygen: s.pendingOxygen, pendingHydrogen: s.pendingHydrogen}
	}

	s.pendingOxygen--
	s.pendingHydrogen -= 2
	s.reservations++

	r := &reservation{
		id:   uuid.New(),
		seq:  s.reservations,
		turn: s.lastTurn,
		done: make(chan struct{}),
	}
	s.lastTurn = r.done

	// capacity equals the atom count per kind, so these never block
	s.oxygenTokens <- r
	s.hydrogenTokens <- r
	s.hydrogenTokens <- r

	return pairingResult{reservation: r, pendingOxygen: s.pendingOxygen, pendingHydrogen: s.pendingHydrogen}
}
