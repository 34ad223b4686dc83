package rendezvous

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// Barrier is a reusable two-phase barrier (double turnstile) for a fixed number of parties.
//
// Every party calls Enter, which blocks until all parties have entered, and then Exit,
// which blocks until all parties have left. Both gates start closed and are opened
// for exactly one cohort at a time.
//
// While a cohort is between its last Enter and its last Exit, further Enter calls
// are rejected with h2o.ErrBarrierOverflow.
//
// A party whose Enter or Exit returns a context error is not removed from the cohort,
// so the Barrier must not be reused after a canceled wait.
type Barrier struct {
	mu        sync.Mutex
	parties   int64
	occupancy int64
	departed  int64
	releasing bool
	enterGate *semaphore.Weighted
	exitGate  *semaphore.Weighted
}

// NewBarrier creates a Barrier for the given number of parties.
func NewBarrier(parties int) (*Barrier, error) {
	if parties <= 0 {
		return nil, h2o.ErrInvalidParties
	}

	b := &Barrier{
		parties:   int64(parties),
		enterGate: semaphore.NewWeighted(int64(parties)),
		exitGate:  semaphore.NewWeighted(int64(parties)),
	}

	// close both gates
	b.enterGate.TryAcquire(b.parties)
	b.exitGate.TryAcquire(b.parties)

	return b, nil
}

// Enter blocks until the whole cohort has entered or ctx is done.
func (b *Barrier) Enter(ctx context.Context) error {
	b.mu.Lock()
	if b.releasing {
		b.mu.Unlock()

		return h2o.ErrBarrierOverflow
	}

	b.occupancy++
	if b.occupancy == b.parties {
		b.releasing = true
		b.enterGate.Release(b.parties)
	}
	b.mu.Unlock()

	return b.enterGate.Acquire(ctx, 1)
}

// Exit blocks until the whole cohort has reached Exit or ctx is done.
func (b *Barrier) Exit(ctx context.Context) error {
	b.mu.Lock()
	b.occupancy--
	if b.occupancy == 0 {
		b.exitGate.Release(b.parties)
	}
	b.mu.Unlock()

	if err := b.exitGate.Acquire(ctx, 1); err != nil {
		return err
	}

	b.mu.Lock()
	b.departed++
	if b.departed == b.parties {
		b.departed = 0
		b.releasing = false
	}
	b.mu.Unlock()

	return nil
}

// Occupancy returns the number of parties that have entered and not yet reached Exit.
func (b *Barrier) Occupancy() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return int(b.occupancy)
}
