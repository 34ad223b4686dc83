package rendezvous_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o/rendezvous"
)

func Test_NewBarrier_RejectsInvalidParties(t *testing.T) {
	for _, parties := range []int{0, -1} {
		barrier, err := rendezvous.NewBarrier(parties)

		assert.ErrorIs(t, err, h2o.ErrInvalidParties)
		assert.Nil(t, barrier)
	}
}

func Test_Barrier_ReleasesCohortsTogetherAcrossCycles(t *testing.T) {
	const parties = 3
	const cycles = 25

	barrier, err := rendezvous.NewBarrier(parties)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for cycle := 1; cycle <= cycles; cycle++ {
		var entered, passedEnter atomic.Int32
		wg := sync.WaitGroup{}

		for range parties {
			wg.Add(1)
			go func() {
				defer wg.Done()

				entered.Add(1)
				if !assert.NoError(t, barrier.Enter(ctx)) {
					return
				}

				// nobody passes the enter gate before the whole cohort has arrived
				assert.Equal(t, int32(parties), entered.Load())
				assert.LessOrEqual(t, barrier.Occupancy(), parties)

				passedEnter.Add(1)
				if !assert.NoError(t, barrier.Exit(ctx)) {
					return
				}

				// nobody passes the exit gate before the whole cohort has passed the enter gate
				assert.Equal(t, int32(parties), passedEnter.Load())
			}()
		}

		wg.Wait()
		assert.Equal(t, 0, barrier.Occupancy(), "cycle %d", cycle)
	}
}

func Test_Barrier_RejectsEnterWhileCohortIsReleasing(t *testing.T) {
	barrier, err := rendezvous.NewBarrier(3)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	enteredWG := sync.WaitGroup{}
	exitWG := sync.WaitGroup{}
	leave := make(chan struct{})

	for range 3 {
		enteredWG.Add(1)
		exitWG.Add(1)
		go func() {
			defer exitWG.Done()

			assert.NoError(t, barrier.Enter(ctx))
			enteredWG.Done()

			<-leave
			assert.NoError(t, barrier.Exit(ctx))
		}()
	}

	enteredWG.Wait()
	assert.Equal(t, 3, barrier.Occupancy())
	assert.ErrorIs(t, barrier.Enter(ctx), h2o.ErrBarrierOverflow)

	close(leave)
	exitWG.Wait()
	assert.Equal(t, 0, barrier.Occupancy())
}

func Test_Barrier_Enter_ObservesContext(t *testing.T) {
	barrier, err := rendezvous.NewBarrier(3)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = barrier.Enter(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, barrier.Occupancy())
}

func Test_Barrier_SingleParty(t *testing.T) {
	barrier, err := rendezvous.NewBarrier(1)
	require.NoError(t, err)

	ctx := context.Background()

	for range 3 {
		require.NoError(t, barrier.Enter(ctx))
		require.NoError(t, barrier.Exit(ctx))
	}

	assert.Equal(t, 0, barrier.Occupancy())
}
