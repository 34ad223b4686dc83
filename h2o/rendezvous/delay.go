package rendezvous

import (
	"context"
	"math/rand/v2"
	"time"
)

// Delayer is the source of the random think time before an atom queues up
// and of the time an oxygen atom spends creating a molecule.
type Delayer interface {
	// Delay blocks for a random duration in [0, maxDelay] or until ctx is done.
	Delay(ctx context.Context, maxDelay time.Duration) error
}

// DelayerFunc adapts a plain function to the Delayer interface.
type DelayerFunc func(ctx context.Context, maxDelay time.Duration) error

func (f DelayerFunc) Delay(ctx context.Context, maxDelay time.Duration) error {
	return f(ctx, maxDelay)
}

// NoDelay never blocks.
var NoDelay Delayer = DelayerFunc(func(context.Context, time.Duration) error { return nil })

type randomDelayer struct{}

// NewRandomDelayer returns the default Delayer which sleeps a uniformly distributed
// number of whole milliseconds.
func NewRandomDelayer() Delayer {
	return randomDelayer{}
}

func (randomDelayer) Delay(ctx context.Context, maxDelay time.Duration) error {
	if maxDelay < time.Millisecond {
		return nil
	}

	delay := time.Duration(rand.Int64N(int64(maxDelay/time.Millisecond)+1)) * time.Millisecond
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
