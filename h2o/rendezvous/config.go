package rendezvous

import (
	"fmt"
	"time"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// MaxWait is the upper bound for both the queue think time and the create delay.
const MaxWait = 1000 * time.Millisecond

const moleculeParties = 3

// Config holds the validated input of one simulation run.
type Config struct {
	Oxygen        uint
	Hydrogen      uint
	MaxQueueWait  time.Duration
	MaxCreateWait time.Duration
}

// BuildConfig is a factory method for Config which returns the first validation error.
func BuildConfig(oxygen, hydrogen uint, maxQueueWait, maxCreateWait time.Duration) (Config, error) {
	config := Config{
		Oxygen:        oxygen,
		Hydrogen:      hydrogen,
		MaxQueueWait:  maxQueueWait,
		MaxCreateWait: maxCreateWait,
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the wait ranges before the atom counts, so a config with both problems reports the wait.
func (c Config) Validate() error {
	if c.MaxQueueWait < 0 || c.MaxQueueWait > MaxWait {
		return fmt.Errorf("%w: max queue wait %s", h2o.ErrOutOfRangeWait, c.MaxQueueWait)
	}

	if c.MaxCreateWait < 0 || c.MaxCreateWait > MaxWait {
		return fmt.Errorf("%w: max create wait %s", h2o.ErrOutOfRangeWait, c.MaxCreateWait)
	}

	if c.TotalAtoms() == 0 {
		return h2o.ErrNoAtoms
	}

	return nil
}

// TotalAtoms returns the number of actors a run spawns.
func (c Config) TotalAtoms() uint {
	return c.Oxygen + c.Hydrogen
}

// TotalMolecules returns the number of molecules a run will create.
func (c Config) TotalMolecules() uint {
	return MoleculeCount(c.Oxygen, c.Hydrogen)
}

// MoleculeCount returns how many molecules can be built when one oxygen and two hydrogen atoms
// are consumed per molecule until either kind runs out.
func MoleculeCount(oxygen, hydrogen uint) uint {
	return min(oxygen, hydrogen/2)
}

// preReleasesOxygen reports whether oxygen atoms skip the pairing transaction because not even
// one pair of hydrogen atoms exists.
func (c Config) preReleasesOxygen() bool {
	return c.Hydrogen < 2
}
