package report

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// MoleculeInfo represents one molecule that passed the creation barrier.
type MoleculeInfo struct {
	Molecule    h2o.MoleculeUint
	Reservation string
	Oxygen      []h2o.AtomIDUint
	Hydrogen    []h2o.AtomIDUint
	CreatingAt  time.Time
	CreatedAt   time.Time
	Complete    bool
}

// Shortages counts the atoms which ended in the shortage drain, per Kind.
type Shortages struct {
	Oxygen   uint
	Hydrogen uint
}

// RunSummary represents the query result projected from the events of one run.
type RunSummary struct {
	Kind             string
	Atoms            uint
	Started          uint
	Queued           uint
	MoleculesCreated uint
	Molecules        []MoleculeInfo
	Shortages        Shortages
	LastLine         h2o.LineNumberUint
}

// ToJSON renders the summary as indented JSON.
func (s RunSummary) ToJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(s, "", "  ")
}
