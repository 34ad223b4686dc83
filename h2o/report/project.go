package report

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// ProjectRunSummary implements the query logic to summarize a simulation run.
// This is a pure function with no side effects - it takes the events of a run and a query
// and returns the projected summary.
//
// Query Logic:
//
//	GIVEN: The recorded events of one run
//	WHEN: RunSummary query is executed
//	THEN: RunSummary struct is returned
//	INCLUDES: per molecule the oxygen and hydrogen atoms and the reservation that paired them
//	EXCLUDES: atoms of another Kind if the query is restricted to one
//
// A molecule is Complete once three "created" events have been projected for it.
func ProjectRunSummary(history h2o.Events, query Query) RunSummary {
	summary := RunSummary{Kind: "all"}
	if query.Kind != 0 {
		summary.Kind = query.Kind.String()
	}

	molecules := make(map[h2o.MoleculeUint]*MoleculeInfo)
	createdTally := make(map[h2o.MoleculeUint]uint)
	atoms := make(map[h2o.Atom]struct{})

	moleculeFor := func(event h2o.Event) *MoleculeInfo {
		info, ok := molecules[event.Molecule]
		if !ok {
			info = &MoleculeInfo{Molecule: event.Molecule}
			molecules[event.Molecule] = info
		}

		if info.Reservation == "" && event.Reservation != uuid.Nil {
			info.Reservation = event.Reservation.String()
		}

		return info
	}

	for _, event := range history {
		if query.Kind != 0 && event.Atom.Kind != query.Kind {
			continue
		}

		atoms[event.Atom] = struct{}{}

		switch event.EventType {
		case h2o.AtomStartedEventType:
			summary.Started++

		case h2o.AtomQueuedEventType:
			summary.Queued++

		case h2o.MoleculeCreatingEventType:
			info := moleculeFor(event)
			if info.CreatingAt.IsZero() {
				info.CreatingAt = event.OccurredAt
			}

			if event.Atom.Kind == h2o.Oxygen {
				info.Oxygen = append(info.Oxygen, event.Atom.ID)
			} else {
				info.Hydrogen = append(info.Hydrogen, event.Atom.ID)
			}

		case h2o.MoleculeCreatedEventType:
			info := moleculeFor(event)
			info.CreatedAt = event.OccurredAt
			createdTally[event.Molecule]++

		case h2o.HydrogenShortageEventType, h2o.AtomShortageEventType:
			if event.Atom.Kind == h2o.Oxygen {
				summary.Shortages.Oxygen++
			} else {
				summary.Shortages.Hydrogen++
			}
		}
	}

	summary.Atoms = uint(len(atoms))
	summary.Molecules = make([]MoleculeInfo, 0, len(molecules))

	for molecule, info := range molecules {
		slices.Sort(info.Oxygen)
		slices.Sort(info.Hydrogen)

		// a restricted query only sees the atoms of its Kind in a cohort
		expected := uint(3)
		switch query.Kind {
		case h2o.Oxygen:
			expected = 1
		case h2o.Hydrogen:
			expected = 2
		}

		info.Complete = createdTally[molecule] == expected
		if info.Complete {
			summary.MoleculesCreated++
		}

		summary.Molecules = append(summary.Molecules, *info)
	}

	slices.SortFunc(summary.Molecules, func(a, b MoleculeInfo) int {
		return cmp.Compare(a.Molecule, b.Molecule)
	})

	return summary
}
