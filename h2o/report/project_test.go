package report_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o/report"
)

func givenHistoryOfOneMoleculeAndOneShortage(reservation uuid.UUID, fakeClock time.Time) h2o.Events {
	oxygen := h2o.BuildAtom(h2o.Oxygen, 1)
	hydrogen1 := h2o.BuildAtom(h2o.Hydrogen, 1)
	hydrogen2 := h2o.BuildAtom(h2o.Hydrogen, 2)
	hydrogen3 := h2o.BuildAtom(h2o.Hydrogen, 3)

	history := h2o.Events{}
	for _, atom := range []h2o.Atom{oxygen, hydrogen2, hydrogen1, hydrogen3} {
		history = append(history, h2o.BuildAtomStarted(atom, fakeClock))
	}

	for _, atom := range []h2o.Atom{hydrogen3, oxygen, hydrogen1, hydrogen2} {
		history = append(history, h2o.BuildAtomQueued(atom, fakeClock.Add(time.Millisecond)))
	}

	history = append(
		history,
		h2o.BuildMoleculeCreating(hydrogen2, 1, reservation, fakeClock.Add(2*time.Millisecond)),
		h2o.BuildMoleculeCreating(oxygen, 1, reservation, fakeClock.Add(3*time.Millisecond)),
		h2o.BuildMoleculeCreating(hydrogen1, 1, reservation, fakeClock.Add(4*time.Millisecond)),
		h2o.BuildMoleculeCreated(oxygen, 1, reservation, fakeClock.Add(5*time.Millisecond)),
		h2o.BuildMoleculeCreated(hydrogen1, 1, reservation, fakeClock.Add(6*time.Millisecond)),
		h2o.BuildMoleculeCreated(hydrogen2, 1, reservation, fakeClock.Add(7*time.Millisecond)),
		h2o.BuildShortage(hydrogen3, fakeClock.Add(8*time.Millisecond)),
	)

	return history
}

func Test_ProjectRunSummary_AllAtoms(t *testing.T) {
	reservation := uuid.New()
	fakeClock := time.Unix(0, 0).UTC()

	summary := report.ProjectRunSummary(givenHistoryOfOneMoleculeAndOneShortage(reservation, fakeClock), report.BuildQuery())

	assert.Equal(t, "all", summary.Kind)
	assert.Equal(t, uint(4), summary.Atoms)
	assert.Equal(t, uint(4), summary.Started)
	assert.Equal(t, uint(4), summary.Queued)
	assert.Equal(t, uint(1), summary.MoleculesCreated)
	assert.Equal(t, report.Shortages{Oxygen: 0, Hydrogen: 1}, summary.Shortages)

	require.Len(t, summary.Molecules, 1)
	assert.Equal(t, report.MoleculeInfo{
		Molecule:    1,
		Reservation: reservation.String(),
		Oxygen:      []h2o.AtomIDUint{1},
		Hydrogen:    []h2o.AtomIDUint{1, 2},
		CreatingAt:  fakeClock.Add(2 * time.Millisecond),
		CreatedAt:   fakeClock.Add(7 * time.Millisecond),
		Complete:    true,
	}, summary.Molecules[0])
}

func Test_ProjectRunSummary_OneKind(t *testing.T) {
	reservation := uuid.New()
	fakeClock := time.Unix(0, 0).UTC()
	history := givenHistoryOfOneMoleculeAndOneShortage(reservation, fakeClock)

	hydrogenSummary := report.ProjectRunSummary(history, report.BuildQueryForKind(h2o.Hydrogen))

	assert.Equal(t, "hydrogen", hydrogenSummary.Kind)
	assert.Equal(t, uint(3), hydrogenSummary.Atoms)
	assert.Equal(t, uint(1), hydrogenSummary.MoleculesCreated)
	assert.Equal(t, uint(1), hydrogenSummary.Shortages.Hydrogen)
	require.Len(t, hydrogenSummary.Molecules, 1)
	assert.Empty(t, hydrogenSummary.Molecules[0].Oxygen)
	assert.True(t, hydrogenSummary.Molecules[0].Complete)

	oxygenSummary := report.ProjectRunSummary(history, report.BuildQueryForKind(h2o.Oxygen))

	assert.Equal(t, uint(1), oxygenSummary.Atoms)
	assert.Equal(t, uint(1), oxygenSummary.MoleculesCreated)
	assert.Equal(t, report.Shortages{}, oxygenSummary.Shortages)
}

func Test_ProjectRunSummary_IncompleteMolecule(t *testing.T) {
	reservation := uuid.New()
	fakeClock := time.Unix(0, 0).UTC()
	oxygen := h2o.BuildAtom(h2o.Oxygen, 1)

	history := h2o.Events{
		h2o.BuildMoleculeCreating(oxygen, 1, reservation, fakeClock),
		h2o.BuildMoleculeCreated(oxygen, 1, reservation, fakeClock),
	}

	summary := report.ProjectRunSummary(history, report.BuildQuery())

	assert.Equal(t, uint(0), summary.MoleculesCreated)
	require.Len(t, summary.Molecules, 1)
	assert.False(t, summary.Molecules[0].Complete)
}

func Test_ProjectRunSummary_EmptyHistory(t *testing.T) {
	summary := report.ProjectRunSummary(h2o.Events{}, report.BuildQuery())

	assert.Equal(t, uint(0), summary.Atoms)
	assert.NotNil(t, summary.Molecules)
	assert.Empty(t, summary.Molecules)
}

func Test_RunSummary_ToJSON(t *testing.T) {
	summary := report.RunSummary{
		Kind:             "all",
		Atoms:            3,
		Started:          3,
		Queued:           3,
		MoleculesCreated: 0,
		Molecules:        []report.MoleculeInfo{},
		Shortages:        report.Shortages{Oxygen: 2, Hydrogen: 1},
		LastLine:         9,
	}

	summaryJSON, err := summary.ToJSON()
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"Kind": "all",
		"Atoms": 3,
		"Started": 3,
		"Queued": 3,
		"MoleculesCreated": 0,
		"Molecules": [],
		"Shortages": {"Oxygen": 2, "Hydrogen": 1},
		"LastLine": 9
	}`, string(summaryJSON))
}
