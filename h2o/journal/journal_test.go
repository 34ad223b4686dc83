package journal_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o/journal"
	. "github.com/AntonStoeckl/h2o-rendezvous-go/testutil/helper" //nolint:revive
)

var errDiskFull = errors.New("disk full")

// flakyWriter fails exactly on the calls listed in failOn (1-based).
type flakyWriter struct {
	buf    bytes.Buffer
	calls  int
	failOn map[int]bool
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	w.calls++
	if w.failOn[w.calls] {
		return 0, errDiskFull
	}

	return w.buf.Write(p)
}

func Test_NewJournal_Fails(t *testing.T) {
	_, err := journal.NewJournal(nil)
	assert.ErrorIs(t, err, h2o.ErrNilWriter)

	_, err = journal.NewJournal(&bytes.Buffer{}, journal.WithRunID(uuid.Nil))
	assert.ErrorIs(t, err, h2o.ErrEmptyRunID)
}

func Test_Journal_Append_FormatsLines(t *testing.T) {
	buf := &bytes.Buffer{}
	j, err := journal.NewJournal(buf)
	require.NoError(t, err)

	ctx := context.Background()
	oxygen := h2o.BuildAtom(h2o.Oxygen, 1)

	line, err := j.Append(ctx, h2o.BuildAtomStarted(oxygen, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, uint(1), line)

	line, err = j.Append(ctx, h2o.BuildAtomQueued(oxygen, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, uint(2), line)

	assert.Equal(t, "1: O 1: started\n2: O 1: going to queue\n", buf.String())
	assert.Equal(t, uint(2), j.Lines())
}

func Test_Journal_Append_ConcurrentLinesAreGapFree(t *testing.T) {
	buf := &bytes.Buffer{}
	j, err := journal.NewJournal(buf)
	require.NoError(t, err)

	const atoms = 200
	wg := sync.WaitGroup{}

	for id := 1; id <= atoms; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, appendErr := j.Append(context.Background(), h2o.BuildAtomStarted(h2o.BuildAtom(h2o.Hydrogen, uint(id)), time.Now()))
			assert.NoError(t, appendErr)
		}()
	}

	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, atoms)

	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, fmt.Sprintf("%d: H ", i+1)), "line %q out of order", line)
	}

	recorded := j.Query(h2o.BuildEventFilter().MatchingAnyEvent())
	require.Len(t, recorded, atoms)

	for i, storableEvent := range recorded {
		assert.Equal(t, uint(i+1), storableEvent.SequenceNumber)
	}
}

func Test_Journal_Append_WriteFailureLeavesNoGap(t *testing.T) {
	writer := &flakyWriter{failOn: map[int]bool{2: true}}
	logHandler := NewLogHandlerSpy(false)
	metrics := NewMetricsCollectorSpy(false)

	j, err := journal.NewJournal(writer, journal.WithLogger(slog.New(logHandler)), journal.WithMetrics(metrics))
	require.NoError(t, err)

	ctx := context.Background()
	hydrogen := h2o.BuildAtom(h2o.Hydrogen, 3)

	_, err = j.Append(ctx, h2o.BuildAtomStarted(hydrogen, time.Now()))
	require.NoError(t, err)

	_, err = j.Append(ctx, h2o.BuildAtomQueued(hydrogen, time.Now()))
	assert.ErrorIs(t, err, h2o.ErrWritingLineFailed)
	assert.ErrorIs(t, err, errDiskFull)

	line, err := j.Append(ctx, h2o.BuildShortage(hydrogen, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, uint(2), line)
	assert.Equal(t, "1: H 3: started\n2: H 3: not enough O or H\n", writer.buf.String())
	assert.Len(t, j.Query(h2o.BuildEventFilter().MatchingAnyEvent()), 2)
	assert.True(t, logHandler.HasErrorLog("failed to write output line"))
	assert.True(t, metrics.HasCounterRecord("h2o_journal_write_errors_total"))
	assert.True(t, metrics.HasDurationRecord("h2o_journal_append_duration_seconds"))
}

func Test_Journal_Append_RefusesCanceledContext(t *testing.T) {
	buf := &bytes.Buffer{}
	j, err := journal.NewJournal(buf)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = j.Append(ctx, h2o.BuildAtomStarted(h2o.BuildAtom(h2o.Oxygen, 1), time.Now()))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
	assert.Equal(t, uint(0), j.Lines())
}

func Test_Journal_Query_WithFilterAndMetadata(t *testing.T) {
	runID := uuid.New()
	reservation := uuid.New()

	j, err := journal.NewJournal(&bytes.Buffer{}, journal.WithRunID(runID))
	require.NoError(t, err)

	ctx := context.Background()
	oxygen := h2o.BuildAtom(h2o.Oxygen, 1)
	hydrogen := h2o.BuildAtom(h2o.Hydrogen, 1)

	for _, event := range []h2o.Event{
		h2o.BuildAtomStarted(oxygen, time.Now()),
		h2o.BuildAtomStarted(hydrogen, time.Now()),
		h2o.BuildMoleculeCreating(oxygen, 1, reservation, time.Now()),
		h2o.BuildMoleculeCreated(oxygen, 1, reservation, time.Now()),
	} {
		_, err = j.Append(ctx, event)
		require.NoError(t, err)
	}

	oxygenMoleculeEvents := j.Query(
		h2o.BuildEventFilter().
			Matching().
			AnyEventTypeOf(h2o.MoleculeCreatingEventType, h2o.MoleculeCreatedEventType).
			AndAnyPredicateOf(h2o.P("Kind", "O")).
			Finalize(),
	)
	require.Len(t, oxygenMoleculeEvents, 2)
	assert.Equal(t, uint(3), oxygenMoleculeEvents[0].SequenceNumber)
	assert.Equal(t, uint(4), oxygenMoleculeEvents[1].SequenceNumber)

	for _, storableEvent := range oxygenMoleculeEvents {
		metadata, metadataErr := h2o.EventMetadataFrom(storableEvent)
		require.NoError(t, metadataErr)
		assert.Equal(t, reservation.String(), metadata.CausationID)
		assert.Equal(t, runID.String(), metadata.CorrelationID)
		assert.NotEmpty(t, metadata.MessageID)
	}

	started := j.Query(h2o.BuildEventFilter().Matching().AnyEventTypeOf(h2o.AtomStartedEventType).Finalize())
	require.Len(t, started, 2)

	metadata, err := h2o.EventMetadataFrom(started[0])
	require.NoError(t, err)
	assert.Empty(t, metadata.CausationID)
	assert.Equal(t, runID, j.RunID())
}

func Test_Journal_WithoutRecording(t *testing.T) {
	buf := &bytes.Buffer{}
	j, err := journal.NewJournal(buf, journal.WithoutRecording())
	require.NoError(t, err)

	_, err = j.Append(context.Background(), h2o.BuildAtomStarted(h2o.BuildAtom(h2o.Oxygen, 1), time.Now()))
	require.NoError(t, err)

	assert.Equal(t, "1: O 1: started\n", buf.String())
	assert.Empty(t, j.Query(h2o.BuildEventFilter().MatchingAnyEvent()))
}
