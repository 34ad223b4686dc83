package helper

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o/journal"
	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o/rendezvous"
)

// RunTimeout bounds every simulation run in tests; a deadlock surfaces as context.DeadlineExceeded.
const RunTimeout = 10 * time.Second

var outputLinePattern = regexp.MustCompile(`^(\d+): ([OH]) (\d+): (.+)$`)

// OutputLine is one parsed line of the simulation output.
type OutputLine struct {
	Number h2o.LineNumberUint
	Atom   h2o.Atom
	Text   string
}

// GivenConfig builds a valid Config without think time or create delay.
func GivenConfig(t testing.TB, oxygen, hydrogen uint) rendezvous.Config {
	config, err := rendezvous.BuildConfig(oxygen, hydrogen, 0, 0)
	require.NoError(t, err)

	return config
}

// GivenJournal creates a Journal writing into the returned buffer.
func GivenJournal(t testing.TB, options ...journal.Option) (*journal.Journal, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	j, err := journal.NewJournal(buf, options...)
	require.NoError(t, err)

	return j, buf
}

// RunSimulation runs a full simulation into a fresh Journal, bounded by RunTimeout, and requires success.
func RunSimulation(
	t testing.TB,
	config rendezvous.Config,
	options ...rendezvous.Option,
) (rendezvous.Outcome, *journal.Journal, string) {

	t.Helper()

	j, buf := GivenJournal(t)

	simulation, err := rendezvous.NewSimulation(config, j, options...)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
	defer cancel()

	outcome, err := simulation.Run(ctx)
	require.NoError(t, err)

	return outcome, j, buf.String()
}

// ParseOutputLines parses the complete output of a run and fails the test on any malformed line.
func ParseOutputLines(t testing.TB, output string) []OutputLine {
	t.Helper()

	lines := make([]OutputLine, 0)
	if output == "" {
		return lines
	}

	for _, raw := range strings.Split(strings.TrimSuffix(output, "\n"), "\n") {
		match := outputLinePattern.FindStringSubmatch(raw)
		require.NotNil(t, match, "malformed output line %q", raw)

		number, err := strconv.ParseUint(match[1], 10, 64)
		require.NoError(t, err)

		id, err := strconv.ParseUint(match[3], 10, 64)
		require.NoError(t, err)

		kind, ok := h2o.KindFromLetter(match[2])
		require.True(t, ok)

		lines = append(lines, OutputLine{
			Number: h2o.LineNumberUint(number),
			Atom:   h2o.BuildAtom(kind, h2o.AtomIDUint(id)),
			Text:   match[4],
		})
	}

	return lines
}

// CountLinesWithText counts the lines whose event part equals text.
func CountLinesWithText(lines []OutputLine, text string) int {
	count := 0
	for _, line := range lines {
		if line.Text == text {
			count++
		}
	}

	return count
}

// IsTerminalText tells whether the event part of a line ends the life of an atom.
func IsTerminalText(text string) bool {
	return strings.HasSuffix(text, " created") || strings.HasPrefix(text, "not enough")
}
