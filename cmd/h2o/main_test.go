package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
	. "github.com/AntonStoeckl/h2o-rendezvous-go/testutil/helper" //nolint:revive
)

func givenRun(ctx context.Context, t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	ctx, cancel := context.WithTimeout(ctx, RunTimeout)
	defer cancel()

	err := run(ctx, args, noEnv, &stdout, &stderr)

	return stdout.String(), stderr.String(), err
}

func Test_Run_NoAtoms(t *testing.T) {
	stdout, stderr, err := givenRun(context.Background(), t, "0", "0", "100", "100")

	assert.ErrorIs(t, err, h2o.ErrNoAtoms)
	assert.Equal(t, "No atoms!\n", stderr)
	assert.Empty(t, stdout)
}

func Test_Run_InvalidArguments_DoesNotCreateOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h2o.out")

	stdout, stderr, err := givenRun(context.Background(), t, "-o", path, "1", "2", "3")

	assert.ErrorIs(t, err, h2o.ErrInvalidArgumentCount)
	assert.Equal(t, "Invalid arguments!\n", stderr)
	assert.Empty(t, stdout)
	assert.NoFileExists(t, path)
}

func Test_Run_Help(t *testing.T) {
	_, stderr, err := givenRun(context.Background(), t, "-h")

	assert.NoError(t, err)
	assert.Contains(t, stderr, "Usage: h2o [flags] NO NH TI TB")
}

func Test_Run_WritesLinesToStdout(t *testing.T) {
	stdout, stderr, err := givenRun(context.Background(), t, "2", "1", "0", "0")
	require.NoError(t, err)

	lines := ParseOutputLines(t, stdout)
	require.Len(t, lines, 9)
	for i, line := range lines {
		assert.Equal(t, h2o.LineNumberUint(i+1), line.Number)
	}

	assert.Equal(t, 2, CountLinesWithText(lines, "not enough H"))
	assert.Equal(t, 1, CountLinesWithText(lines, "not enough O or H"))
	assert.Empty(t, stderr, "nothing at the default log level")
}

func Test_Run_WritesLinesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h2o.out")

	stdout, _, err := givenRun(context.Background(), t, "-o", path, "1", "2", "0", "0")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := ParseOutputLines(t, string(content))
	require.Len(t, lines, 12)
	assert.Equal(t, 3, CountLinesWithText(lines, "molecule 1 created"))
	assert.Equal(t, 3, CountLinesWithText(lines, "creating molecule 1"))
}

func Test_Run_UnwritableOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "h2o.out")

	_, stderr, err := givenRun(context.Background(), t, "-o", path, "1", "2", "0", "0")

	assert.Error(t, err)
	assert.Contains(t, stderr, "creating output file")
}

func Test_Run_LogLevelInfo(t *testing.T) {
	_, stderr, err := givenRun(context.Background(), t, "-log-level", "info", "1", "2", "0", "0")
	require.NoError(t, err)

	assert.Contains(t, stderr, `msg="h2o run finished"`)
	assert.Contains(t, stderr, "molecules=1")
	assert.NotContains(t, stderr, "level=DEBUG")
}

func Test_Run_Summary(t *testing.T) {
	_, stderr, err := givenRun(context.Background(), t, "-summary", "3", "7", "0", "0")
	require.NoError(t, err)

	assert.Contains(t, stderr, `"Kind": "all"`)
	assert.Contains(t, stderr, `"MoleculesCreated": 3`)
	assert.Contains(t, stderr, `"Atoms": 10`)
	assert.Contains(t, stderr, `"LastLine": 39`)
}

func Test_Run_Telemetry(t *testing.T) {
	_, stderr, err := givenRun(context.Background(), t, "-telemetry", "2", "4", "0", "0")
	require.NoError(t, err)

	assert.Contains(t, stderr, `"Name": "h2o.run"`)
	assert.Equal(t, 6, strings.Count(stderr, `"Name": "h2o.atom"`))
	assert.Contains(t, stderr, "h2o_molecules_created_total")
	assert.Contains(t, stderr, "h2o_journal_append_duration_seconds")
}

func Test_Run_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stdout, stderr, err := givenRun(ctx, t, "1", "2", "0", "0")

	assert.ErrorIs(t, err, h2o.ErrSpawnFailure)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "h2o failed")
}
