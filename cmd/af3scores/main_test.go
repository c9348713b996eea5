package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/status"
)

func seedOutputs(t *testing.T) string {
	t.Helper()
	outputs := t.TempDir()
	store := status.NewStore(outputs)

	require.NoError(t, store.SetDone("PairA", 90))
	summaryDir := filepath.Join(outputs, "PairA", "paira")
	require.NoError(t, os.MkdirAll(summaryDir, 0o755))
	summary := `{"ranking_score": 0.91, "ptm": 0.88, "iptm": 0.85, "fraction_disordered": 0.02, "has_clash": false}`
	require.NoError(t, os.WriteFile(filepath.Join(summaryDir, "paira_summary_confidences.json"), []byte(summary), 0o644))

	require.NoError(t, store.SetError("PairB", 1, "CUDA out of memory", 30))
	return outputs
}

func TestRun_RendersTableAndWritesCSV_When_OutputsDirGiven(t *testing.T) {
	outputs := seedOutputs(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{outputs}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "PairA")
	assert.Contains(t, stdout.String(), "0.910")
	assert.Contains(t, stdout.String(), "1/2 predictions completed")

	data, err := os.ReadFile(filepath.Join(outputs, "confidence_scores.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ranking_score")
	assert.Contains(t, lines[1], "Very High")
	assert.Contains(t, lines[2], "CUDA out of memory")
}

func TestRun_UsesConfiguredOutputsDir_When_NoArgument(t *testing.T) {
	outputs := seedOutputs(t)
	t.Setenv("AF3_OUTPUTS_DIR", outputs)

	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.FileExists(t, filepath.Join(outputs, "confidence_scores.csv"))
}

func TestRun_ExitsTwo_When_NoJobDirectories(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run([]string{t.TempDir()}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "no job directories")
}

func TestRun_ExitsUsage_When_TooManyArguments(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run([]string{"a", "b"}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "usage: af3scores")
}
