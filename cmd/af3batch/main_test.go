package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/status"
)

// setBatchEnv points every required variable at temp dirs. The container
// path is bogus on purpose: jobs that reach the engine fail fast with a
// startup error, which is enough to drive the pass end to end.
func setBatchEnv(t *testing.T) (inputs, outputs string) {
	t.Helper()
	inputs = t.TempDir()
	outputs = t.TempDir()
	t.Setenv("AF3_INPUTS_DIR", inputs)
	t.Setenv("AF3_OUTPUTS_DIR", outputs)
	t.Setenv("AF3_SCRATCH_DIR", t.TempDir())
	t.Setenv("AF3_MODEL_DIR", t.TempDir())
	t.Setenv("DB_DIR", t.TempDir())
	t.Setenv("AF3_CONTAINER", filepath.Join(t.TempDir(), "alphafold3.sif"))
	return inputs, outputs
}

func TestRun_ExitsConfigError_When_RequiredPathsMissing(t *testing.T) {
	t.Setenv("AF3_INPUTS_DIR", "")
	t.Setenv("AF3_OUTPUTS_DIR", "")
	t.Setenv("AF3_MODEL_DIR", "")
	t.Setenv("MODEL_DIR", "")
	t.Setenv("DB_DIR", "")
	t.Setenv("ALPHAFOLD_DIR", "")
	t.Setenv("AF3_CONTAINER", "")

	var stdout, stderr bytes.Buffer
	code := run(&stdout, &stderr)

	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr.String(), "required path not configured")
}

func TestRun_ExitsEmptyCatalog_When_NoInputDocuments(t *testing.T) {
	setBatchEnv(t)

	var stdout, stderr bytes.Buffer
	code := run(&stdout, &stderr)

	assert.Equal(t, exitEmptyCatalog, code)
	assert.Contains(t, stderr.String(), "no fold input documents")
}

func TestRun_ExitsZeroAndRecordsOutcomes_When_CatalogNonEmpty(t *testing.T) {
	inputs, outputs := setBatchEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(inputs, "jobA.json"), []byte("{}"), 0o644))

	store := status.NewStore(outputs)
	require.NoError(t, store.SetDone("jobB", 0))
	require.NoError(t, os.WriteFile(filepath.Join(inputs, "jobB.json"), []byte("{}"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(&stdout, &stderr)

	assert.Equal(t, exitOK, code, "job failures never change the exit code")
	assert.Equal(t, status.Error, store.Get("jobA"), "unlaunchable engine is a per-job error")
	assert.Equal(t, status.Done, store.Get("jobB"))
	assert.Contains(t, stdout.String(), "completed: 0")
	assert.Contains(t, stdout.String(), "failed:    1")
	assert.Contains(t, stdout.String(), "skipped:   1")
}
