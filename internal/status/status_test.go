package status

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touchMarker(t *testing.T, root, jobID, marker string) {
	t.Helper()
	dir := filepath.Join(root, jobID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, marker), []byte("x\n"), 0o644))
}

func TestGet_ReturnsNotStarted_When_NoMarkersExist(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	assert.Equal(t, NotStarted, store.Get("AT2G16950_AT1G02870.1"))
}

func TestGet_ResolvesPrecedence_When_MarkersCoexist(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		markers []string
		want    Status
	}{
		{"done alone", []string{MarkerDone}, Done},
		{"running alone", []string{MarkerRunning}, Running},
		{"error alone", []string{MarkerError}, Error},
		{"timeout alone", []string{MarkerTimeout}, Timeout},
		{"done beats running", []string{MarkerDone, MarkerRunning}, Done},
		{"done beats error", []string{MarkerDone, MarkerError}, Done},
		{"running beats stale error", []string{MarkerRunning, MarkerError}, Running},
		{"running beats stale timeout", []string{MarkerRunning, MarkerTimeout}, Running},
		{"error beats timeout", []string{MarkerError, MarkerTimeout}, Error},
		{"all four", []string{MarkerDone, MarkerRunning, MarkerError, MarkerTimeout}, Done},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			store := NewStore(root)
			for _, m := range tc.markers {
				touchMarker(t, root, "job", m)
			}
			assert.Equal(t, tc.want, store.Get("job"))
		})
	}
}

func TestSetDone_ClearsRunningMarker_When_AttemptSucceeds(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, store.SetRunning("job"))
	require.Equal(t, Running, store.Get("job"))

	require.NoError(t, store.SetDone("job", 83*time.Second))

	assert.Equal(t, Done, store.Get("job"))
	assert.NoFileExists(t, filepath.Join(root, "job", MarkerRunning))

	content, err := os.ReadFile(filepath.Join(root, "job", MarkerDone))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Duration: 83.0 seconds")
}

func TestSetError_RecordsExitCodeAndDiagnostic_When_EngineFails(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, store.SetRunning("job"))
	require.NoError(t, store.SetError("job", 137, "CUDA out of memory", 12*time.Second))

	assert.Equal(t, Error, store.Get("job"))
	content, err := os.ReadFile(filepath.Join(root, "job", MarkerError))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Return code: 137")
	assert.Contains(t, string(content), "CUDA out of memory")
}

func TestSetTimeout_ReplacesRunningMarker_When_BoundExceeded(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, store.SetRunning("job"))
	require.NoError(t, store.SetTimeout("job"))

	assert.Equal(t, Timeout, store.Get("job"))
	assert.NoFileExists(t, filepath.Join(root, "job", MarkerRunning))
}

func TestClearRunning_IsIdempotent_When_MarkerAbsent(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	assert.NoError(t, store.ClearRunning("never-started"))
	assert.NoError(t, store.ClearRunning("never-started"))
}

func TestWrite_LeavesNoTempFiles_When_MarkerPlaced(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, store.SetRunning("job"))

	entries, err := os.ReadDir(filepath.Join(root, "job"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, MarkerRunning, entries[0].Name())
}

func TestTerminal_ClassifiesAbsorbingStates(t *testing.T) {
	t.Parallel()

	assert.True(t, Done.Terminal())
	assert.True(t, Error.Terminal())
	assert.True(t, Timeout.Terminal())
	assert.False(t, Running.Terminal())
	assert.False(t, NotStarted.Terminal())
}
