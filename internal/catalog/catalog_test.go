package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_ReturnsSortedSpecs_When_InputsPresent(t *testing.T) {
	t.Parallel()

	inputs := t.TempDir()
	outputs := t.TempDir()
	for _, name := range []string{
		"AT2G16950_AT5G64200.json",
		"AT2G16950_AT1G02870.1.json",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(inputs, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(inputs, "archive.json"), 0o755))

	jobs, err := Discover(inputs, outputs)
	require.NoError(t, err)

	require.Len(t, jobs, 2, "non-JSON files and directories are skipped")
	assert.Equal(t, "AT2G16950_AT1G02870.1", jobs[0].ID)
	assert.Equal(t, "AT2G16950_AT5G64200", jobs[1].ID)
	assert.Equal(t, filepath.Join(inputs, "AT2G16950_AT1G02870.1.json"), jobs[0].InputPath)
	assert.Equal(t, filepath.Join(outputs, "AT2G16950_AT1G02870.1"), jobs[0].OutputDir)
}

func TestDiscover_ReturnsEmpty_When_NoJSONInputs(t *testing.T) {
	t.Parallel()

	jobs, err := Discover(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestDiscover_ReturnsError_When_InputsDirMissing(t *testing.T) {
	t.Parallel()

	_, err := Discover(filepath.Join(t.TempDir(), "absent"), t.TempDir())
	assert.Error(t, err)
}
