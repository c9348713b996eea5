// Package catalog enumerates the jobs a batch run will attempt.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// JobSpec identifies one prediction job. The id is the stem of the fold
// input document and is stable across runs; it names the job's permanent
// output directory and keys every marker and score downstream.
type JobSpec struct {
	ID        string
	InputPath string // fold input JSON document
	OutputDir string // permanent output directory for this job
}

// Discover lists every *.json input artifact under inputsDir as a JobSpec,
// sorted by id. The order is deterministic and never depends on runtime
// outcomes, so interrupted passes resume over the same sequence.
func Discover(inputsDir, outputsDir string) ([]JobSpec, error) {
	entries, err := os.ReadDir(inputsDir)
	if err != nil {
		return nil, fmt.Errorf("reading inputs dir %s: %w", inputsDir, err)
	}

	var jobs []JobSpec
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		jobs = append(jobs, JobSpec{
			ID:        id,
			InputPath: filepath.Join(inputsDir, entry.Name()),
			OutputDir: filepath.Join(outputsDir, id),
		})
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}
