// Package stage manages the ephemeral scratch space for one execution
// attempt. The engine container binds the scratch pair, never the permanent
// tree, so a killed or failed attempt cannot leave partial results where the
// score extraction would find them.
package stage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// InputDocName is the fixed file name the engine expects inside its bound
// input directory.
const InputDocName = "fold_input.json"

// Handle addresses the scratch pair of one attempt.
type Handle struct {
	JobID     string
	InputDir  string
	OutputDir string
}

// InputDocPath returns the staged location of the fold input document.
func (h Handle) InputDocPath() string {
	return filepath.Join(h.InputDir, InputDocName)
}

// Stager allocates and destroys scratch pairs under a fixed root.
type Stager struct {
	root string
	pid  int
}

// NewStager returns a stager rooted at dir. Scratch names embed both the job
// id and this process id, so two orchestrator instances on the same node
// never collide on scratch space.
func NewStager(dir string) *Stager {
	return &Stager{root: dir, pid: os.Getpid()}
}

// Acquire creates the scratch pair for one attempt of jobID.
func (s *Stager) Acquire(jobID string) (Handle, error) {
	h := Handle{
		JobID:     jobID,
		InputDir:  filepath.Join(s.root, fmt.Sprintf("af3_in_%s_%d", jobID, s.pid)),
		OutputDir: filepath.Join(s.root, fmt.Sprintf("af3_out_%s_%d", jobID, s.pid)),
	}
	if err := os.MkdirAll(h.InputDir, 0o755); err != nil {
		return Handle{}, fmt.Errorf("creating scratch input for %s: %w", jobID, err)
	}
	if err := os.MkdirAll(h.OutputDir, 0o755); err != nil {
		os.RemoveAll(h.InputDir)
		return Handle{}, fmt.Errorf("creating scratch output for %s: %w", jobID, err)
	}
	return h, nil
}

// StageInput copies the job's input artifact into the scratch input
// directory under the name the engine expects.
func (s *Stager) StageInput(h Handle, inputPath string) error {
	if err := copyFile(inputPath, h.InputDocPath()); err != nil {
		return fmt.Errorf("staging input for %s: %w", h.JobID, err)
	}
	return nil
}

// CollectOutput copies everything the engine produced in the scratch output
// directory into the job's permanent output directory.
func (s *Stager) CollectOutput(h Handle, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir for %s: %w", h.JobID, err)
	}
	if err := copyTree(h.OutputDir, destDir); err != nil {
		return fmt.Errorf("collecting output for %s: %w", h.JobID, err)
	}
	return nil
}

// Release removes both scratch directories. It runs on every exit path of an
// attempt, so it tolerates directories that were never created.
func (s *Stager) Release(h Handle) {
	if h.InputDir != "" {
		os.RemoveAll(h.InputDir)
	}
	if h.OutputDir != "" {
		os.RemoveAll(h.OutputDir)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// copyTree mirrors the file tree rooted at src into dst, preserving
// directory structure. Symlinks and other non-regular files are skipped;
// the engine's result layout contains none.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}
