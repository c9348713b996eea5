// Package status persists per-job state as marker files inside each job's
// output directory. Marker presence is the entire protocol: content is
// free-text diagnostics for the operator and is never parsed back.
//
// The store is the only state that survives a restart. An operator retries a
// failed job by deleting its terminal marker.
package status

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Marker file names, unchanged from the original workflow so existing output
// trees remain readable.
const (
	MarkerRunning = "af3.running"
	MarkerDone    = "af3.done"
	MarkerError   = "af3.error"
	MarkerTimeout = "af3.timeout"
)

// Status is the effective state of one job.
type Status int

const (
	NotStarted Status = iota
	Running
	Done
	Error
	Timeout
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Done:
		return "done"
	case Error:
		return "error"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether the status is absorbing: the orchestrator never
// overwrites it, only the operator can.
func (s Status) Terminal() bool {
	return s == Done || s == Error || s == Timeout
}

// Store reads and writes job markers under a fixed outputs root.
type Store struct {
	root string
	now  func() time.Time
}

// NewStore returns a store rooted at the permanent outputs directory.
func NewStore(root string) *Store {
	return &Store{root: root, now: time.Now}
}

// Dir returns the job's own working directory, created on first write.
func (s *Store) Dir(jobID string) string {
	return filepath.Join(s.root, jobID)
}

// Get derives the effective status from marker presence. When markers
// coexist the precedence is fixed: Done > Running > Error > Timeout >
// NotStarted. Done wins so a finished job is never treated as pending again;
// Running is checked before the failure markers so an apparently in-flight
// attempt is not masked by a stale terminal marker from an earlier run.
func (s *Store) Get(jobID string) Status {
	dir := s.Dir(jobID)
	switch {
	case markerExists(dir, MarkerDone):
		return Done
	case markerExists(dir, MarkerRunning):
		return Running
	case markerExists(dir, MarkerError):
		return Error
	case markerExists(dir, MarkerTimeout):
		return Timeout
	default:
		return NotStarted
	}
}

// SetRunning marks the start of an attempt.
func (s *Store) SetRunning(jobID string) error {
	content := fmt.Sprintf("Started at: %s\n", s.timestamp())
	return s.write(jobID, MarkerRunning, content)
}

// SetDone records a successful attempt and clears the running marker.
func (s *Store) SetDone(jobID string, duration time.Duration) error {
	content := fmt.Sprintf("Completed at: %s\nDuration: %.1f seconds\n",
		s.timestamp(), duration.Seconds())
	if err := s.write(jobID, MarkerDone, content); err != nil {
		return err
	}
	return s.ClearRunning(jobID)
}

// SetError records a failed attempt. exitCode is -1 when the failure
// happened outside the engine subprocess.
func (s *Store) SetError(jobID string, exitCode int, diagnostic string, duration time.Duration) error {
	content := fmt.Sprintf("Failed at: %s\nReturn code: %d\nDuration: %.1f seconds\n",
		s.timestamp(), exitCode, duration.Seconds())
	if diagnostic != "" {
		content += "\nSTDERR:\n" + diagnostic + "\n"
	}
	if err := s.write(jobID, MarkerError, content); err != nil {
		return err
	}
	return s.ClearRunning(jobID)
}

// SetTimeout records an attempt that exceeded the wall-clock bound.
func (s *Store) SetTimeout(jobID string) error {
	content := fmt.Sprintf("Timed out at: %s\n", s.timestamp())
	if err := s.write(jobID, MarkerTimeout, content); err != nil {
		return err
	}
	return s.ClearRunning(jobID)
}

// ClearRunning removes the running marker. It is idempotent: a missing
// marker is not an error, so recovery can call it unconditionally.
func (s *Store) ClearRunning(jobID string) error {
	err := os.Remove(filepath.Join(s.Dir(jobID), MarkerRunning))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing running marker for %s: %w", jobID, err)
	}
	return nil
}

// write creates a marker through a temp file and rename in the same
// directory, so an interrupted write never leaves a partially visible
// marker.
func (s *Store) write(jobID, marker, content string) error {
	dir := s.Dir(jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating job dir for %s: %w", jobID, err)
	}

	tmp, err := os.CreateTemp(dir, marker+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing %s for %s: %w", marker, jobID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s for %s: %w", marker, jobID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s for %s: %w", marker, jobID, err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, marker)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("placing %s for %s: %w", marker, jobID, err)
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().Format("2006-01-02 15:04:05")
}

func markerExists(dir, marker string) bool {
	_, err := os.Stat(filepath.Join(dir, marker))
	return err == nil
}
