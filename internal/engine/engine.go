// Package engine invokes the AlphaFold3 container as a timed subprocess.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/catalog"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/config"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/stage"
)

// Outcome classifies one execution attempt.
type Outcome int

const (
	Success Outcome = iota
	Failure
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case TimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ExitCodeUnknown means no exit code was observed for the attempt.
const ExitCodeUnknown = -1

// Result is the immutable record of one execution attempt.
type Result struct {
	JobID      string
	Outcome    Outcome
	Duration   time.Duration
	ExitCode   int    // ExitCodeUnknown unless the engine exited on its own
	Diagnostic string // bounded single-line stderr excerpt, empty on success
}

// stderrTailCap bounds how much raw stderr is retained before the display
// truncation is applied. The engine logs continuously for hours; only the
// tail explains a failure.
const stderrTailCap = 8 * 1024

// waitDelay gives the process group a grace period to die before Wait stops
// waiting on inherited pipe readers.
const waitDelay = 10 * time.Second

// Executor runs the engine once per call. The zero value is not usable; use
// New, or populate CommandFunc directly in tests.
type Executor struct {
	Container string
	ModelDir  string
	DBDir     string
	DiagLimit int

	// CommandFunc builds the subprocess invocation for one staged attempt.
	// The default is the apptainer command line; tests substitute a stub
	// engine.
	CommandFunc func(h stage.Handle) (string, []string)
}

// New returns an Executor bound to the configured container and resource
// directories.
func New(cfg *config.Config) *Executor {
	e := &Executor{
		Container: cfg.Container,
		ModelDir:  cfg.ModelDir,
		DBDir:     cfg.DBDir,
		DiagLimit: cfg.DiagLimit,
	}
	e.CommandFunc = e.apptainerCommand
	return e
}

// apptainerCommand is the production invocation: the container binds the
// scratch pair plus the fixed model and database directories, and the engine
// reads the staged fold_input.json.
func (e *Executor) apptainerCommand(h stage.Handle) (string, []string) {
	return "apptainer", []string{
		"exec", "--nv",
		"--bind", h.InputDir + ":/root/af_input",
		"--bind", h.OutputDir + ":/root/af_output",
		"--bind", e.ModelDir + ":/root/models",
		"--bind", e.DBDir + ":/root/public_databases",
		e.Container,
		"python", "/app/alphafold/run_alphafold.py",
		"--json_path=/root/af_input/" + stage.InputDocName,
		"--model_dir=/root/models",
		"--db_dir=/root/public_databases",
		"--output_dir=/root/af_output",
	}
}

// Run blocks until the engine exits or timeout elapses, whichever is first.
// On timeout the whole process group is SIGKILLed; the subprocess is never
// left running unattended. Run itself never returns an error: every failure
// mode is folded into the Result so the caller's pass continues.
func (e *Executor) Run(ctx context.Context, job catalog.JobSpec, h stage.Handle, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name, args := e.CommandFunc(h)
	cmd := exec.CommandContext(ctx, name, args...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	var stderr tailWriter
	stderr.cap = stderrTailCap
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := Result{
		JobID:    job.ID,
		Duration: duration,
		ExitCode: ExitCodeUnknown,
	}

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		result.Outcome = TimedOut
	case err == nil:
		result.Outcome = Success
	default:
		result.Outcome = Failure
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			result.Diagnostic = e.bound(stderr.String())
		} else {
			// Startup failure: the engine never ran (missing binary,
			// permissions).
			result.Diagnostic = e.bound(err.Error())
		}
	}
	return result
}

// bound condenses text to a single line and truncates it to the configured
// display width.
func (e *Executor) bound(text string) string {
	line := strings.Join(strings.Fields(text), " ")
	limit := e.DiagLimit
	if limit <= 0 {
		limit = config.DefaultDiagLimit
	}
	return runewidth.Truncate(line, limit, "…")
}

// tailWriter keeps the last cap bytes written to it.
type tailWriter struct {
	cap int
	buf []byte
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	if len(w.buf) > w.cap {
		w.buf = w.buf[len(w.buf)-w.cap:]
	}
	return len(p), nil
}

func (w *tailWriter) String() string {
	return string(w.buf)
}
