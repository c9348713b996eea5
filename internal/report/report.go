// Package report is the console surface of a batch run: one line per job,
// recovery notices, and the final tally. Output is lipgloss-styled on an
// interactive terminal and plain ASCII when piped to a SLURM log; either
// way it is append-only, so logs stay readable after the fact.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/engine"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/status"
)

// maxLabel bounds job ids in progress lines so columns survive long
// accession pairs.
const maxLabel = 48

// Reporter writes the run's console output. The zero value writes plain
// text; New enables styling when the writer is an interactive terminal.
type Reporter struct {
	Out    io.Writer
	Styled bool

	active *spinner
}

// New returns a Reporter for w, styled when w is a TTY and NO_COLOR is
// unset.
func New(w io.Writer) *Reporter {
	return &Reporter{Out: w, Styled: isTTY(w) && os.Getenv("NO_COLOR") == ""}
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *Reporter) theme() Theme {
	if r.Styled {
		return DefaultTheme()
	}
	return MonoTheme()
}

// Header announces the pass before the first job is attempted.
func (r *Reporter) Header(total int, timeout time.Duration) {
	th := r.theme()
	fmt.Fprintln(r.Out, th.Bold.Render("AlphaFold3 sequential batch runner"))
	fmt.Fprintf(r.Out, "%s\n", th.Muted.Render(fmt.Sprintf("%d job(s) in catalog, %s timeout per job", total, timeout)))
}

// Recovered logs the startup-recovery reset of a stale running marker left
// by a previous process instance.
func (r *Reporter) Recovered(jobID string) {
	th := r.theme()
	fmt.Fprintf(r.Out, "%s %s\n",
		th.Warning.Render(th.Icons.Run),
		th.Warning.Render(fmt.Sprintf("%s: recovered stale running marker, job reset", label(jobID))))
}

// Skip logs a job the pass does not attempt. Done is routine; anything else
// is an anomaly worth flagging.
func (r *Reporter) Skip(jobID string, st status.Status) {
	th := r.theme()
	line := fmt.Sprintf("%s: skipped (%s)", label(jobID), st)
	if st == status.Done {
		fmt.Fprintf(r.Out, "%s %s\n", th.Muted.Render(th.Icons.Skip), th.Muted.Render(line))
		return
	}
	fmt.Fprintf(r.Out, "%s %s\n", th.Warning.Render(th.Icons.Skip), th.Warning.Render(line))
}

// StartJob announces an attempt. On a styled terminal it starts a spinner
// with a live elapsed timer; FinishJob stops it.
func (r *Reporter) StartJob(jobID string, index, total int) {
	th := r.theme()
	line := fmt.Sprintf("[%d/%d] %s", index, total, label(jobID))
	if !r.Styled {
		fmt.Fprintf(r.Out, "%s %s\n", th.Icons.Run, line)
		return
	}
	start := time.Now()
	r.active = newSpinner(r.Out, func() string {
		return fmt.Sprintf("%s  %s", line, time.Since(start).Round(time.Second))
	})
	r.active.Start()
}

// FinishJob prints the outcome of an attempt, replacing the spinner line if
// one is running.
func (r *Reporter) FinishJob(result engine.Result) {
	r.stopSpinner()
	th := r.theme()
	dur := result.Duration.Round(time.Second)
	switch result.Outcome {
	case engine.Success:
		fmt.Fprintf(r.Out, "%s %s\n",
			th.Success.Render(th.Icons.Pass),
			fmt.Sprintf("%s: done in %s", label(result.JobID), dur))
	case engine.TimedOut:
		fmt.Fprintf(r.Out, "%s %s\n",
			th.Error.Render(th.Icons.Timeout),
			th.Error.Render(fmt.Sprintf("%s: timed out after %s", label(result.JobID), dur)))
	default:
		line := fmt.Sprintf("%s: failed (exit %d) after %s", label(result.JobID), result.ExitCode, dur)
		if result.Diagnostic != "" {
			line += ": " + result.Diagnostic
		}
		fmt.Fprintf(r.Out, "%s %s\n", th.Error.Render(th.Icons.Fail), th.Error.Render(line))
	}
}

// JobFault prints a staging or collection failure recorded as an error
// outcome.
func (r *Reporter) JobFault(jobID string, err error) {
	r.stopSpinner()
	th := r.theme()
	fmt.Fprintf(r.Out, "%s %s\n",
		th.Error.Render(th.Icons.Fail),
		th.Error.Render(fmt.Sprintf("%s: %v", label(jobID), err)))
}

// Summary prints the aggregate tally after the pass.
func (r *Reporter) Summary(total, completed, failed, skipped, remaining int) {
	th := r.theme()
	fmt.Fprintln(r.Out, th.Bold.Render("Batch pass complete"))
	fmt.Fprintf(r.Out, "  %s\n", th.Success.Render(fmt.Sprintf("%s completed: %d", th.Icons.Pass, completed)))
	fmt.Fprintf(r.Out, "  %s\n", th.Error.Render(fmt.Sprintf("%s failed:    %d", th.Icons.Fail, failed)))
	fmt.Fprintf(r.Out, "  %s\n", th.Muted.Render(fmt.Sprintf("%s skipped:   %d", th.Icons.Skip, skipped)))
	fmt.Fprintf(r.Out, "  %s\n", th.Muted.Render(fmt.Sprintf("total: %d, remaining: %d", total, remaining)))
}

func (r *Reporter) stopSpinner() {
	if r.active != nil {
		r.active.Stop()
		r.active = nil
	}
}

func label(jobID string) string {
	return runewidth.Truncate(jobID, maxLabel, "…")
}
