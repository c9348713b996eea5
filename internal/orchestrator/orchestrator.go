// Package orchestrator drives one sequential pass over the job catalog.
//
// The driver owns no durable state of its own: everything it needs to resume
// after a kill lives in the marker files, so a fresh process instance picks
// up exactly where the dead one stopped. Jobs are attempted in catalog order
// and never reordered on outcome; one bad job can never block the rest of
// the queue.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/catalog"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/engine"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/report"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/stage"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/status"
)

// Counters is the aggregate tally of one pass. It is derived from per-job
// status and never persisted; completed+failed+skipped always equals Total.
type Counters struct {
	Total     int
	Completed int
	Failed    int
	Skipped   int
	Remaining int
}

// Runner abstracts the engine subprocess for the driver.
type Runner interface {
	Run(ctx context.Context, job catalog.JobSpec, h stage.Handle, timeout time.Duration) engine.Result
}

// Orchestrator wires the store, stager and engine into the single-threaded
// driver loop.
type Orchestrator struct {
	Store    *status.Store
	Stager   *stage.Stager
	Engine   Runner
	Reporter *report.Reporter

	Timeout   time.Duration
	DiagLimit int
}

// Run performs the startup recovery pass followed by one full pass over the
// catalog, and returns the tally. Per-job failures are contained; Run only
// observes ctx for external termination between steps.
func (o *Orchestrator) Run(ctx context.Context, jobs []catalog.JobSpec) Counters {
	o.recover(jobs)

	c := Counters{Total: len(jobs)}
	for i, job := range jobs {
		switch st := o.Store.Get(job.ID); {
		case st == status.Done:
			c.Skipped++
			o.Reporter.Skip(job.ID, st)
		case st == status.Running:
			// Cannot occur after recovery; a marker appearing mid-pass means
			// another instance is writing to the same catalog.
			c.Skipped++
			o.Reporter.Skip(job.ID, st)
		default:
			o.Reporter.StartJob(job.ID, i+1, len(jobs))
			if o.runJob(ctx, job) {
				c.Completed++
			} else {
				c.Failed++
			}
		}
	}

	for _, job := range jobs {
		if o.Store.Get(job.ID) != status.Done {
			c.Remaining++
		}
	}
	return c
}

// recover resets jobs left Running by a previous process instance. The live
// driver is strictly sequential, so any Running marker at startup belongs to
// an attempt that died with the process that made it.
func (o *Orchestrator) recover(jobs []catalog.JobSpec) {
	for _, job := range jobs {
		if o.Store.Get(job.ID) != status.Running {
			continue
		}
		if err := o.Store.ClearRunning(job.ID); err != nil {
			o.Reporter.JobFault(job.ID, err)
			continue
		}
		o.Reporter.Recovered(job.ID)
	}
}

// runJob executes one attempt end to end and reports true on success. Every
// failure mode, including panics from staging or collection, is recorded as
// a terminal marker; nothing propagates past the job boundary.
func (o *Orchestrator) runJob(ctx context.Context, job catalog.JobSpec) (completed bool) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("unexpected fault: %v", p)
			o.recordError(job.ID, engine.ExitCodeUnknown, err.Error(), time.Since(start))
			o.Reporter.JobFault(job.ID, err)
			completed = false
		}
	}()

	if err := o.Store.SetRunning(job.ID); err != nil {
		o.recordError(job.ID, engine.ExitCodeUnknown, err.Error(), 0)
		o.Reporter.JobFault(job.ID, err)
		return false
	}

	h, err := o.Stager.Acquire(job.ID)
	if err != nil {
		o.recordError(job.ID, engine.ExitCodeUnknown, err.Error(), time.Since(start))
		o.Reporter.JobFault(job.ID, err)
		return false
	}
	defer o.Stager.Release(h)

	if err := o.Stager.StageInput(h, job.InputPath); err != nil {
		o.recordError(job.ID, engine.ExitCodeUnknown, err.Error(), time.Since(start))
		o.Reporter.JobFault(job.ID, err)
		return false
	}

	result := o.Engine.Run(ctx, job, h, o.Timeout)

	switch result.Outcome {
	case engine.Success:
		if err := o.Stager.CollectOutput(h, job.OutputDir); err != nil {
			o.recordError(job.ID, engine.ExitCodeUnknown, err.Error(), result.Duration)
			o.Reporter.JobFault(job.ID, err)
			return false
		}
		if err := o.Store.SetDone(job.ID, result.Duration); err != nil {
			o.Reporter.JobFault(job.ID, err)
			return false
		}
		o.Reporter.FinishJob(result)
		return true
	case engine.TimedOut:
		if err := o.Store.SetTimeout(job.ID); err != nil {
			o.Reporter.JobFault(job.ID, err)
		}
		o.Reporter.FinishJob(result)
		return false
	default:
		o.recordError(job.ID, result.ExitCode, result.Diagnostic, result.Duration)
		o.Reporter.FinishJob(result)
		return false
	}
}

// recordError writes the error marker with a bounded diagnostic. Marker
// write failures at this point have nowhere durable left to go; the reporter
// line is the remaining trace.
func (o *Orchestrator) recordError(jobID string, exitCode int, diagnostic string, duration time.Duration) {
	if err := o.Store.SetError(jobID, exitCode, o.bound(diagnostic), duration); err != nil {
		o.Reporter.JobFault(jobID, err)
	}
}

func (o *Orchestrator) bound(text string) string {
	limit := o.DiagLimit
	if limit <= 0 {
		limit = 200
	}
	line := strings.Join(strings.Fields(text), " ")
	return runewidth.Truncate(line, limit, "…")
}
