// af3batch runs the AlphaFold3 prediction queue sequentially inside one
// SLURM allocation.
//
// Usage:
//
//	AF3_INPUTS_DIR=... AF3_OUTPUTS_DIR=... AF3_MODEL_DIR=... \
//	DB_DIR=... ALPHAFOLD_DIR=... af3batch
//
// There are no flags. Every path comes from af3queue.yaml or the
// environment, so the same submission script works across resubmits. The
// process exits 0 after a completed pass over a non-empty catalog regardless
// of individual job outcomes, 1 on a configuration error, and 2 when the
// catalog is empty.
//
// A killed process (preemption, wall-time expiry) leaves the in-flight job's
// running marker behind; the next invocation resets it and retries. Failed
// jobs are retried by deleting their af3.error or af3.timeout marker.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/catalog"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/config"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/engine"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/orchestrator"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/report"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/stage"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/status"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/version"
)

const (
	exitOK           = 0
	exitConfig       = 1
	exitEmptyCatalog = 2
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr))
}

func run(stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "af3batch: %v\n", err)
		return exitConfig
	}

	if err := os.MkdirAll(cfg.OutputsDir, 0o755); err != nil {
		fmt.Fprintf(stderr, "af3batch: creating outputs dir: %v\n", err)
		return exitConfig
	}

	jobs, err := catalog.Discover(cfg.InputsDir, cfg.OutputsDir)
	if err != nil {
		fmt.Fprintf(stderr, "af3batch: %v\n", err)
		return exitConfig
	}
	if len(jobs) == 0 {
		fmt.Fprintf(stderr, "af3batch: no fold input documents in %s\n", cfg.InputsDir)
		return exitEmptyCatalog
	}

	reporter := report.New(stdout)
	fmt.Fprintf(stdout, "af3batch %s\n", version.Version)
	reporter.Header(len(jobs), cfg.JobTimeout)

	orch := &orchestrator.Orchestrator{
		Store:     status.NewStore(cfg.OutputsDir),
		Stager:    stage.NewStager(cfg.ScratchDir),
		Engine:    engine.New(cfg),
		Reporter:  reporter,
		Timeout:   cfg.JobTimeout,
		DiagLimit: cfg.DiagLimit,
	}

	// No signal trapping: an external kill must leave the running marker in
	// place so the next invocation's recovery pass retries the job.
	c := orch.Run(context.Background(), jobs)
	reporter.Summary(c.Total, c.Completed, c.Failed, c.Skipped, c.Remaining)
	return exitOK
}
