// af3scores summarizes confidence metrics across a prediction output tree.
//
// Usage:
//
//	af3scores [outputs-dir]
//
// The outputs directory defaults to the configured AF3_OUTPUTS_DIR. For
// every job directory it reports status and, for completed jobs, the
// ranking score, pTM and ipTM from the engine's summary document. The full
// table is written to confidence_scores.csv inside the outputs directory.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/config"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/report"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/scores"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/status"
)

const csvName = "confidence_scores.csv"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	outputsDir, code := resolveOutputsDir(args, stderr)
	if code != 0 {
		return code
	}

	records, err := scores.Collect(outputsDir)
	if err != nil {
		fmt.Fprintf(stderr, "af3scores: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Fprintf(stderr, "af3scores: no job directories in %s\n", outputsDir)
		return 2
	}

	render(stdout, records)

	csvPath := filepath.Join(outputsDir, csvName)
	f, err := os.Create(csvPath)
	if err != nil {
		fmt.Fprintf(stderr, "af3scores: %v\n", err)
		return 1
	}
	if err := scores.WriteCSV(f, records); err != nil {
		f.Close()
		fmt.Fprintf(stderr, "af3scores: writing %s: %v\n", csvPath, err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(stderr, "af3scores: writing %s: %v\n", csvPath, err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", csvPath)
	return 0
}

func resolveOutputsDir(args []string, stderr io.Writer) (string, int) {
	if len(args) > 1 {
		fmt.Fprintln(stderr, "usage: af3scores [outputs-dir]")
		return "", 2
	}
	if len(args) == 1 {
		return args[0], 0
	}
	cfg, err := config.Resolve()
	if err != nil {
		fmt.Fprintf(stderr, "af3scores: %v\n", err)
		return "", 1
	}
	if cfg.OutputsDir == "" {
		fmt.Fprintln(stderr, "af3scores: outputs dir not configured (AF3_OUTPUTS_DIR) and not given as argument")
		return "", 1
	}
	return cfg.OutputsDir, 0
}

func render(w io.Writer, records []scores.Record) {
	th := themeFor(w)
	done := 0
	for _, rec := range records {
		switch rec.Status {
		case status.Done:
			done++
			line := fmt.Sprintf("%-40s  ranking %s  ptm %s  iptm %s  %s",
				rec.Name, num(rec.RankingScore), num(rec.PTM), num(rec.IPTM),
				scores.Category(rec.RankingScore))
			fmt.Fprintf(w, "%s %s\n", th.Success.Render(th.Icons.Pass), line)
		case status.Error:
			fmt.Fprintf(w, "%s %s\n", th.Error.Render(th.Icons.Fail),
				th.Error.Render(fmt.Sprintf("%-40s  %s", rec.Name, rec.ErrorMessage)))
		default:
			fmt.Fprintf(w, "%s %s\n", th.Muted.Render(th.Icons.Skip),
				th.Muted.Render(fmt.Sprintf("%-40s  %s", rec.Name, rec.Status)))
		}
	}
	fmt.Fprintf(w, "%s\n", th.Bold.Render(fmt.Sprintf("%d/%d predictions completed", done, len(records))))
}

func themeFor(w io.Writer) report.Theme {
	if r := report.New(w); r.Styled {
		return report.DefaultTheme()
	}
	return report.MonoTheme()
}

func num(v *float64) string {
	if v == nil {
		return "  n/a "
	}
	return fmt.Sprintf("%6.3f", *v)
}
