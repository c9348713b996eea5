// Package scores reads confidence metrics out of completed prediction
// output directories. It consumes the engine's native result layout and the
// same marker protocol the runner writes; it never modifies either.
package scores

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/status"
)

// errExcerptLimit bounds how much of an error marker is carried into a
// record.
const errExcerptLimit = 200

// Record is the per-job row of the score summary.
type Record struct {
	Name               string
	Status             status.Status
	RankingScore       *float64 // AF3's primary confidence metric
	PTM                *float64
	IPTM               *float64
	FractionDisordered *float64
	HasClash           *bool
	ErrorMessage       string
}

// summaryDoc mirrors the fields of *_summary_confidences.json this tool
// reads.
type summaryDoc struct {
	RankingScore       *float64 `json:"ranking_score"`
	PTM                *float64 `json:"ptm"`
	IPTM               *float64 `json:"iptm"`
	FractionDisordered *float64 `json:"fraction_disordered"`
	HasClash           *bool    `json:"has_clash"`
}

// Collect builds one record per job directory under outputsDir, sorted by
// name. Jobs that are not Done carry their status and, for errors, a bounded
// excerpt of the error marker; only Done jobs are parsed for scores.
func Collect(outputsDir string) ([]Record, error) {
	entries, err := os.ReadDir(outputsDir)
	if err != nil {
		return nil, fmt.Errorf("reading outputs dir %s: %w", outputsDir, err)
	}

	store := status.NewStore(outputsDir)
	var records []Record
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		records = append(records, Extract(store, outputsDir, entry.Name()))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// Extract builds the record for one job directory.
func Extract(store *status.Store, outputsDir, name string) Record {
	rec := Record{Name: name, Status: store.Get(name)}

	switch rec.Status {
	case status.Error:
		rec.ErrorMessage = markerExcerpt(filepath.Join(outputsDir, name, status.MarkerError))
		return rec
	case status.Done:
		// fall through to score parsing
	default:
		return rec
	}

	summaryPath := findSummaryFile(filepath.Join(outputsDir, name), name)
	if summaryPath == "" {
		rec.ErrorMessage = "no summary_confidences.json in output tree"
		return rec
	}

	data, err := os.ReadFile(summaryPath)
	if err != nil {
		rec.ErrorMessage = fmt.Sprintf("reading %s: %v", filepath.Base(summaryPath), err)
		return rec
	}
	var doc summaryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		rec.ErrorMessage = fmt.Sprintf("parsing %s: %v", filepath.Base(summaryPath), err)
		return rec
	}

	rec.RankingScore = doc.RankingScore
	rec.PTM = doc.PTM
	rec.IPTM = doc.IPTM
	rec.FractionDisordered = doc.FractionDisordered
	rec.HasClash = doc.HasClash
	if rec.RankingScore == nil {
		rec.ErrorMessage = fmt.Sprintf("no ranking_score in %s", filepath.Base(summaryPath))
	}
	return rec
}

// findSummaryFile locates the top-ranked summary document. The engine nests
// it under a lowercased copy of the job name; older layouts vary, so the
// fallback is a recursive search.
func findSummaryFile(jobDir, name string) string {
	lower := strings.ToLower(name)
	expected := filepath.Join(jobDir, lower, lower+"_summary_confidences.json")
	if _, err := os.Stat(expected); err == nil {
		return expected
	}

	var found string
	_ = filepath.WalkDir(jobDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return filepath.SkipAll
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), "summary_confidences.json") {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func markerExcerpt(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "error marker unreadable"
	}
	line := strings.Join(strings.Fields(string(data)), " ")
	return runewidth.Truncate(line, errExcerptLimit, "…")
}

// Category bands a ranking score for the summary table.
func Category(rankingScore *float64) string {
	switch {
	case rankingScore == nil:
		return "Unknown"
	case *rankingScore >= 0.8:
		return "Very High"
	case *rankingScore >= 0.6:
		return "High"
	case *rankingScore >= 0.4:
		return "Medium"
	case *rankingScore >= 0.2:
		return "Low"
	default:
		return "Very Low"
	}
}

// WriteCSV writes the summary the downstream analysis notebooks read.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	header := []string{
		"prediction_name", "status", "ranking_score", "ptm", "iptm",
		"fraction_disordered", "has_clash", "confidence_category", "error_message",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.Name,
			rec.Status.String(),
			formatFloat(rec.RankingScore),
			formatFloat(rec.PTM),
			formatFloat(rec.IPTM),
			formatFloat(rec.FractionDisordered),
			formatBool(rec.HasClash),
			Category(rec.RankingScore),
			rec.ErrorMessage,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
