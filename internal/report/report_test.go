package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/engine"
	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/status"
)

func plainReporter() (*Reporter, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Reporter{Out: &buf}, &buf
}

func TestNew_DisablesStyling_When_WriterIsNotTerminal(t *testing.T) {
	t.Parallel()

	r := New(&bytes.Buffer{})
	assert.False(t, r.Styled)
}

func TestFinishJob_PrintsOutcomeLines_When_Plain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result engine.Result
		want   []string
	}{
		{
			name:   "success",
			result: engine.Result{JobID: "jobA", Outcome: engine.Success, Duration: 95 * time.Second},
			want:   []string{"ok", "jobA", "1m35s"},
		},
		{
			name: "failure with diagnostic",
			result: engine.Result{
				JobID: "jobB", Outcome: engine.Failure, ExitCode: 137,
				Duration: 3 * time.Second, Diagnostic: "out of memory",
			},
			want: []string{"FAIL", "jobB", "exit 137", "out of memory"},
		},
		{
			name:   "timeout",
			result: engine.Result{JobID: "jobC", Outcome: engine.TimedOut, Duration: 4 * time.Hour},
			want:   []string{"TIMEOUT", "jobC", "4h0m0s"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r, buf := plainReporter()
			r.FinishJob(tc.result)
			for _, fragment := range tc.want {
				assert.Contains(t, buf.String(), fragment)
			}
		})
	}
}

func TestStartJob_PrintsSingleLine_When_Plain(t *testing.T) {
	t.Parallel()

	r, buf := plainReporter()
	r.StartJob("jobA", 2, 5)

	assert.Equal(t, "> [2/5] jobA\n", buf.String())
	assert.Nil(t, r.active, "no spinner off-terminal")
}

func TestSkip_FlagsAnomaly_When_StatusIsNotDone(t *testing.T) {
	t.Parallel()

	r, buf := plainReporter()
	r.Skip("jobA", status.Done)
	r.Skip("jobB", status.Running)

	out := buf.String()
	assert.Contains(t, out, "jobA: skipped (done)")
	assert.Contains(t, out, "jobB: skipped (running)")
}

func TestSummary_PrintsTally(t *testing.T) {
	t.Parallel()

	r, buf := plainReporter()
	r.Summary(10, 6, 1, 3, 1)

	out := buf.String()
	assert.Contains(t, out, "completed: 6")
	assert.Contains(t, out, "failed:    1")
	assert.Contains(t, out, "skipped:   3")
	assert.Contains(t, out, "total: 10, remaining: 1")
}

func TestLabel_TruncatesByDisplayWidth_When_IDIsLong(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("AT2G16950_", 12)
	got := label(long)
	assert.Less(t, len(got), len(long))
	assert.True(t, strings.HasSuffix(got, "…"))
}
