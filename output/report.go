// Package output turns the recorded results into the run summary and
// persists it as a JSON report.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"authcheck/recorder"
)

// RunSummary is the persisted report of a run
type RunSummary struct {
	TotalTests    int                   `json:"total_tests"`
	Passed        int                   `json:"passed"`
	Failed        int                   `json:"failed"`
	SuccessRate   string                `json:"success_rate"`
	TestUserEmail string                `json:"test_user_email"`
	Timestamp     string                `json:"timestamp"`
	Results       []recorder.TestResult `json:"results"`
	Environment   map[string]any        `json:"environment,omitempty"`
}

// BuildSummary derives the summary from results. env is attached only when
// non-empty.
func BuildSummary(results []recorder.TestResult, email string, now time.Time, env map[string]any) RunSummary {
	if results == nil {
		results = []recorder.TestResult{}
	}
	passed := countPassed(results)
	summary := RunSummary{
		TotalTests:    len(results),
		Passed:        passed,
		Failed:        len(results) - passed,
		SuccessRate:   successRate(passed, len(results)),
		TestUserEmail: email,
		Timestamp:     now.Format(recorder.TimestampLayout),
		Results:       results,
	}
	if len(env) > 0 {
		summary.Environment = env
	}
	return summary
}

// WriteReport writes the summary as indented JSON to path, replacing any
// previous report. Missing parent directories are created.
func WriteReport(path string, summary RunSummary) error {
	data, err := sonic.ConfigStd.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// PrintSaved tells the user where the report went.
func PrintSaved(w io.Writer, path string) {
	fmt.Fprintf(w, "\n📄 Detailed results saved to: %s\n", path)
}

func successRate(passed, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(passed)/float64(total)*100)
}

// countPassed counts the number of passed results
func countPassed(results []recorder.TestResult) int {
	count := 0
	for _, result := range results {
		if result.Success {
			count++
		}
	}
	return count
}
