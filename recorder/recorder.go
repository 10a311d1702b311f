// Package recorder keeps the ordered list of test results of a run and
// echoes each one to the console as it is recorded.
package recorder

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"
)

// TimestampLayout is the ISO-8601 layout used for result timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// TestResult is the outcome of one scenario or scenario part.
type TestResult struct {
	Test         string `json:"test"`
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
	ResponseData any    `json:"response_data"`
}

// Recorder appends results in the order they are logged.
type Recorder struct {
	out     io.Writer
	now     func() time.Time
	results []TestResult
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithOutput sets where result lines are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Recorder) {
		r.out = w
	}
}

// WithClock sets the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// New creates an empty recorder.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		out: os.Stdout,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Log records a result and prints it immediately. On failure the response
// data, if any, is printed as well.
func (r *Recorder) Log(test string, success bool, message string, data any) {
	r.results = append(r.results, TestResult{
		Test:         test,
		Success:      success,
		Message:      message,
		Timestamp:    r.now().Format(TimestampLayout),
		ResponseData: data,
	})

	fmt.Fprintf(r.out, "%s %s: %s\n", statusString(success), test, message)
	if data != nil && !success {
		fmt.Fprintf(r.out, "   Response: %s\n", indent(data))
	}
}

// Results returns a copy of the recorded results.
func (r *Recorder) Results() []TestResult {
	out := make([]TestResult, len(r.results))
	copy(out, r.results)
	return out
}

// Len returns the number of recorded results.
func (r *Recorder) Len() int {
	return len(r.results)
}

// Passed counts successful results.
func (r *Recorder) Passed() int {
	count := 0
	for _, res := range r.results {
		if res.Success {
			count++
		}
	}
	return count
}

func statusString(success bool) string {
	if success {
		return "✅ PASS"
	}
	return "❌ FAIL"
}

func indent(data any) string {
	b, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(b)
}
