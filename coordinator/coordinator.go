// Package coordinator drives a run: health check first, then every scenario
// in order with a pause in between, threading the bearer token along.
package coordinator

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"authcheck/scenario"
)

const (
	// DefaultPause is the delay between two scenarios.
	DefaultPause = 500 * time.Millisecond

	bannerTitle = "🚀 Starting EmailCraft Pro Authentication Tests"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPause sets the delay between scenarios.
func WithPause(d time.Duration) Option {
	return func(c *Coordinator) { c.pause = d }
}

// WithOutput sets where the banners are printed.
func WithOutput(w io.Writer) Option {
	return func(c *Coordinator) { c.out = w }
}

// WithLogger sets the operational logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithSleep replaces the pause implementation.
func WithSleep(fn SleepFunc) Option {
	return func(c *Coordinator) { c.sleep = fn }
}

// WithHealthCheck replaces the health check scenario.
func WithHealthCheck(s scenario.Scenario) Option {
	return func(c *Coordinator) { c.health = s }
}

// Coordinator manages one run of the scenarios
type Coordinator struct {
	env       *scenario.Env
	health    scenario.Scenario
	scenarios []scenario.Scenario

	pause  time.Duration
	out    io.Writer
	logger zerolog.Logger
	sleep  SleepFunc

	state State
	token string
}

// NewCoordinator creates a coordinator for the given scenarios.
func NewCoordinator(env *scenario.Env, scenarios []scenario.Scenario, opts ...Option) *Coordinator {
	c := &Coordinator{
		env:       env,
		health:    scenario.HealthCheck(),
		scenarios: scenarios,
		pause:     DefaultPause,
		out:       os.Stdout,
		logger:    zerolog.Nop(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Coordinator) State() State {
	return c.state
}

// Token returns the bearer token held after the last scenario.
func (c *Coordinator) Token() string {
	return c.token
}

// Run executes the health check and, if it passes, every scenario. It may
// only be called once.
func (c *Coordinator) Run(ctx context.Context) (Tally, error) {
	if c.state != StateNotStarted {
		return Tally{}, fmt.Errorf("coordinator already ran (state %s)", c.state)
	}

	tally := Tally{Total: len(c.scenarios)}

	fmt.Fprintln(c.out, bannerTitle)
	fmt.Fprintln(c.out, strings.Repeat("=", 60))

	healthy := c.executeScenario(ctx, c.health).Passed
	c.transition(StateHealthChecked)
	if !healthy {
		c.transition(StateAborted)
		fmt.Fprintln(c.out, "\n❌ Server is not running. Please start the backend server first.")
		return tally, nil
	}

	fmt.Fprintf(c.out, "\n📧 Testing with user: %s\n", c.env.Fixture.Email)
	fmt.Fprintln(c.out, strings.Repeat("-", 60))

	c.transition(StateRunning)
	for i, s := range c.scenarios {
		if i > 0 {
			c.sleep(ctx, c.pause)
		}

		c.logger.Debug().Str("scenario", s.Name()).Int("index", i+1).Int("total", len(c.scenarios)).Msg("Running scenario")
		verdict := c.executeScenario(ctx, s)
		c.token = verdict.Token
		if verdict.Passed {
			tally.Passed++
		}
	}
	c.transition(StateDone)

	tally.Success = tally.Passed == tally.Total

	fmt.Fprintln(c.out, "\n"+strings.Repeat("=", 60))
	fmt.Fprintf(c.out, "📊 Test Results: %d/%d tests passed\n", tally.Passed, tally.Total)
	if tally.Success {
		fmt.Fprintln(c.out, "🎉 All authentication tests PASSED!")
	} else {
		fmt.Fprintf(c.out, "⚠️  %d test(s) FAILED\n", tally.Failed())
	}

	return tally, nil
}

func (c *Coordinator) transition(next State) {
	c.logger.Debug().Stringer("from", c.state).Stringer("to", next).Msg("State transition")
	c.state = next
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
