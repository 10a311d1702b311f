package coordinator

import (
	"context"
	"fmt"

	"authcheck/scenario"
)

// executeScenario runs s with the current token. A returned error or a panic
// is recorded as a failed result titled after the scenario, and the token is
// kept.
func (c *Coordinator) executeScenario(ctx context.Context, s scenario.Scenario) (verdict scenario.Verdict) {
	token := c.token
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Str("scenario", s.Name()).Interface("panic", r).Msg("Scenario panicked")
			c.env.Recorder.Log(s.Title(), false, fmt.Sprintf("Test execution error: %v", r), nil)
			verdict = scenario.Verdict{Passed: false, Token: token}
		}
	}()

	v, err := s.Run(ctx, c.env, token)
	if err != nil {
		c.logger.Error().Err(err).Str("scenario", s.Name()).Msg("Scenario failed to execute")
		c.env.Recorder.Log(s.Title(), false, fmt.Sprintf("Test execution error: %v", err), nil)
		return scenario.Verdict{Passed: false, Token: token}
	}
	return v
}
