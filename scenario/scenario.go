// Package scenario holds the authentication scenarios run against the
// backend. Each scenario issues one or more requests, checks the replies
// against the expected contract and records the outcome.
package scenario

import (
	"context"
	"fmt"
	"sort"

	"authcheck/apiclient"
	"authcheck/recorder"
)

// API is the set of backend calls the scenarios make.
type API interface {
	Health(ctx context.Context) apiclient.Outcome
	Register(ctx context.Context, name, email, password string) apiclient.Outcome
	Login(ctx context.Context, email, password string) apiclient.Outcome
	Me(ctx context.Context, token string) apiclient.Outcome
	ForgotPassword(ctx context.Context, email string) apiclient.Outcome
	ResetPassword(ctx context.Context, payload map[string]any) apiclient.Outcome
	Preflight(ctx context.Context, origin string) apiclient.Outcome
}

// Env is what a scenario needs to run.
type Env struct {
	API        API
	Recorder   *recorder.Recorder
	Fixture    Fixture
	CORSOrigin string
}

// Verdict is the result of running a scenario. Token is the bearer token to
// hand to the next scenario.
type Verdict struct {
	Passed bool
	Token  string
}

// Scenario is one self-contained check against the backend.
type Scenario interface {
	// Name is the registry key, e.g. "register-user".
	Name() string

	// Title is the test name recorded in results.
	Title() string

	// Run executes the scenario with the current token. Expected failures
	// are recorded, not returned; a returned error means the scenario
	// itself could not execute.
	Run(ctx context.Context, env *Env, token string) (Verdict, error)
}

var registry = map[string]func() Scenario{
	"register-user":         RegisterUser,
	"login-user":            LoginUser,
	"token-validation":      TokenValidation,
	"invalid-credentials":   InvalidCredentialsLogin,
	"duplicate-email":       DuplicateEmailRegistration,
	"invalid-token":         InvalidTokenAccess,
	"missing-token":         MissingTokenAccess,
	"forgot-password":       ForgotPassword,
	"reset-password-matrix": ResetPasswordValidation,
	"cors-preflight":        CORSPreflight,
}

// Default returns the standard suite in execution order. The CORS
// preflight is opt-in and not part of it.
func Default() []Scenario {
	return []Scenario{
		RegisterUser(),
		LoginUser(),
		TokenValidation(),
		InvalidCredentialsLogin(),
		DuplicateEmailRegistration(),
		InvalidTokenAccess(),
		MissingTokenAccess(),
		ForgotPassword(),
		ResetPasswordValidation(),
	}
}

// Lookup creates the scenario registered under name.
func Lookup(name string) (Scenario, error) {
	factory, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("scenario %s not found", name)
	}
	return factory(), nil
}

// Resolve maps names to scenarios, keeping their order. No names means the
// default suite.
func Resolve(names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return Default(), nil
	}

	scenarios := make([]Scenario, 0, len(names))
	for _, name := range names {
		s, err := Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("unsupported scenario '%s'. Available scenarios: %v", name, Names())
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Names returns all registered scenario names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
