package scenario

import (
	"context"
	"fmt"
	"net/http"
)

const invalidBearerToken = "invalid_token_here"

type tokenValidation struct{}

// TokenValidation calls /auth/me with the current token and expects the
// fixture user back.
func TokenValidation() Scenario {
	return tokenValidation{}
}

func (tokenValidation) Name() string  { return "token-validation" }
func (tokenValidation) Title() string { return "Token Validation" }

func (s tokenValidation) Run(ctx context.Context, env *Env, token string) (Verdict, error) {
	title := s.Title()

	if token == "" {
		env.Recorder.Log(title, false, "No auth token available for validation", nil)
		return keep(token, false), nil
	}

	resp, ok := respond(env, title, "token validation", env.API.Me(ctx, token))
	if !ok {
		return keep(token, false), nil
	}

	if resp.StatusCode != http.StatusOK {
		env.Recorder.Log(title, false, fmt.Sprintf("Token validation failed with status %d", resp.StatusCode), resp.Body)
		return keep(token, false), nil
	}

	if !resp.Has("user") {
		env.Recorder.Log(title, false, "Missing user in token validation response", resp.Body)
		return keep(token, false), nil
	}

	if email := resp.String("user", "email"); email != env.Fixture.Email {
		env.Recorder.Log(title, false, fmt.Sprintf("User email mismatch in token validation. Expected: '%s', Got: '%s'",
			env.Fixture.Email, email), resp.Body)
		return keep(token, false), nil
	}

	env.Recorder.Log(title, true, "JWT token validated successfully", userData(resp))
	return keep(token, true), nil
}

type invalidTokenAccess struct{}

// InvalidTokenAccess presents a bearer token the server never issued.
func InvalidTokenAccess() Scenario {
	return invalidTokenAccess{}
}

func (invalidTokenAccess) Name() string  { return "invalid-token" }
func (invalidTokenAccess) Title() string { return "Invalid Token Access" }

func (s invalidTokenAccess) Run(ctx context.Context, env *Env, token string) (Verdict, error) {
	title := s.Title()

	resp, ok := respond(env, title, "invalid token test", env.API.Me(ctx, invalidBearerToken))
	if !ok {
		return keep(token, false), nil
	}

	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		env.Recorder.Log(title, false, fmt.Sprintf("Expected 401/403 but got %d", resp.StatusCode), resp.Body)
		return keep(token, false), nil
	}

	env.Recorder.Log(title, true, "Correctly rejected invalid token", rejection(resp))
	return keep(token, true), nil
}

type missingTokenAccess struct{}

// MissingTokenAccess calls /auth/me without credentials.
func MissingTokenAccess() Scenario {
	return missingTokenAccess{}
}

func (missingTokenAccess) Name() string  { return "missing-token" }
func (missingTokenAccess) Title() string { return "Missing Token Access" }

func (s missingTokenAccess) Run(ctx context.Context, env *Env, token string) (Verdict, error) {
	title := s.Title()

	resp, ok := respond(env, title, "missing token test", env.API.Me(ctx, ""))
	if !ok {
		return keep(token, false), nil
	}

	if resp.StatusCode != http.StatusUnauthorized {
		env.Recorder.Log(title, false, fmt.Sprintf("Expected 401 but got %d", resp.StatusCode), resp.Body)
		return keep(token, false), nil
	}

	env.Recorder.Log(title, true, "Correctly rejected missing token", rejection(resp))
	return keep(token, true), nil
}
