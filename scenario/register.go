package scenario

import (
	"context"
	"fmt"
	"net/http"
)

const (
	duplicateName     = "Another Test User"
	duplicatePassword = "AnotherPassword123!"
)

type registerUser struct{}

// RegisterUser registers the fixture user and captures the issued token.
func RegisterUser() Scenario {
	return registerUser{}
}

func (registerUser) Name() string  { return "register-user" }
func (registerUser) Title() string { return "User Registration" }

func (s registerUser) Run(ctx context.Context, env *Env, token string) (Verdict, error) {
	title := s.Title()
	f := env.Fixture

	resp, ok := respond(env, title, "registration", env.API.Register(ctx, f.Name, f.Email, f.Password))
	if !ok {
		return keep(token, false), nil
	}

	if resp.StatusCode != http.StatusCreated {
		env.Recorder.Log(title, false, fmt.Sprintf("Registration failed with status %d", resp.StatusCode), resp.Body)
		return keep(token, false), nil
	}

	issued := resp.String("token")
	if issued == "" || !resp.Has("user") {
		env.Recorder.Log(title, false, "Missing token or user in response", resp.Body)
		return keep(token, false), nil
	}

	email, name := resp.String("user", "email"), resp.String("user", "name")
	if email != f.Email || name != f.Name {
		env.Recorder.Log(title, false, fmt.Sprintf("User data mismatch in response. Expected: '%s' / '%s', Got: '%s' / '%s'",
			f.Email, f.Name, email, name), resp.Body)
		return keep(token, false), nil
	}

	data := userData(resp)
	data["has_token"] = true
	data["token"] = describeToken(issued)
	env.Recorder.Log(title, true, "User registered successfully with JWT token", data)
	return Verdict{Passed: true, Token: issued}, nil
}

type duplicateEmailRegistration struct{}

// DuplicateEmailRegistration registers the fixture email a second time and
// expects a conflict.
func DuplicateEmailRegistration() Scenario {
	return duplicateEmailRegistration{}
}

func (duplicateEmailRegistration) Name() string  { return "duplicate-email" }
func (duplicateEmailRegistration) Title() string { return "Duplicate Email Registration" }

func (s duplicateEmailRegistration) Run(ctx context.Context, env *Env, token string) (Verdict, error) {
	title := s.Title()

	out := env.API.Register(ctx, duplicateName, env.Fixture.Email, duplicatePassword)
	resp, ok := respond(env, title, "duplicate email test", out)
	if !ok {
		return keep(token, false), nil
	}

	if resp.StatusCode != http.StatusConflict {
		env.Recorder.Log(title, false, fmt.Sprintf("Expected 409 but got %d", resp.StatusCode), resp.Body)
		return keep(token, false), nil
	}

	env.Recorder.Log(title, true, "Correctly rejected duplicate email", rejection(resp))
	return keep(token, true), nil
}
