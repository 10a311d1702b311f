package scenario

import (
	"context"
	"fmt"
	"net/http"
)

// Credentials used for the negative login check. The address must never be
// registered.
const (
	unknownEmail    = "nonexistent@emailcraft.test"
	unknownPassword = "WrongPassword123!"

	invalidCredentialsError = "Invalid email or password"
)

type loginUser struct{}

// LoginUser logs the fixture user in. A successful login replaces the token
// obtained at registration.
func LoginUser() Scenario {
	return loginUser{}
}

func (loginUser) Name() string  { return "login-user" }
func (loginUser) Title() string { return "User Login" }

func (s loginUser) Run(ctx context.Context, env *Env, token string) (Verdict, error) {
	title := s.Title()
	f := env.Fixture

	resp, ok := respond(env, title, "login", env.API.Login(ctx, f.Email, f.Password))
	if !ok {
		return keep(token, false), nil
	}

	if resp.StatusCode != http.StatusOK {
		env.Recorder.Log(title, false, fmt.Sprintf("Login failed with status %d", resp.StatusCode), resp.Body)
		return keep(token, false), nil
	}

	issued := resp.String("token")
	if issued == "" || !resp.Has("user") {
		env.Recorder.Log(title, false, "Missing token or user in login response", resp.Body)
		return keep(token, false), nil
	}

	if email := resp.String("user", "email"); email != f.Email {
		env.Recorder.Log(title, false, fmt.Sprintf("User email mismatch in login response. Expected: '%s', Got: '%s'",
			f.Email, email), resp.Body)
		return keep(token, false), nil
	}

	data := userData(resp)
	data["has_token"] = true
	data["token"] = describeToken(issued)
	env.Recorder.Log(title, true, "Login successful with JWT token", data)
	return Verdict{Passed: true, Token: issued}, nil
}

type invalidCredentialsLogin struct{}

// InvalidCredentialsLogin logs in as an unknown user and expects a 401 with
// the generic credentials error.
func InvalidCredentialsLogin() Scenario {
	return invalidCredentialsLogin{}
}

func (invalidCredentialsLogin) Name() string  { return "invalid-credentials" }
func (invalidCredentialsLogin) Title() string { return "Invalid Credentials Login" }

func (s invalidCredentialsLogin) Run(ctx context.Context, env *Env, token string) (Verdict, error) {
	title := s.Title()

	resp, ok := respond(env, title, "invalid login test", env.API.Login(ctx, unknownEmail, unknownPassword))
	if !ok {
		return keep(token, false), nil
	}

	if resp.StatusCode != http.StatusUnauthorized {
		env.Recorder.Log(title, false, fmt.Sprintf("Expected 401 but got %d", resp.StatusCode), resp.Body)
		return keep(token, false), nil
	}

	actual := resp.ErrorMessage()
	if !contains(actual, invalidCredentialsError) {
		env.Recorder.Log(title, false, fmt.Sprintf("Got 401 but wrong error message. Expected: '%s', Got: '%s'",
			invalidCredentialsError, actual), resp.Body)
		return keep(token, false), nil
	}

	env.Recorder.Log(title, true, fmt.Sprintf("Correctly rejected invalid credentials with proper error message: '%s'", actual),
		map[string]any{
			"status_code":   resp.StatusCode,
			"error_message": actual,
		})
	return keep(token, true), nil
}
