package scenario

import (
	"bytes"
	"context"
	"net"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcheck/apiclient"
	"authcheck/authtwin"
	"authcheck/recorder"
)

func newEnv(t *testing.T, baseURL string) (*Env, *bytes.Buffer) {
	t.Helper()
	client, err := apiclient.NewClient(baseURL, apiclient.Timeouts{Health: 2 * time.Second, Request: 2 * time.Second})
	require.NoError(t, err)

	var out bytes.Buffer
	return &Env{
		API:      client,
		Recorder: recorder.New(recorder.WithOutput(&out)),
		Fixture:  NewFixture("testuser", "emailcraft.test", "SecurePassword123!", "Test User"),
	}, &out
}

func setupTwin(t *testing.T, opts authtwin.Options) (*authtwin.Twin, *Env, *bytes.Buffer) {
	t.Helper()
	twin := authtwin.New(opts)
	srv := httptest.NewServer(twin.Router)
	t.Cleanup(srv.Close)
	env, out := newEnv(t, srv.URL+"/api")
	return twin, env, out
}

func run(t *testing.T, s Scenario, env *Env, token string) Verdict {
	t.Helper()
	v, err := s.Run(context.Background(), env, token)
	require.NoError(t, err)
	return v
}

func lastResult(t *testing.T, env *Env) recorder.TestResult {
	t.Helper()
	results := env.Recorder.Results()
	require.NotEmpty(t, results)
	return results[len(results)-1]
}

func TestNewFixture(t *testing.T) {
	re := regexp.MustCompile(`^testuser_[0-9a-f]{8}@emailcraft\.test$`)

	a := NewFixture("testuser", "emailcraft.test", "SecurePassword123!", "Test User")
	b := NewFixture("testuser", "emailcraft.test", "SecurePassword123!", "Test User")

	assert.Regexp(t, re, a.Email)
	assert.Regexp(t, re, b.Email)
	assert.NotEqual(t, a.Email, b.Email)
	assert.Equal(t, "SecurePassword123!", a.Password)
	assert.Equal(t, "Test User", a.Name)
}

func TestDefaultSuite_AllPassAgainstTwin(t *testing.T) {
	_, env, _ := setupTwin(t, authtwin.Options{})

	v := run(t, HealthCheck(), env, "")
	require.True(t, v.Passed)

	token := ""
	for _, s := range Default() {
		v := run(t, s, env, token)
		assert.True(t, v.Passed, "scenario %s failed: %+v", s.Name(), lastResult(t, env))
		token = v.Token
	}

	// health + 7 single results + 2 forgot-password parts + 4 reset cases
	assert.Equal(t, 14, env.Recorder.Len())
	assert.Equal(t, 14, env.Recorder.Passed())
	assert.NotEmpty(t, token)
}

func TestDefault_Order(t *testing.T) {
	var names []string
	for _, s := range Default() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		"register-user",
		"login-user",
		"token-validation",
		"invalid-credentials",
		"duplicate-email",
		"invalid-token",
		"missing-token",
		"forgot-password",
		"reset-password-matrix",
	}, names)
}

func TestResolve(t *testing.T) {
	all, err := Resolve(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(Default()))

	picked, err := Resolve([]string{"cors-preflight", "missing-token"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "cors-preflight", picked[0].Name())
	assert.Equal(t, "missing-token", picked[1].Name())

	_, err = Resolve([]string{"bogus"})
	assert.ErrorContains(t, err, "unsupported scenario 'bogus'")

	_, err = Lookup("health-check")
	assert.Error(t, err)

	assert.Contains(t, Names(), "reset-password-matrix")
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		fault   *authtwin.Fault
		passed  bool
		message string
	}{
		{"ok", nil, true, "Server is running - Status: OK"},
		{"server error", &authtwin.Fault{Status: 503, ContentType: "application/json", Body: `{"status":"down"}`}, false, "Server returned status 503"},
		{"no status field", &authtwin.Fault{Status: 200, ContentType: "application/json", Body: `{"uptime":1}`}, false, "missing the status field"},
		{"malformed", &authtwin.Fault{Status: 200, ContentType: "application/json", Body: `{`}, false, "Invalid JSON response during health check"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			twin, env, _ := setupTwin(t, authtwin.Options{})
			if tt.fault != nil {
				twin.InjectFault("GET", "/health", *tt.fault)
			}

			v := run(t, HealthCheck(), env, "")

			assert.Equal(t, tt.passed, v.Passed)
			res := lastResult(t, env)
			assert.Equal(t, "Health Check", res.Test)
			assert.Contains(t, res.Message, tt.message)
		})
	}
}

func TestRegisterUser(t *testing.T) {
	_, env, _ := setupTwin(t, authtwin.Options{})
	env.Fixture = Fixture{Email: "testuser_ab12cd34@emailcraft.test", Password: "SecurePassword123!", Name: "Test User"}

	v := run(t, RegisterUser(), env, "")

	require.True(t, v.Passed)
	assert.NotEmpty(t, v.Token)
	res := lastResult(t, env)
	assert.Equal(t, "User Registration", res.Test)
	data := res.ResponseData.(map[string]any)
	assert.Equal(t, "testuser_ab12cd34@emailcraft.test", data["email"])
	assert.Equal(t, true, data["has_token"])
	assert.Equal(t, "jwt", data["token"].(map[string]any)["format"])
}

func TestRegisterUser_Failures(t *testing.T) {
	tests := []struct {
		name    string
		fault   authtwin.Fault
		message string
	}{
		{"server error", authtwin.Fault{Status: 500, ContentType: "application/json", Body: `{"error":"Failed to register user"}`}, "Registration failed with status 500"},
		{"missing token", authtwin.Fault{Status: 201, ContentType: "application/json", Body: `{"user":{"email":"x"}}`}, "Missing token or user in response"},
		{"user mismatch", authtwin.Fault{Status: 201, ContentType: "application/json", Body: `{"token":"t","user":{"email":"other@x.test","name":"Test User"}}`}, "User data mismatch in response"},
		{"malformed json", authtwin.Fault{Status: 201, ContentType: "application/json", Body: `{"token":`}, "Invalid JSON response during registration"},
		{"html body", authtwin.Fault{Status: 201, ContentType: "text/html", Body: "<p>created</p>"}, "Missing token or user in response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			twin, env, out := setupTwin(t, authtwin.Options{})
			twin.InjectFault("POST", "/api/auth/register", tt.fault)

			v := run(t, RegisterUser(), env, "previous")

			assert.False(t, v.Passed)
			assert.Equal(t, "previous", v.Token)
			assert.Equal(t, 1, env.Recorder.Len())
			assert.Contains(t, lastResult(t, env).Message, tt.message)
			assert.Contains(t, out.String(), "❌ FAIL User Registration")
		})
	}
}

func TestLoginUser_ReplacesToken(t *testing.T) {
	twin, env, _ := setupTwin(t, authtwin.Options{})
	twin.InjectFault("POST", "/api/auth/login", authtwin.Fault{
		Status:      200,
		ContentType: "application/json",
		Body:        `{"token":"login-token","user":{"id":"1","email":"` + env.Fixture.Email + `","name":"Test User"}}`,
	})

	v := run(t, LoginUser(), env, "registration-token")

	assert.True(t, v.Passed)
	assert.Equal(t, "login-token", v.Token)
	data := lastResult(t, env).ResponseData.(map[string]any)
	assert.Equal(t, "opaque", data["token"].(map[string]any)["format"])
}

func TestLoginUser_UnknownUserFails(t *testing.T) {
	_, env, _ := setupTwin(t, authtwin.Options{})

	v := run(t, LoginUser(), env, "registration-token")

	assert.False(t, v.Passed)
	assert.Equal(t, "registration-token", v.Token)
	assert.Equal(t, "Login failed with status 401", lastResult(t, env).Message)
}

func TestTokenValidation(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		_, env, _ := setupTwin(t, authtwin.Options{})

		v := run(t, TokenValidation(), env, "")

		assert.False(t, v.Passed)
		assert.Equal(t, "No auth token available for validation", lastResult(t, env).Message)
	})

	t.Run("email mismatch", func(t *testing.T) {
		twin, env, _ := setupTwin(t, authtwin.Options{})
		twin.InjectFault("GET", "/api/auth/me", authtwin.Fault{Status: 200, ContentType: "application/json", Body: `{"user":{"email":"x@y.test"}}`})

		v := run(t, TokenValidation(), env, "tok")

		assert.False(t, v.Passed)
		assert.Contains(t, lastResult(t, env).Message, "User email mismatch in token validation")
	})

	t.Run("rejected", func(t *testing.T) {
		_, env, _ := setupTwin(t, authtwin.Options{})

		v := run(t, TokenValidation(), env, "not-a-jwt")

		assert.False(t, v.Passed)
		assert.Equal(t, "Token validation failed with status 403", lastResult(t, env).Message)
	})
}

func TestInvalidCredentialsLogin(t *testing.T) {
	t.Run("expected message", func(t *testing.T) {
		_, env, _ := setupTwin(t, authtwin.Options{})

		v := run(t, InvalidCredentialsLogin(), env, "tok")

		assert.True(t, v.Passed)
		assert.Equal(t, "tok", v.Token)
		data := lastResult(t, env).ResponseData.(map[string]any)
		assert.Equal(t, 401, data["status_code"])
		assert.Equal(t, "Invalid email or password", data["error_message"])
	})

	t.Run("decorated message", func(t *testing.T) {
		twin, env, _ := setupTwin(t, authtwin.Options{})
		twin.InjectFault("POST", "/api/auth/login", authtwin.Fault{Status: 401, ContentType: "application/json", Body: `{"error":"Auth: Invalid email or password."}`})

		assert.True(t, run(t, InvalidCredentialsLogin(), env, "").Passed)
	})

	t.Run("wrong message", func(t *testing.T) {
		twin, env, _ := setupTwin(t, authtwin.Options{})
		twin.InjectFault("POST", "/api/auth/login", authtwin.Fault{Status: 401, ContentType: "application/json", Body: `{"error":"Invalid credentials"}`})

		v := run(t, InvalidCredentialsLogin(), env, "")

		assert.False(t, v.Passed)
		assert.Equal(t, "Got 401 but wrong error message. Expected: 'Invalid email or password', Got: 'Invalid credentials'",
			lastResult(t, env).Message)
	})

	t.Run("wrong status", func(t *testing.T) {
		twin, env, _ := setupTwin(t, authtwin.Options{})
		twin.InjectFault("POST", "/api/auth/login", authtwin.Fault{Status: 500, ContentType: "application/json", Body: `{"error":"Failed to login"}`})

		v := run(t, InvalidCredentialsLogin(), env, "")

		assert.False(t, v.Passed)
		assert.Equal(t, "Expected 401 but got 500", lastResult(t, env).Message)
	})
}

func TestDuplicateEmailRegistration(t *testing.T) {
	t.Run("after registration", func(t *testing.T) {
		_, env, _ := setupTwin(t, authtwin.Options{})
		require.True(t, run(t, RegisterUser(), env, "").Passed)

		v := run(t, DuplicateEmailRegistration(), env, "")

		assert.True(t, v.Passed)
		data := lastResult(t, env).ResponseData.(map[string]any)
		assert.Equal(t, 409, data["status_code"])
		assert.Equal(t, authtwin.MsgEmailTaken, data["error_message"])
	})

	t.Run("fresh email", func(t *testing.T) {
		_, env, _ := setupTwin(t, authtwin.Options{})

		v := run(t, DuplicateEmailRegistration(), env, "")

		assert.False(t, v.Passed)
		assert.Equal(t, "Expected 409 but got 201", lastResult(t, env).Message)
	})
}

func TestInvalidTokenAccess(t *testing.T) {
	tests := []struct {
		name   string
		status int
		passed bool
	}{
		{"unauthorized", 401, true},
		{"forbidden", 403, true},
		{"accepted", 200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			twin, env, _ := setupTwin(t, authtwin.Options{})
			twin.InjectFault("GET", "/api/auth/me", authtwin.Fault{Status: tt.status, ContentType: "application/json", Body: `{}`})

			v := run(t, InvalidTokenAccess(), env, "")

			assert.Equal(t, tt.passed, v.Passed)
			if tt.passed {
				data := lastResult(t, env).ResponseData.(map[string]any)
				assert.Equal(t, noErrorMessage, data["error_message"])
			} else {
				assert.Equal(t, "Expected 401/403 but got 200", lastResult(t, env).Message)
			}
		})
	}
}

func TestMissingTokenAccess(t *testing.T) {
	_, env, _ := setupTwin(t, authtwin.Options{})
	assert.True(t, run(t, MissingTokenAccess(), env, "").Passed)

	twin, env, _ := setupTwin(t, authtwin.Options{})
	twin.InjectFault("GET", "/api/auth/me", authtwin.Fault{Status: 403, ContentType: "application/json", Body: `{"error":"Invalid token"}`})
	assert.False(t, run(t, MissingTokenAccess(), env, "").Passed)
	assert.Equal(t, "Expected 401 but got 403", lastResult(t, env).Message)
}

func TestForgotPassword(t *testing.T) {
	t.Run("same message", func(t *testing.T) {
		_, env, _ := setupTwin(t, authtwin.Options{})
		require.True(t, run(t, RegisterUser(), env, "").Passed)

		v := run(t, ForgotPassword(), env, "")

		assert.True(t, v.Passed)
		results := env.Recorder.Results()[1:]
		require.Len(t, results, 2)
		assert.Equal(t, "Forgot Password (Existing Email)", results[0].Test)
		assert.Equal(t, "Forgot Password (Non-existing Email)", results[1].Test)
		assert.Equal(t, results[0].ResponseData.(map[string]any)["message"], results[1].ResponseData.(map[string]any)["message"])
	})

	t.Run("leaks existence", func(t *testing.T) {
		_, env, _ := setupTwin(t, authtwin.Options{LeakAccountExistence: true})
		require.True(t, run(t, RegisterUser(), env, "").Passed)

		v := run(t, ForgotPassword(), env, "")

		assert.False(t, v.Passed)
		res := lastResult(t, env)
		assert.Equal(t, "Forgot Password (Non-existing Email)", res.Test)
		assert.False(t, res.Success)
		assert.Contains(t, res.Message, "Message differs between existing and non-existing email")
	})

	t.Run("first part fails", func(t *testing.T) {
		twin, env, _ := setupTwin(t, authtwin.Options{})
		twin.InjectFault("POST", "/api/auth/forgot-password", authtwin.Fault{Status: 200, ContentType: "application/json", Body: `{"message":"Check your inbox"}`})

		v := run(t, ForgotPassword(), env, "")

		assert.False(t, v.Passed)
		require.Equal(t, 1, env.Recorder.Len())
		res := lastResult(t, env)
		assert.Equal(t, "Forgot Password (Existing Email)", res.Test)
		assert.Contains(t, res.Message, "Wrong message format")
	})
}

func TestResetPasswordValidation(t *testing.T) {
	t.Run("all cases rejected", func(t *testing.T) {
		_, env, _ := setupTwin(t, authtwin.Options{})

		v := run(t, ResetPasswordValidation(), env, "tok")

		assert.True(t, v.Passed)
		assert.Equal(t, "tok", v.Token)
		results := env.Recorder.Results()
		require.Len(t, results, 4)
		for i, res := range results {
			assert.True(t, res.Success)
			assert.Equal(t, "Reset Password Validation "+string(rune('1'+i)), res.Test)
		}
		last := results[3].ResponseData.(map[string]any)
		assert.Equal(t, "Password must be at least 6 characters long", last["error_message"])
		assert.Equal(t, map[string]any{"userId": "test", "secret": "test", "password": "123"}, last["test_payload"])
	})

	t.Run("every case runs after a failure", func(t *testing.T) {
		twin, env, _ := setupTwin(t, authtwin.Options{})
		twin.InjectFault("POST", "/api/auth/reset-password", authtwin.Fault{Status: 500, ContentType: "text/plain", Body: "boom"})

		v := run(t, ResetPasswordValidation(), env, "")

		assert.False(t, v.Passed)
		results := env.Recorder.Results()
		require.Len(t, results, 4)
		for _, res := range results {
			assert.False(t, res.Success)
			assert.Equal(t, "Expected 400 but got 500", res.Message)
		}
	})

	t.Run("wrong message", func(t *testing.T) {
		twin, env, _ := setupTwin(t, authtwin.Options{})
		twin.InjectFault("POST", "/api/auth/reset-password", authtwin.Fault{Status: 400, ContentType: "application/json", Body: `{"error":"Password must be at least 6 characters long"}`})

		v := run(t, ResetPasswordValidation(), env, "")

		assert.False(t, v.Passed)
		results := env.Recorder.Results()
		require.Len(t, results, 4)
		assert.False(t, results[0].Success)
		assert.True(t, results[3].Success)
	})
}

func TestCORSPreflight(t *testing.T) {
	_, env, _ := setupTwin(t, authtwin.Options{})
	v := run(t, CORSPreflight(), env, "")
	assert.True(t, v.Passed)
	data := lastResult(t, env).ResponseData.(map[string]any)
	assert.Equal(t, DefaultCORSOrigin, data["Access-Control-Allow-Origin"])

	_, env, _ = setupTwin(t, authtwin.Options{AllowedOrigin: "https://app.emailcraft.test"})
	v = run(t, CORSPreflight(), env, "")
	assert.False(t, v.Passed)
	assert.Equal(t, "CORS preflight failed with status 204", lastResult(t, env).Message)

	env.CORSOrigin = "https://app.emailcraft.test"
	assert.True(t, run(t, CORSPreflight(), env, "").Passed)
}

func TestScenarios_TransportFailureRecordsResults(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	all := append([]Scenario{HealthCheck()}, Default()...)
	all = append(all, CORSPreflight())
	for _, s := range all {
		t.Run(s.Name(), func(t *testing.T) {
			env, _ := newEnv(t, "http://"+addr+"/api")

			v := run(t, s, env, "tok")

			assert.False(t, v.Passed)
			assert.Equal(t, "tok", v.Token)
			require.GreaterOrEqual(t, env.Recorder.Len(), 1)
			for _, res := range env.Recorder.Results() {
				assert.False(t, res.Success)
			}
		})
	}
}

func TestDescribeToken(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u-1",
		"exp":    exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	info := describeToken(signed)
	assert.Equal(t, "jwt", info["format"])
	assert.Equal(t, "HS256", info["alg"])
	assert.Equal(t, "u-1", info["user_id"])
	assert.Equal(t, "2030-01-02T03:04:05Z", info["expires_at"])

	assert.Equal(t, map[string]any{"format": "opaque"}, describeToken("invalid_token_here"))
}

func TestRespond_UnexpectedOutcome(t *testing.T) {
	env, _ := newEnv(t, "http://127.0.0.1:1/api")

	_, ok := respond(env, "X", "testing", nil)

	assert.False(t, ok)
	assert.Contains(t, lastResult(t, env).Message, "Unexpected outcome <nil> during testing")
}
