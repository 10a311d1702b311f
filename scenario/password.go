package scenario

import (
	"context"
	"fmt"
	"net/http"
)

// Messages the backend returns from the password endpoints.
const (
	ForgotPasswordMessage = "If an account with this email exists, you will receive a password reset link shortly."
	ResetRequiredError    = "User ID, secret, and new password are required"
	ResetShortError       = "Password must be at least 6 characters long"
)

const (
	forgotExistingTitle    = "Forgot Password (Existing Email)"
	forgotNonExistingTitle = "Forgot Password (Non-existing Email)"
)

type forgotPassword struct{}

// ForgotPassword requests a reset link for the fixture email and for an
// unknown email. Both replies must carry the same message so the endpoint
// does not reveal which addresses have accounts.
func ForgotPassword() Scenario {
	return forgotPassword{}
}

func (forgotPassword) Name() string  { return "forgot-password" }
func (forgotPassword) Title() string { return "Forgot Password" }

func (s forgotPassword) Run(ctx context.Context, env *Env, token string) (Verdict, error) {
	existing, ok := s.request(ctx, env, forgotExistingTitle, env.Fixture.Email)
	if !ok {
		return keep(token, false), nil
	}
	env.Recorder.Log(forgotExistingTitle, true, fmt.Sprintf("Correctly returned success message: '%s'", existing),
		map[string]any{"status_code": http.StatusOK, "message": existing})

	other, ok := s.request(ctx, env, forgotNonExistingTitle, unknownEmail)
	if !ok {
		return keep(token, false), nil
	}
	if other != existing {
		env.Recorder.Log(forgotNonExistingTitle, false, fmt.Sprintf(
			"Message differs between existing and non-existing email. Existing: '%s', Non-existing: '%s'", existing, other),
			map[string]any{"existing": existing, "non_existing": other})
		return keep(token, false), nil
	}

	env.Recorder.Log(forgotNonExistingTitle, true, fmt.Sprintf("Correctly returned same success message for security: '%s'", other),
		map[string]any{"status_code": http.StatusOK, "message": other})
	return keep(token, true), nil
}

// request sends one forgot-password call and returns the message when the
// reply is a 200 carrying the expected text. Failures are recorded.
func (forgotPassword) request(ctx context.Context, env *Env, title, email string) (string, bool) {
	resp, ok := respond(env, title, "forgot password test", env.API.ForgotPassword(ctx, email))
	if !ok {
		return "", false
	}

	if resp.StatusCode != http.StatusOK {
		env.Recorder.Log(title, false, fmt.Sprintf("Expected 200 but got %d", resp.StatusCode), resp.Body)
		return "", false
	}

	message := resp.String("message")
	if !contains(message, ForgotPasswordMessage) {
		env.Recorder.Log(title, false, fmt.Sprintf("Wrong message format. Expected: '%s', Got: '%s'",
			ForgotPasswordMessage, message), resp.Body)
		return "", false
	}
	return message, true
}

// ResetCase is one payload of the reset-password validation matrix.
type ResetCase struct {
	Payload       map[string]any
	ExpectedError string
}

// ResetCases lists increasingly complete payloads, none of which may be
// accepted.
func ResetCases() []ResetCase {
	return []ResetCase{
		{Payload: map[string]any{}, ExpectedError: ResetRequiredError},
		{Payload: map[string]any{"userId": "test"}, ExpectedError: ResetRequiredError},
		{Payload: map[string]any{"userId": "test", "secret": "test"}, ExpectedError: ResetRequiredError},
		{Payload: map[string]any{"userId": "test", "secret": "test", "password": "123"}, ExpectedError: ResetShortError},
	}
}

type resetPasswordValidation struct{}

// ResetPasswordValidation runs the reset-password matrix. Every case is
// sent and recorded even when an earlier one fails.
func ResetPasswordValidation() Scenario {
	return resetPasswordValidation{}
}

func (resetPasswordValidation) Name() string  { return "reset-password-matrix" }
func (resetPasswordValidation) Title() string { return "Reset Password Validation" }

func (s resetPasswordValidation) Run(ctx context.Context, env *Env, token string) (Verdict, error) {
	allPassed := true
	for i, tc := range ResetCases() {
		if !s.check(ctx, env, fmt.Sprintf("%s %d", s.Title(), i+1), tc) {
			allPassed = false
		}
	}
	return keep(token, allPassed), nil
}

func (resetPasswordValidation) check(ctx context.Context, env *Env, title string, tc ResetCase) bool {
	resp, ok := respond(env, title, "reset password validation test", env.API.ResetPassword(ctx, tc.Payload))
	if !ok {
		return false
	}

	if resp.StatusCode != http.StatusBadRequest {
		env.Recorder.Log(title, false, fmt.Sprintf("Expected 400 but got %d", resp.StatusCode), resp.Body)
		return false
	}

	actual := resp.ErrorMessage()
	if !contains(actual, tc.ExpectedError) {
		env.Recorder.Log(title, false, fmt.Sprintf("Wrong validation message. Expected: '%s', Got: '%s'",
			tc.ExpectedError, actual), resp.Body)
		return false
	}

	env.Recorder.Log(title, true, fmt.Sprintf("Correctly validated parameters: '%s'", actual), map[string]any{
		"status_code":   resp.StatusCode,
		"error_message": actual,
		"test_payload":  tc.Payload,
	})
	return true
}
