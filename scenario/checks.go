package scenario

import (
	"fmt"
	"strings"

	"authcheck/apiclient"
)

const noErrorMessage = "No error message"

// respond unwraps out into a response. Transport and decode failures are
// recorded under title and reported as not ok.
func respond(env *Env, title, activity string, out apiclient.Outcome) (*apiclient.Response, bool) {
	switch o := out.(type) {
	case *apiclient.Response:
		return o, true
	case *apiclient.TransportError:
		env.Recorder.Log(title, false, fmt.Sprintf("Network error during %s: %v", activity, o.Err), nil)
	case *apiclient.DecodeError:
		env.Recorder.Log(title, false, fmt.Sprintf("Invalid JSON response during %s: %v", activity, o.Err), map[string]any{
			"status_code": o.StatusCode,
			"body":        o.Raw,
		})
	default:
		env.Recorder.Log(title, false, fmt.Sprintf("Unexpected outcome %T during %s", out, activity), nil)
	}
	return nil, false
}

// contains reports whether the expected text appears in the actual message.
// Servers may decorate messages, so only presence is required.
func contains(actual, expected string) bool {
	return strings.Contains(actual, expected)
}

func errorOrDefault(resp *apiclient.Response) string {
	if msg := resp.ErrorMessage(); msg != "" {
		return msg
	}
	return noErrorMessage
}

func rejection(resp *apiclient.Response) map[string]any {
	return map[string]any{
		"status_code":   resp.StatusCode,
		"error_message": errorOrDefault(resp),
	}
}

func userData(resp *apiclient.Response) map[string]any {
	id, _ := resp.Lookup("user", "id")
	return map[string]any{
		"user_id": id,
		"email":   resp.String("user", "email"),
		"name":    resp.String("user", "name"),
	}
}

// keep passes the current token through unchanged.
func keep(token string, passed bool) Verdict {
	return Verdict{Passed: passed, Token: token}
}
