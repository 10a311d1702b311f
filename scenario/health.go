package scenario

import (
	"context"
	"fmt"
	"net/http"

	"authcheck/apiclient"
)

type healthCheck struct{}

// HealthCheck verifies the server is up. The coordinator runs it before
// anything else and aborts the run if it fails.
func HealthCheck() Scenario {
	return healthCheck{}
}

func (healthCheck) Name() string  { return "health-check" }
func (healthCheck) Title() string { return "Health Check" }

func (s healthCheck) Run(ctx context.Context, env *Env, token string) (Verdict, error) {
	title := s.Title()

	var resp *apiclient.Response
	switch o := env.API.Health(ctx).(type) {
	case *apiclient.Response:
		resp = o
	case *apiclient.TransportError:
		env.Recorder.Log(title, false, fmt.Sprintf("Server connection failed: %v", o.Err), nil)
		return keep(token, false), nil
	case *apiclient.DecodeError:
		env.Recorder.Log(title, false, fmt.Sprintf("Invalid JSON response during health check: %v", o.Err), map[string]any{
			"status_code": o.StatusCode,
			"body":        o.Raw,
		})
		return keep(token, false), nil
	default:
		env.Recorder.Log(title, false, fmt.Sprintf("Unexpected outcome %T during health check", o), nil)
		return keep(token, false), nil
	}

	if resp.StatusCode != http.StatusOK {
		env.Recorder.Log(title, false, fmt.Sprintf("Server returned status %d", resp.StatusCode), nil)
		return keep(token, false), nil
	}

	status, ok := resp.Lookup("status")
	if !ok {
		env.Recorder.Log(title, false, "Health response is missing the status field", resp.Body)
		return keep(token, false), nil
	}

	env.Recorder.Log(title, true, fmt.Sprintf("Server is running - Status: %v", status), resp.Body)
	return keep(token, true), nil
}
