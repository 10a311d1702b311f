package scenario

import (
	"context"
	"fmt"
	"net/http"

	"authcheck/apiclient"
)

// DefaultCORSOrigin is the frontend origin the backend is expected to allow.
const DefaultCORSOrigin = "http://localhost:3000"

var corsHeaders = []string{
	"Access-Control-Allow-Origin",
	"Access-Control-Allow-Methods",
	"Access-Control-Allow-Headers",
	"Access-Control-Allow-Credentials",
}

type corsPreflight struct{}

// CORSPreflight sends a browser-style preflight for a JSON login and expects
// the origin to be allowed.
func CORSPreflight() Scenario {
	return corsPreflight{}
}

func (corsPreflight) Name() string  { return "cors-preflight" }
func (corsPreflight) Title() string { return "CORS Configuration" }

func (s corsPreflight) Run(ctx context.Context, env *Env, token string) (Verdict, error) {
	title := s.Title()

	origin := env.CORSOrigin
	if origin == "" {
		origin = DefaultCORSOrigin
	}

	// Only status and headers matter here, so an undecodable body is fine.
	var status int
	var header http.Header
	switch o := env.API.Preflight(ctx, origin).(type) {
	case *apiclient.Response:
		status, header = o.StatusCode, o.Header
	case *apiclient.DecodeError:
		status, header = o.StatusCode, o.Header
	case *apiclient.TransportError:
		env.Recorder.Log(title, false, fmt.Sprintf("Network error during CORS test: %v", o.Err), nil)
		return keep(token, false), nil
	default:
		env.Recorder.Log(title, false, fmt.Sprintf("Unexpected outcome %T during CORS test", o), nil)
		return keep(token, false), nil
	}

	found := make(map[string]any, len(corsHeaders))
	for _, name := range corsHeaders {
		if v := header.Get(name); v != "" {
			found[name] = v
		} else {
			found[name] = nil
		}
	}

	if (status != http.StatusOK && status != http.StatusNoContent) || header.Get("Access-Control-Allow-Origin") == "" {
		env.Recorder.Log(title, false, fmt.Sprintf("CORS preflight failed with status %d", status), found)
		return keep(token, false), nil
	}

	env.Recorder.Log(title, true, "CORS headers properly configured", found)
	return keep(token, true), nil
}
