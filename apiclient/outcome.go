package apiclient

import (
	"fmt"
	"net/http"
)

// Outcome is the result of a single request. It is one of *TransportError,
// *DecodeError or *Response.
type Outcome interface {
	outcome()
}

// TransportError reports that no HTTP response was received: connection
// refused, DNS failure, timeout or a cancelled context.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) outcome() {}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response that declared a JSON content type but whose
// body could not be parsed.
type DecodeError struct {
	StatusCode int
	Header     http.Header
	Raw        string
	Err        error
}

func (e *DecodeError) outcome() {}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("status %d: %v", e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Response is a received HTTP response with its body decoded. Bodies that
// are not JSON are wrapped as {"error": <text>}.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       any
}

func (r *Response) outcome() {}

// Object returns the body as a JSON object, or nil if it is not one.
func (r *Response) Object() map[string]any {
	m, _ := r.Body.(map[string]any)
	return m
}

// Lookup walks nested JSON objects by key.
func (r *Response) Lookup(path ...string) (any, bool) {
	var cur any = r.Body
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether the nested key exists.
func (r *Response) Has(path ...string) bool {
	_, ok := r.Lookup(path...)
	return ok
}

// String returns the nested value if it is a string, or "" otherwise.
func (r *Response) String(path ...string) string {
	v, ok := r.Lookup(path...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ErrorMessage returns the body's "error" field.
func (r *Response) ErrorMessage() string {
	return r.String("error")
}
