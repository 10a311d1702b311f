package apiclient

import "net/http"

// RequestHeaders is the explicit set of headers a request carries.
type RequestHeaders struct {
	ContentType string
	Bearer      string

	// CORS preflight fields.
	Origin                      string
	AccessControlRequestMethod  string
	AccessControlRequestHeaders string
}

// JSONHeaders returns headers for a JSON request without credentials.
func JSONHeaders() RequestHeaders {
	return RequestHeaders{ContentType: contentTypeJSON}
}

// WithBearer returns a copy of h that authenticates with token.
func (h RequestHeaders) WithBearer(token string) RequestHeaders {
	h.Bearer = token
	return h
}

// PreflightHeaders returns the headers of a CORS preflight request.
func PreflightHeaders(origin, method, headers string) RequestHeaders {
	return RequestHeaders{
		Origin:                      origin,
		AccessControlRequestMethod:  method,
		AccessControlRequestHeaders: headers,
	}
}

func (h RequestHeaders) apply(dst http.Header) {
	if h.ContentType != "" {
		dst.Set("Content-Type", h.ContentType)
	}
	if h.Bearer != "" {
		dst.Set("Authorization", "Bearer "+h.Bearer)
	}
	if h.Origin != "" {
		dst.Set("Origin", h.Origin)
	}
	if h.AccessControlRequestMethod != "" {
		dst.Set("Access-Control-Request-Method", h.AccessControlRequestMethod)
	}
	if h.AccessControlRequestHeaders != "" {
		dst.Set("Access-Control-Request-Headers", h.AccessControlRequestHeaders)
	}
}
