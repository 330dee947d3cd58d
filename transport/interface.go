package transport

import (
	"context"
	"net/http"
)

// Interface for the transport layer used to reach model backends and the
// third-party APIs behind registered functions.
type Interface interface {
	// Do sends req and decodes the JSON response body into out. A nil out
	// discards the body. Non-2xx responses are returned as *StatusError.
	Do(ctx context.Context, req Request, out any) error
}

// Request is a single JSON-over-HTTP exchange. Body, when non-nil, is
// encoded as JSON.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   any
}

func Get(url string) Request {
	return Request{Method: http.MethodGet, URL: url}
}

func Post(url string, body any) Request {
	return Request{Method: http.MethodPost, URL: url, Body: body}
}

// WithBearer returns a copy of r carrying an Authorization header. An empty
// token leaves the request untouched.
func (r Request) WithBearer(token string) Request {
	if token == "" {
		return r
	}
	h := r.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Set("Authorization", "Bearer "+token)
	r.Header = h
	return r
}
