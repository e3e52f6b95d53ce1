package iot

import (
	"net/http"
	"net/url"
	"strings"
)

// Request describes one HTTP call before it is sent.
// RequestOptions mutate it after the client has filled in its defaults.
type Request struct {
	Method      string
	URL         string
	ContentType string
	Header      http.Header
	Query       url.Values
	Body        any
}

// RequestOption overrides or extends a single call's request.
type RequestOption func(*Request)

// WithHeader sets a request header, replacing any existing value.
// Content-Type is routed to the request content type, so WithHeader and
// WithContentType override each other in the order they are given.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if http.CanonicalHeaderKey(key) == "Content-Type" {
			r.ContentType = value
			return
		}
		if r.Header == nil {
			r.Header = http.Header{}
		}
		r.Header.Set(key, value)
	}
}

// WithMethod overrides the HTTP method chosen by the operation.
func WithMethod(method string) RequestOption {
	return func(r *Request) {
		r.Method = method
	}
}

// WithURL overrides the target URL built by the operation.
func WithURL(rawURL string) RequestOption {
	return func(r *Request) {
		r.URL = rawURL
	}
}

// WithContentType overrides the request content type.
// An empty value suppresses the Content-Type header.
func WithContentType(contentType string) RequestOption {
	return func(r *Request) {
		r.ContentType = contentType
	}
}

// WithBearerToken authorizes a single call with token.
func WithBearerToken(token string) RequestOption {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithQuery adds a query parameter to the target URL.
func WithQuery(key, value string) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = url.Values{}
		}
		r.Query.Add(key, value)
	}
}

// WithBody replaces the request body.
func WithBody(body any) RequestOption {
	return func(r *Request) {
		r.Body = body
	}
}

// target returns the URL with any extra query parameters appended.
func (r *Request) target() (string, error) {
	if len(r.Query) == 0 {
		return r.URL, nil
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range r.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// joinPath appends a resource and optional identifiers to a base URL.
// Identifiers are percent-encoded as single path segments.
func joinPath(base, resource string, ids ...string) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString(resource)
	for _, id := range ids {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(id))
	}
	return b.String()
}
