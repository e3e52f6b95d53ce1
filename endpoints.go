package iot

import (
	"net/url"
	"strings"
)

// ServiceEndpoints holds the two base URLs every operation is built from.
// Both URLs always end with a trailing slash.
type ServiceEndpoints struct {
	DMS string
	MMS string
}

// NewServiceEndpoints returns a normalized endpoint pair.
func NewServiceEndpoints(dmsURL, mmsURL string) ServiceEndpoints {
	return ServiceEndpoints{
		DMS: normalizeBaseURL(dmsURL),
		MMS: normalizeBaseURL(mmsURL),
	}
}

func normalizeBaseURL(u string) string {
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

// SetServiceURL sets the base URLs of the device management and message
// management services. A trailing slash is appended to either URL if missing.
// The pair is swapped atomically; in-flight calls keep the URLs they started with.
func (c *Client) SetServiceURL(dmsURL, mmsURL string) {
	e := NewServiceEndpoints(dmsURL, mmsURL)
	c.endpoints.Store(&e)
}

// DMSURL returns the base URL of the device management service.
func (c *Client) DMSURL() string {
	return c.Endpoints().DMS
}

// MMSURL returns the base URL of the message management service.
func (c *Client) MMSURL() string {
	return c.Endpoints().MMS
}

// Endpoints returns a consistent snapshot of both base URLs.
func (c *Client) Endpoints() ServiceEndpoints {
	if e := c.endpoints.Load(); e != nil {
		return *e
	}
	return ServiceEndpoints{}
}

// TokenURL returns the OAuth token endpoint used by Authenticate.
func (c *Client) TokenURL() string {
	if c.tokenURL != "" {
		return c.tokenURL
	}
	u, err := url.Parse(c.MMSURL())
	if err != nil || u.Host == "" {
		return tokenPath
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: tokenPath}).String()
}
