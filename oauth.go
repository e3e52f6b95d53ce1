package iot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	tokenPath = "/oauth/token"

	// GrantTypeClientCredentials is the only grant the token exchange uses.
	GrantTypeClientCredentials = "client_credentials"

	// tokenRefreshBuffer is how long before expiry a token is considered stale
	tokenRefreshBuffer = 5 * time.Minute
)

// ClientCredentials identifies an OAuth client of the IoT services.
type ClientCredentials struct {
	ID     string
	Secret string
	Scope  string
}

// TokenResponse represents the response from the OAuth token endpoint
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	Scope       string    `json:"scope"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// IsValid checks if the access token is still valid (with buffer)
func (t *TokenResponse) IsValid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().Add(tokenRefreshBuffer).Before(t.ExpiresAt)
}

// NeedsRefresh returns true if a new access token should be requested
func (t *TokenResponse) NeedsRefresh() bool {
	return !t.IsValid()
}

// TokenFunc receives the token of a successful credential exchange.
type TokenFunc func(token *TokenResponse)

// Authenticate exchanges client credentials for a bearer token and returns
// immediately.
//
// done fires only on success; unlike facade operations there is no
// completion call after a failure. On failure fail is called, or the
// client's error report runs when fail is nil. The token is not stored; pass
// it to SetToken or WithBearerToken to use it.
func (c *Client) Authenticate(ctx context.Context, id, secret, scope string, done TokenFunc, fail FailFunc) *Call {
	creds := ClientCredentials{ID: id, Secret: secret, Scope: scope}
	var token *TokenResponse
	return c.start(ctx, func(ctx context.Context) Result {
		var r Result
		r, token = c.exchange(ctx, creds)
		return r
	}, func(ctx context.Context, r Result) {
		if r.Failure != nil {
			if fail != nil {
				fail(r.Failure)
			} else {
				c.Report(ctx, r.Failure)
			}
			return
		}
		if done != nil {
			done(token)
		}
	})
}

// RequestToken performs the client-credentials exchange synchronously.
// Failures are returned as *FailurePayload.
func (c *Client) RequestToken(ctx context.Context, creds ClientCredentials) (*TokenResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r, token := c.exchange(ctx, creds)
	if r.Failure != nil {
		return nil, r.Failure
	}
	return token, nil
}

// exchange posts the form-encoded grant using HTTP Basic Auth.
func (c *Client) exchange(ctx context.Context, creds ClientCredentials) (Result, *TokenResponse) {
	if creds.ID == "" {
		return Result{Failure: &FailurePayload{Err: ErrEmptyCredentials}}, nil
	}

	form := url.Values{}
	form.Set("grant_type", GrantTypeClientCredentials)
	form.Set("scope", creds.Scope)

	req := &Request{
		Method:      http.MethodPost,
		URL:         c.TokenURL(),
		ContentType: contentTypeForm,
		Header:      http.Header{},
		Body:        form,
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerRequestID, uuid.NewString())
	req.Header.Set("Authorization", "Basic "+basicAuth(creds.ID, creds.Secret))

	r := c.do(ctx, req)
	if r.Failure != nil {
		return r, nil
	}

	var token TokenResponse
	if err := json.Unmarshal(r.Body, &token); err != nil {
		return Result{Failure: &FailurePayload{
			Err:          fmt.Errorf("%w (body: %s)", err, truncatePreview(r.Body)),
			Message:      "iot: failed to parse token response",
			ResponseText: string(r.Body),
		}}, nil
	}
	if token.ExpiresAt.IsZero() && token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	return r, &token
}

func basicAuth(id, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(id + ":" + secret))
}
