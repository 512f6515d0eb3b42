package twitchapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golden-vcr/eventsub/internal/apicall"
)

// appTokenRefreshMargin is how long before expiry we discard a cached app access token
const appTokenRefreshMargin = 5 * time.Minute

// AppTokenSource obtains app access tokens via the OAuth client credentials grant flow,
// caching each token until shortly before it expires
type AppTokenSource struct {
	invoker      *apicall.Invoker
	clientID     string
	clientSecret string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewAppTokenSource returns a TokenSource that authenticates as the given application
func NewAppTokenSource(invoker *apicall.Invoker, clientID, clientSecret string) *AppTokenSource {
	return &AppTokenSource{
		invoker:      invoker,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

type appTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (s *AppTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt) {
		return s.token, nil
	}

	var r appTokenResponse
	err := s.invoker.Call(ctx, apicall.Endpoint{
		Family: apicall.Auth,
		Method: http.MethodPost,
		Path:   "token",
		Query: url.Values{
			"client_id":     {s.clientID},
			"client_secret": {s.clientSecret},
			"grant_type":    {"client_credentials"},
		},
	}, apicall.Credentials{}, &r)
	if err != nil {
		return "", fmt.Errorf("failed to obtain app access token: %w", err)
	}
	if r.AccessToken == "" {
		return "", fmt.Errorf("app access token response did not include a token")
	}

	s.token = r.AccessToken
	s.expiresAt = s.now().Add(time.Duration(r.ExpiresIn)*time.Second - appTokenRefreshMargin)
	return s.token, nil
}

// Invalidate discards the cached token so that the next call to Token obtains a new one
func (s *AppTokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}
