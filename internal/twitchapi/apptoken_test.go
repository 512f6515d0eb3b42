package twitchapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golden-vcr/eventsub/internal/apicall"
)

func Test_AppTokenSource(t *testing.T) {
	issued := 0
	srv := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/oauth2/token", req.URL.Path)
		assert.Equal(t, "my-client-id", req.URL.Query().Get("client_id"))
		assert.Equal(t, "my-client-secret", req.URL.Query().Get("client_secret"))
		assert.Equal(t, "client_credentials", req.URL.Query().Get("grant_type"))
		assert.Empty(t, req.Header.Get("Client-ID"))

		issued++
		res.Header().Set("Content-Type", "application/json")
		res.Write([]byte(fmt.Sprintf(`{"access_token":"token-%d","expires_in":3600,"token_type":"bearer"}`, issued)))
	}))
	defer srv.Close()

	invoker := apicall.NewInvokerWithBaseURLs(srv.Client(), map[apicall.Family]string{
		apicall.Auth: srv.URL + "/oauth2/",
	})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewAppTokenSource(invoker, "my-client-id", "my-client-secret")
	s.now = func() time.Time { return now }

	// The first call should obtain a token, and subsequent calls should reuse it
	token, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	token, err = s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, 1, issued)

	// Once we're within the refresh margin of expiry, a new token should be issued
	now = now.Add(56 * time.Minute)
	token, err = s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)

	// Invalidating the source should force a new token to be issued
	s.Invalidate()
	token, err = s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-3", token)
}

func Test_AppTokenSource_error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		res.Header().Set("Content-Type", "application/json")
		res.WriteHeader(http.StatusForbidden)
		res.Write([]byte(`{"status":403,"message":"invalid client secret"}`))
	}))
	defer srv.Close()

	invoker := apicall.NewInvokerWithBaseURLs(srv.Client(), map[apicall.Family]string{
		apicall.Auth: srv.URL + "/oauth2/",
	})
	s := NewAppTokenSource(invoker, "my-client-id", "bad-secret")
	_, err := s.Token(context.Background())
	assert.ErrorIs(t, err, apicall.ErrForbidden)
}
