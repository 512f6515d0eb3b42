package userauth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Server_handleStartAuth(t *testing.T) {
	s := NewServer("https://goldenvcr.com/api/eventsub", "my-client-id", []string{"bits:read", "moderator:read:followers"})

	req := httptest.NewRequest(http.MethodGet, "/userauth/start", nil)
	res := httptest.NewRecorder()
	s.handleStartAuth(res, req)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	u, err := url.Parse(res.Header().Get("location"))
	require.NoError(t, err)
	assert.Equal(t, "id.twitch.tv", u.Host)
	assert.Equal(t, "/oauth2/authorize", u.Path)
	assert.Equal(t, "code", u.Query().Get("response_type"))
	assert.Equal(t, "my-client-id", u.Query().Get("client_id"))
	assert.Equal(t, "https://goldenvcr.com/api/eventsub/userauth/finish", u.Query().Get("redirect_uri"))
	assert.Equal(t, "bits:read moderator:read:followers", u.Query().Get("scope"))
	assert.NotEmpty(t, u.Query().Get("state"))
}

func Test_Server_handleFinishAuth(t *testing.T) {
	tests := []struct {
		name       string
		query      func(state string) string
		wantStatus int
		wantBody   string
	}{
		{
			"all scopes granted",
			func(state string) string {
				return "code=abc&scope=bits%3Aread+moderator%3Aread%3Afollowers&state=" + state
			},
			200,
			"Access granted",
		},
		{
			"missing state is rejected",
			func(state string) string {
				return "code=abc&scope=bits%3Aread"
			},
			400,
			"'state' value not found in URL query params",
		},
		{
			"unknown state is rejected",
			func(state string) string {
				return "code=abc&scope=bits%3Aread&state=not-a-real-token"
			},
			400,
			"CSRF token verification failed",
		},
		{
			"missing scope is rejected",
			func(state string) string {
				return "code=abc&scope=bits%3Aread&state=" + state
			},
			400,
			"required scope 'moderator:read:followers' was not granted",
		},
		{
			"denied access is reported",
			func(state string) string {
				return "error=access_denied&error_description=The+user+denied+you+access&state=" + state
			},
			400,
			"access was not granted: The user denied you access",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer("https://goldenvcr.com/api/eventsub", "my-client-id", []string{"bits:read", "moderator:read:followers"})
			state, err := s.csrf.generate()
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/userauth/finish?"+tt.query(state), nil)
			res := httptest.NewRecorder()
			s.handleFinishAuth(res, req)

			assert.Equal(t, tt.wantStatus, res.Code)
			assert.Contains(t, res.Body.String(), tt.wantBody)
		})
	}
}

func Test_csrfBuffer(t *testing.T) {
	now := time.Date(1997, 9, 1, 12, 0, 0, 0, time.UTC)
	b := newCSRFBuffer()
	b.now = func() time.Time { return now }

	first, err := b.generate()
	require.NoError(t, err)
	second, err := b.generate()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Tokens may only be redeemed once
	assert.True(t, b.check(first))
	assert.False(t, b.check(first))

	// Tokens may not be redeemed after they expire
	now = now.Add(csrfTokenTTL + time.Second)
	assert.False(t, b.check(second))
	assert.Empty(t, b.tokens)
}
