package apicall

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_EncodeQuery(t *testing.T) {
	tests := []struct {
		name string
		q    url.Values
		want string
	}{
		{
			"nil query yields empty string",
			nil,
			"",
		},
		{
			"empty query yields empty string",
			url.Values{},
			"",
		},
		{
			"single value has leading separator",
			url.Values{"broadcaster_id": {"44322889"}},
			"?broadcaster_id=44322889",
		},
		{
			"array values repeat the key",
			url.Values{"id": {"1", "2", "3"}, "first": {"20"}},
			"?first=20&id=1&id=2&id=3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeQuery(tt.q))
		})
	}
}

func Test_Invoker_Do_headers(t *testing.T) {
	tests := []struct {
		name              string
		endpoint          Endpoint
		creds             Credentials
		wantPath          string
		wantQuery         string
		wantClientID      string
		wantAuthorization string
		wantContentType   string
		wantBody          string
	}{
		{
			"helix request uses bearer token and client id",
			Endpoint{
				Family: Helix,
				Path:   "/users",
				Query:  url.Values{"id": {"1", "2"}},
			},
			Credentials{ClientID: "my-client", AccessToken: "abc123"},
			"/helix/users",
			"id=1&id=2",
			"my-client",
			"Bearer abc123",
			"",
			"",
		},
		{
			"kraken request uses legacy oauth scheme",
			Endpoint{
				Family: Kraken,
				Path:   "users/1337",
			},
			Credentials{ClientID: "my-client", AccessToken: "abc123"},
			"/kraken/users/1337",
			"",
			"my-client",
			"OAuth abc123",
			"",
			"",
		},
		{
			"auth request never carries client id header",
			Endpoint{
				Family: Auth,
				Method: http.MethodPost,
				Path:   "token",
				Query:  url.Values{"grant_type": {"client_credentials"}},
			},
			Credentials{ClientID: "my-client"},
			"/oauth2/token",
			"grant_type=client_credentials",
			"",
			"",
			"",
			"",
		},
		{
			"json body sets content type",
			Endpoint{
				Family:   Helix,
				Method:   http.MethodPost,
				Path:     "eventsub/subscriptions",
				JSONBody: map[string]string{"type": "stream.online"},
			},
			Credentials{ClientID: "my-client", AccessToken: "abc123"},
			"/helix/eventsub/subscriptions",
			"",
			"my-client",
			"Bearer abc123",
			"application/json",
			`{"type":"stream.online"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *http.Request
			var gotBody string
			srv := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
				got = req
				b, _ := io.ReadAll(req.Body)
				gotBody = string(b)
				res.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			i := NewInvokerWithBaseURLs(srv.Client(), map[Family]string{
				Helix:  srv.URL + "/helix/",
				Kraken: srv.URL + "/kraken/",
				Auth:   srv.URL + "/oauth2/",
			})
			res, err := i.Do(context.Background(), tt.endpoint, tt.creds)
			require.NoError(t, err)
			res.Body.Close()

			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.URL.Path)
			assert.Equal(t, tt.wantQuery, got.URL.RawQuery)
			assert.Equal(t, "application/json", got.Header.Get("Accept"))
			assert.Equal(t, tt.wantClientID, got.Header.Get("Client-ID"))
			assert.Equal(t, tt.wantAuthorization, got.Header.Get("Authorization"))
			assert.Equal(t, tt.wantContentType, got.Header.Get("Content-Type"))
			assert.Equal(t, tt.wantBody, gotBody)
		})
	}
}

func Test_Invoker_Call(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantOut     map[string]any
		wantErr     error
		wantMessage string
	}{
		{
			"json body is decoded",
			http.StatusOK,
			"application/json; charset=utf-8",
			`{"total":3}`,
			map[string]any{"total": float64(3)},
			nil,
			"",
		},
		{
			"no content is not an error",
			http.StatusNoContent,
			"",
			"",
			map[string]any{},
			nil,
			"",
		},
		{
			"non-json content type maps to no content",
			http.StatusOK,
			"text/plain",
			"OK",
			map[string]any{},
			nil,
			"",
		},
		{
			"404 is classified as not found",
			http.StatusNotFound,
			"application/json",
			`{"error":"Not Found","status":404,"message":"no such user"}`,
			map[string]any{},
			ErrNotFound,
			"no such user",
		},
		{
			"409 is classified as conflict",
			http.StatusConflict,
			"application/json",
			`{"error":"Conflict","status":409,"message":"subscription already exists"}`,
			map[string]any{},
			ErrConflict,
			"subscription already exists",
		},
		{
			"error without structured payload is still classified",
			http.StatusUnauthorized,
			"text/html",
			"<html>nope</html>",
			map[string]any{},
			ErrUnauthorized,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
				if tt.contentType != "" {
					res.Header().Set("Content-Type", tt.contentType)
				}
				res.WriteHeader(tt.status)
				res.Write([]byte(tt.body))
			}))
			defer srv.Close()

			i := NewInvokerWithBaseURLs(srv.Client(), map[Family]string{Helix: srv.URL})
			out := map[string]any{}
			err := i.Call(context.Background(), Endpoint{Path: "thing"}, Credentials{}, &out)
			assert.Equal(t, tt.wantOut, out)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.body, string(apiErr.Body))
			if tt.wantMessage != "" {
				require.NotNil(t, apiErr.Payload)
				assert.Equal(t, tt.wantMessage, apiErr.Payload.Message)
			} else {
				assert.Nil(t, apiErr.Payload)
			}
		})
	}
}
