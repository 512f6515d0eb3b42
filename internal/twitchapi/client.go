// Package twitchapi provides typed access to the subset of the Twitch Helix API used
// by this service: EventSub subscription management, plus a handful of resources
// (users, channels, channel points rewards, subscriptions) that domain events can
// resolve lazily. All requests go through an apicall.Invoker.
package twitchapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/golden-vcr/eventsub/internal/apicall"
)

// TokenSource supplies the access token to be sent with each request. Caching and
// refreshing tokens is the TokenSource's responsibility; the Client asks for a token
// on every call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token, e.g. a user access
// token obtained out-of-band
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// Client is a Twitch API client bound to a single application (client ID) and token
// source. Domain objects returned by a Client hold a reference back to it so that
// related resources can be fetched on demand.
type Client struct {
	invoker  *apicall.Invoker
	clientID string
	tokens   TokenSource
}

// NewClient initializes a Client that sends requests via the given Invoker
func NewClient(invoker *apicall.Invoker, clientID string, tokens TokenSource) *Client {
	return &Client{
		invoker:  invoker,
		clientID: clientID,
		tokens:   tokens,
	}
}

// ClientID returns the Twitch application client ID used by this client
func (c *Client) ClientID() string {
	return c.clientID
}

func (c *Client) call(ctx context.Context, e apicall.Endpoint, out any) error {
	creds := apicall.Credentials{ClientID: c.clientID}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to get access token: %w", err)
		}
		creds.AccessToken = token
	}
	return c.invoker.Call(ctx, e, creds, out)
}

// dataResponse is the envelope in which Helix returns most resources
type dataResponse[T any] struct {
	Data       []T `json:"data"`
	Pagination struct {
		Cursor string `json:"cursor"`
	} `json:"pagination"`
}

// getFirst issues a GET request to a Helix endpoint and returns the first item in the
// response's data array, or nil if the array is empty
func getFirst[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	var r dataResponse[T]
	if err := c.call(ctx, apicall.Endpoint{Family: apicall.Helix, Path: path, Query: query}, &r); err != nil {
		return nil, err
	}
	if len(r.Data) == 0 {
		return nil, nil
	}
	return &r.Data[0], nil
}
