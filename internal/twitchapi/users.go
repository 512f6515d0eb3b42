package twitchapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/apicall"
)

// User is a Twitch user
type User struct {
	data   helix.User
	client *Client
}

// GetUserByID fetches the user with the given ID, returning nil if no such user exists
func (c *Client) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return c.getUser(ctx, url.Values{"id": {userID}})
}

// GetUserByName fetches the user with the given login name, returning nil if no such
// user exists
func (c *Client) GetUserByName(ctx context.Context, login string) (*User, error) {
	return c.getUser(ctx, url.Values{"login": {login}})
}

func (c *Client) getUser(ctx context.Context, query url.Values) (*User, error) {
	data, err := getFirst[helix.User](ctx, c, "users", query)
	if err != nil || data == nil {
		return nil, err
	}
	return &User{data: *data, client: c}, nil
}

func (u *User) ID() string                { return u.data.ID }
func (u *User) Name() string              { return u.data.Login }
func (u *User) DisplayName() string       { return u.data.DisplayName }
func (u *User) Type() string              { return u.data.Type }
func (u *User) BroadcasterType() string   { return u.data.BroadcasterType }
func (u *User) Description() string       { return u.data.Description }
func (u *User) ProfilePictureURL() string { return u.data.ProfileImageURL }
func (u *User) OfflinePlaceholderURL() string {
	return u.data.OfflineImageURL
}

// CreationDate is the time at which the user registered on Twitch
func (u *User) CreationDate() time.Time {
	return u.data.CreatedAt.Time
}

// Channel retrieves the channel information for the user
func (u *User) Channel(ctx context.Context) (*Channel, error) {
	return u.client.GetChannelInfo(ctx, u.data.ID)
}

// SubscriptionCheck is the result of checking whether a user is subscribed to a
// broadcaster
type SubscriptionCheck struct {
	Subscribed bool

	// Subscription describes the user's subscription, if Subscribed is true
	Subscription *BroadcasterSubscription
}

// IsSubscribedTo checks whether the user is subscribed to the given broadcaster. Twitch
// answers with a 404 when the user is not subscribed, so that case is reported as a
// result with Subscribed set to false; any other failure is returned as an error.
// Requires a user access token with the 'user:read:subscriptions' scope.
func (u *User) IsSubscribedTo(ctx context.Context, broadcasterID string) (SubscriptionCheck, error) {
	data, err := getFirst[helix.Subscription](ctx, u.client, "subscriptions/user", url.Values{
		"broadcaster_id": {broadcasterID},
		"user_id":        {u.data.ID},
	})
	if errors.Is(err, apicall.ErrNotFound) {
		return SubscriptionCheck{Subscribed: false}, nil
	}
	if err != nil {
		return SubscriptionCheck{}, err
	}
	if data == nil {
		return SubscriptionCheck{Subscribed: false}, nil
	}
	return SubscriptionCheck{
		Subscribed:   true,
		Subscription: &BroadcasterSubscription{data: *data, client: u.client},
	}, nil
}

// Follows checks whether the user follows the given broadcaster. Requires a user
// access token with the 'user:read:follows' scope.
func (u *User) Follows(ctx context.Context, broadcasterID string) (bool, error) {
	// Only the presence of a result matters, not its contents
	data, err := getFirst[json.RawMessage](ctx, u.client, "channels/followed", url.Values{
		"broadcaster_id": {broadcasterID},
		"user_id":        {u.data.ID},
	})
	if err != nil {
		return false, err
	}
	return data != nil, nil
}
