package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

// payload retains the raw event exactly as Twitch delivered it, so that it can be
// forwarded without losing fields that we don't decode
type payload struct {
	raw json.RawMessage
}

func (p payload) MarshalJSON() ([]byte, error) {
	return append([]byte(nil), p.raw...), nil
}

// broadcaster supplies the accessors shared by every event that's scoped to a single
// broadcaster
type broadcaster struct {
	id     string
	login  string
	name   string
	client *twitchapi.Client
}

// BroadcasterID is the Twitch user ID of the broadcaster
func (b broadcaster) BroadcasterID() string {
	return b.id
}

// BroadcasterName is the login name of the broadcaster
func (b broadcaster) BroadcasterName() string {
	return b.login
}

// BroadcasterDisplayName is the display name of the broadcaster
func (b broadcaster) BroadcasterDisplayName() string {
	return b.name
}

// Broadcaster retrieves more information about the broadcaster
func (b broadcaster) Broadcaster(ctx context.Context) (*twitchapi.User, error) {
	return getUser(ctx, b.client, b.id)
}

// user supplies the accessors shared by events that were triggered by a viewer
type user struct {
	id     string
	login  string
	name   string
	client *twitchapi.Client
}

func (u user) UserID() string          { return u.id }
func (u user) UserName() string        { return u.login }
func (u user) UserDisplayName() string { return u.name }

// User retrieves more information about the user
func (u user) User(ctx context.Context) (*twitchapi.User, error) {
	return getUser(ctx, u.client, u.id)
}

// getUser resolves a user referenced by an event. An event can only reference a user
// that exists, so a missing user is reported as an error rather than a nil result.
func getUser(ctx context.Context, client *twitchapi.Client, userID string) (*twitchapi.User, error) {
	if client == nil {
		return nil, fmt.Errorf("no API client available to look up user %s", userID)
	}
	u, err := client.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}
	return u, nil
}

// decode unmarshals raw into v, returning the payload to be retained alongside it
func decode(raw []byte, v any) (payload, error) {
	if err := json.Unmarshal(raw, v); err != nil {
		return payload{}, fmt.Errorf("failed to decode event payload: %w", err)
	}
	return payload{raw: append(json.RawMessage(nil), raw...)}, nil
}
