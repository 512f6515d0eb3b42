package twitchapi

import (
	"context"
	"net/url"

	"github.com/nicklaw5/helix/v2"
)

// Channel is a Twitch channel
type Channel struct {
	data   helix.ChannelInformation
	client *Client
}

// GetChannelInfo fetches information about the given broadcaster's channel, returning
// nil if no such channel exists
func (c *Client) GetChannelInfo(ctx context.Context, broadcasterID string) (*Channel, error) {
	data, err := getFirst[helix.ChannelInformation](ctx, c, "channels", url.Values{"broadcaster_id": {broadcasterID}})
	if err != nil || data == nil {
		return nil, err
	}
	return &Channel{data: *data, client: c}, nil
}

func (c *Channel) ID() string          { return c.data.BroadcasterID }
func (c *Channel) DisplayName() string { return c.data.BroadcasterName }
func (c *Channel) Language() string    { return c.data.BroadcasterLanguage }
func (c *Channel) GameID() string      { return c.data.GameID }
func (c *Channel) GameName() string    { return c.data.GameName }
func (c *Channel) Title() string       { return c.data.Title }

// Delay is the stream delay of the channel, in seconds
func (c *Channel) Delay() int {
	return c.data.Delay
}

// Broadcaster retrieves the user who owns this channel
func (c *Channel) Broadcaster(ctx context.Context) (*User, error) {
	return c.client.GetUserByID(ctx, c.data.BroadcasterID)
}
