package twitchapi

import (
	"context"

	"github.com/nicklaw5/helix/v2"
)

// BroadcasterSubscription is a (paid) subscription of a user to a broadcaster
type BroadcasterSubscription struct {
	data   helix.Subscription
	client *Client
}

func (s *BroadcasterSubscription) BroadcasterID() string          { return s.data.BroadcasterID }
func (s *BroadcasterSubscription) BroadcasterName() string        { return s.data.BroadcasterLogin }
func (s *BroadcasterSubscription) BroadcasterDisplayName() string { return s.data.BroadcasterName }
func (s *BroadcasterSubscription) IsGift() bool                   { return s.data.IsGift }
func (s *BroadcasterSubscription) GifterID() string               { return s.data.GifterID }

// Tier is the subscription tier: "1000", "2000", or "3000"
func (s *BroadcasterSubscription) Tier() string {
	return s.data.Tier
}

// Broadcaster retrieves the user being subscribed to
func (s *BroadcasterSubscription) Broadcaster(ctx context.Context) (*User, error) {
	return s.client.GetUserByID(ctx, s.data.BroadcasterID)
}
