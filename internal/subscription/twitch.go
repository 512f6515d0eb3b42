package subscription

import (
	"context"

	"github.com/golden-vcr/eventsub/internal/topic"
	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

// API represents the subset of Twitch API client functionality used to create, list,
// and remove EventSub subscriptions
type API interface {
	topic.Creator
	DeleteEventSubSubscription(ctx context.Context, id string) error
}

var _ API = (*twitchapi.Client)(nil)
