package subscription

import (
	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

// Status is the lifecycle state of a subscription
type Status int

const (
	// StatusNone is the zero value, held by a subscription before it's registered
	StatusNone Status = iota

	// StatusPending subscriptions have been (or are waiting to be) requested from
	// Twitch, but are not yet confirmed
	StatusPending

	// StatusActive subscriptions are confirmed, and their notifications are dispatched
	StatusActive

	// StatusStopped is terminal: the subscription has been removed from the manager
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusStopped:
		return "stopped"
	}
	return "none"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EntrySnapshot describes the state of a single subscription held by a Manager
type EntrySnapshot struct {
	ID        string                  `json:"id"`
	Type      string                  `json:"type"`
	Version   string                  `json:"version"`
	Condition helix.EventSubCondition `json:"condition"`
	Status    Status                  `json:"status"`

	// Stale is true if the transport that the subscription was created on has been
	// lost, and the subscription is waiting to be re-created
	Stale bool `json:"stale"`

	// SubscriptionID is the ID that Twitch assigned to the subscription, if known
	SubscriptionID string `json:"subscription_id,omitempty"`

	// Handles is the number of callers attached to the subscription
	Handles int `json:"handles"`
}

func requiresVerification(binding twitchapi.Transport) bool {
	return binding.Method == twitchapi.TransportMethodWebhook
}
