package twitchapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/apicall"
)

const (
	// TransportMethodWebhook delivers notifications via HTTP POST to a callback URL
	TransportMethodWebhook = "webhook"
	// TransportMethodWebSocket delivers notifications over an EventSub WebSocket session
	TransportMethodWebSocket = "websocket"
)

const (
	// SubscriptionStatusEnabled is the status of a subscription that Twitch is
	// actively delivering notifications for
	SubscriptionStatusEnabled = "enabled"
	// SubscriptionStatusVerificationPending is the status of a webhook subscription
	// whose callback has not yet answered the verification challenge
	SubscriptionStatusVerificationPending = "webhook_callback_verification_pending"
)

// Transport describes how Twitch should deliver notifications for a subscription: it's
// the transport binding supplied when creating a subscription
type Transport struct {
	Method    string `json:"method"`
	Callback  string `json:"callback,omitempty"`
	Secret    string `json:"secret,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Key identifies the delivery binding: the session ID for WebSocket transports and the
// callback URL for webhooks. Two subscriptions with equal keys are delivered to the
// same place.
func (t Transport) Key() string {
	if t.Method == TransportMethodWebSocket {
		return t.Method + ":" + t.SessionID
	}
	return t.Method + ":" + t.Callback
}

// Matches returns true if the given transport (as reported by Twitch, which never
// echoes secrets) refers to the same delivery binding
func (t Transport) Matches(other Transport) bool {
	return t.Key() == other.Key()
}

// Subscription is an EventSub subscription as reported by Twitch
type Subscription struct {
	ID        string                  `json:"id"`
	Status    string                  `json:"status"`
	Type      string                  `json:"type"`
	Version   string                  `json:"version"`
	Condition helix.EventSubCondition `json:"condition"`
	Transport Transport               `json:"transport"`
	CreatedAt time.Time               `json:"created_at"`
	Cost      int                     `json:"cost"`
}

// CreateSubscriptionRequest describes an EventSub subscription to be created
type CreateSubscriptionRequest struct {
	Type      string
	Version   string
	Condition helix.EventSubCondition
	Transport Transport
}

type createSubscriptionBody struct {
	Type      string            `json:"type"`
	Version   string            `json:"version"`
	Condition map[string]string `json:"condition"`
	Transport Transport         `json:"transport"`
}

// SubscriptionFilter narrows the results of GetEventSubSubscriptions; Twitch accepts
// at most one of these fields per request
type SubscriptionFilter struct {
	Status string
	Type   string
	UserID string
}

func (f SubscriptionFilter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.UserID != "" {
		q.Set("user_id", f.UserID)
	}
	return q
}

// CreateEventSubSubscription registers a new EventSub subscription. For webhook
// transports, Twitch will subsequently send a verification challenge to the callback
// URL; the subscription's status will remain 'webhook_callback_verification_pending'
// until that challenge is answered.
func (c *Client) CreateEventSubSubscription(ctx context.Context, req CreateSubscriptionRequest) (*Subscription, error) {
	var r dataResponse[Subscription]
	err := c.call(ctx, apicall.Endpoint{
		Family: apicall.Helix,
		Method: http.MethodPost,
		Path:   "eventsub/subscriptions",
		JSONBody: &createSubscriptionBody{
			Type:      req.Type,
			Version:   req.Version,
			Condition: FormatCondition(&req.Condition),
			Transport: req.Transport,
		},
	}, &r)
	if err != nil {
		return nil, err
	}
	if len(r.Data) == 0 {
		return nil, fmt.Errorf("create subscription response did not include subscription data")
	}
	return &r.Data[0], nil
}

// DeleteEventSubSubscription removes the EventSub subscription with the given ID
func (c *Client) DeleteEventSubSubscription(ctx context.Context, id string) error {
	return c.call(ctx, apicall.Endpoint{
		Family: apicall.Helix,
		Method: http.MethodDelete,
		Path:   "eventsub/subscriptions",
		Query:  url.Values{"id": {id}},
	}, nil)
}

// GetEventSubSubscriptions lists all EventSub subscriptions owned by this application
// that match the given filter, following pagination cursors until exhausted
func (c *Client) GetEventSubSubscriptions(ctx context.Context, filter SubscriptionFilter) ([]Subscription, error) {
	subscriptions := make([]Subscription, 0)
	query := filter.query()
	for {
		var r dataResponse[Subscription]
		err := c.call(ctx, apicall.Endpoint{
			Family: apicall.Helix,
			Path:   "eventsub/subscriptions",
			Query:  query,
		}, &r)
		if err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, r.Data...)

		// Continue making requests until we've seen all subscriptions
		if r.Pagination.Cursor == "" {
			break
		}
		query.Set("after", r.Pagination.Cursor)
	}
	return subscriptions, nil
}
