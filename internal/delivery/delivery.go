package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golden-vcr/eventsub/internal/subscription"
	"github.com/golden-vcr/eventsub/internal/topic"
	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

// Message types conveyed in the Twitch-Eventsub-Message-Type header (for webhooks) or
// the metadata.message_type field (for WebSocket sessions)
const (
	MessageTypeVerification = "webhook_callback_verification"
	MessageTypeNotification = "notification"
	MessageTypeRevocation   = "revocation"
	MessageTypeWelcome      = "session_welcome"
	MessageTypeKeepalive    = "session_keepalive"
	MessageTypeReconnect    = "session_reconnect"
)

// Receiver accepts the messages that Twitch delivers for our subscriptions
type Receiver interface {
	OnVerified(topicID, ref string) bool
	OnNotification(topicID, ref string, payload json.RawMessage)
	OnRevoked(topicID, ref, reason string)
}

// Session is a Receiver that's additionally informed when the transport carrying its
// subscriptions goes away or comes back
type Session interface {
	Receiver
	OnTransportLost()
	OnTransportRestored(ctx context.Context, binding twitchapi.Transport)
}

var _ Session = (*subscription.Manager)(nil)

// Payload is the body of a webhook request, or the payload of a WebSocket message,
// that pertains to a subscription
type Payload struct {
	Subscription twitchapi.Subscription `json:"subscription"`
	Challenge    string                 `json:"challenge,omitempty"`
	Event        json.RawMessage        `json:"event,omitempty"`
}

// TopicID returns the canonical ID of the subscription that the payload pertains to
func (p *Payload) TopicID() string {
	return topic.CanonicalID(p.Subscription.Type, p.Subscription.Condition)
}

// Deliver hands a notification or revocation message to the receiver
func Deliver(r Receiver, messageType string, p *Payload) error {
	switch messageType {
	case MessageTypeNotification:
		if len(p.Event) == 0 {
			return fmt.Errorf("notification for subscription %s has no event", p.Subscription.ID)
		}
		r.OnNotification(p.TopicID(), p.Subscription.ID, p.Event)
		return nil
	case MessageTypeRevocation:
		r.OnRevoked(p.TopicID(), p.Subscription.ID, p.Subscription.Status)
		return nil
	}
	return fmt.Errorf("unsupported message type '%s'", messageType)
}
