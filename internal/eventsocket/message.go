package eventsocket

import (
	"encoding/json"
	"time"

	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

type message struct {
	Metadata metadata        `json:"metadata"`
	Payload  json.RawMessage `json:"payload"`
}

type metadata struct {
	MessageID           string    `json:"message_id"`
	MessageType         string    `json:"message_type"`
	MessageTimestamp    time.Time `json:"message_timestamp"`
	SubscriptionType    string    `json:"subscription_type,omitempty"`
	SubscriptionVersion string    `json:"subscription_version,omitempty"`
}

type sessionPayload struct {
	Session session `json:"session"`
}

type session struct {
	ID                      string    `json:"id"`
	Status                  string    `json:"status"`
	ConnectedAt             time.Time `json:"connected_at"`
	KeepaliveTimeoutSeconds int       `json:"keepalive_timeout_seconds"`
	ReconnectURL            string    `json:"reconnect_url"`
}

func (s *session) keepalive() time.Duration {
	if s.KeepaliveTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.KeepaliveTimeoutSeconds) * time.Second
}

func (s *session) binding() twitchapi.Transport {
	return twitchapi.Transport{
		Method:    twitchapi.TransportMethodWebSocket,
		SessionID: s.ID,
	}
}
