package delivery

import (
	"encoding/json"
	"testing"

	"github.com/nicklaw5/helix/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

func Test_Deliver(t *testing.T) {
	tests := []struct {
		name        string
		messageType string
		payload     Payload
		wantErr     bool
		wantCalls   []string
	}{
		{
			"notification is delivered by canonical topic ID",
			MessageTypeNotification,
			Payload{
				Subscription: twitchapi.Subscription{
					ID:        "f1c2a387-161a-49f9-a165-0f21d7a4e1c4",
					Type:      "channel.channel_points_custom_reward_redemption.add",
					Condition: helix.EventSubCondition{BroadcasterUserID: "44322889"},
				},
				Event: json.RawMessage(`{"status":"UNFULFILLED"}`),
			},
			false,
			[]string{`notification channel.channel_points_custom_reward_redemption.add.44322889 f1c2a387-161a-49f9-a165-0f21d7a4e1c4 {"status":"UNFULFILLED"}`},
		},
		{
			"notification without event is rejected",
			MessageTypeNotification,
			Payload{
				Subscription: twitchapi.Subscription{ID: "abc", Type: "stream.online"},
			},
			true,
			nil,
		},
		{
			"revocation conveys subscription status as reason",
			MessageTypeRevocation,
			Payload{
				Subscription: twitchapi.Subscription{
					ID:        "abc",
					Status:    "authorization_revoked",
					Type:      "stream.online",
					Condition: helix.EventSubCondition{BroadcasterUserID: "1337"},
				},
			},
			false,
			[]string{"revoked stream.online.1337 abc authorization_revoked"},
		},
		{
			"unknown message type is rejected",
			"something_else",
			Payload{},
			true,
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &mockReceiver{}
			err := Deliver(r, tt.messageType, &tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, r.calls)
		})
	}
}

func Test_Deduplicator(t *testing.T) {
	d, err := NewDeduplicator(2)
	require.NoError(t, err)

	assert.False(t, d.IsDuplicate("a"))
	assert.True(t, d.IsDuplicate("a"))
	assert.False(t, d.IsDuplicate(""))
	assert.False(t, d.IsDuplicate(""))

	// Oldest IDs are forgotten once capacity is exceeded
	assert.False(t, d.IsDuplicate("b"))
	assert.False(t, d.IsDuplicate("c"))
	assert.False(t, d.IsDuplicate("a"))

	d.Forget("c")
	assert.False(t, d.IsDuplicate("c"))
}

type mockReceiver struct {
	verified map[string]bool
	calls    []string
}

func (m *mockReceiver) OnVerified(topicID, ref string) bool {
	m.calls = append(m.calls, "verified "+topicID+" "+ref)
	return m.verified[topicID]
}

func (m *mockReceiver) OnNotification(topicID, ref string, payload json.RawMessage) {
	m.calls = append(m.calls, "notification "+topicID+" "+ref+" "+string(payload))
}

func (m *mockReceiver) OnRevoked(topicID, ref, reason string) {
	m.calls = append(m.calls, "revoked "+topicID+" "+ref+" "+reason)
}
