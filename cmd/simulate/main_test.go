package main

import (
	"flag"
	"io"
	"testing"

	"github.com/nicklaw5/helix/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golden-vcr/eventsub"
	"github.com/golden-vcr/eventsub/internal/delivery"
	"github.com/golden-vcr/eventsub/internal/topic"
)

func Test_commands(t *testing.T) {
	params := eventsub.RequiredSubscriptionConditionParams{ChannelUserId: "1337"}
	for i := range commands {
		command := &commands[i]
		t.Run(command.name, func(t *testing.T) {
			flagSet := flag.NewFlagSet(command.name, flag.ContinueOnError)
			command.initFunc(flagSet)
			require.NoError(t, flagSet.Parse(nil))

			subscriptionType, event := command.runFunc(channel{name: "GoldenVCR", userId: "1337"})
			payload, err := buildNotification(params, subscriptionType, event)
			require.NoError(t, err)
			assert.Equal(t, subscriptionType, payload.Subscription.Type)

			// Every simulated event must be decodable by the topic it's delivered for
			d, err := topic.Parse(payload.Subscription.Type, payload.Subscription.Version, payload.Subscription.Condition)
			require.NoError(t, err)
			assert.Equal(t, d.ID(), payload.TopicID())
			decoded, err := d.Decode(nil, payload.Event)
			assert.NoError(t, err)
			assert.NotNil(t, decoded)
		})
	}
}

func Test_buildNotification_unknown_type(t *testing.T) {
	_, err := buildNotification(eventsub.RequiredSubscriptionConditionParams{ChannelUserId: "1337"}, "channel.ban", map[string]any{})
	assert.ErrorContains(t, err, "no subscription of type channel.ban")
}

func Test_newSignedRequest(t *testing.T) {
	payload, err := buildNotification(eventsub.RequiredSubscriptionConditionParams{ChannelUserId: "1337"}, topic.TypeStreamOffline, map[string]any{
		"broadcaster_user_id":    "1337",
		"broadcaster_user_login": "goldenvcr",
		"broadcaster_user_name":  "GoldenVCR",
	})
	require.NoError(t, err)

	req, err := newSignedRequest("http://localhost:5004/callback", "shh", payload)
	require.NoError(t, err)
	assert.Equal(t, delivery.MessageTypeNotification, req.Header.Get(TwitchHeaderMessageType))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.True(t, helix.VerifyEventSubNotification("shh", req.Header, string(body)))
	assert.False(t, helix.VerifyEventSubNotification("some-other-secret", req.Header, string(body)))
}
