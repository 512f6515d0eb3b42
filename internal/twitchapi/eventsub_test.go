package twitchapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nicklaw5/helix/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golden-vcr/eventsub/internal/apicall"
)

func Test_Transport_Key(t *testing.T) {
	webhook := Transport{Method: TransportMethodWebhook, Callback: "https://example.com/callback", Secret: "shh"}
	echoed := Transport{Method: TransportMethodWebhook, Callback: "https://example.com/callback"}
	socket := Transport{Method: TransportMethodWebSocket, SessionID: "AQoQexAWVYKSTIu4ec_2VAxyuhAB"}
	otherSocket := Transport{Method: TransportMethodWebSocket, SessionID: "AQoQILE98gtqShGmLD7AM6yJThAB"}

	assert.True(t, webhook.Matches(echoed))
	assert.False(t, webhook.Matches(socket))
	assert.False(t, socket.Matches(otherSocket))
	assert.Equal(t, "websocket:AQoQexAWVYKSTIu4ec_2VAxyuhAB", socket.Key())
}

func Test_Client_CreateEventSubSubscription(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	c := newTestClient(t, func(res http.ResponseWriter, req *http.Request) {
		gotMethod = req.Method
		assert.Equal(t, "/helix/eventsub/subscriptions", req.URL.Path)
		b, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(b, &gotBody))

		res.Header().Set("Content-Type", "application/json")
		res.WriteHeader(http.StatusAccepted)
		res.Write([]byte(`{"data":[{"id":"f1c2a387-161a-49f9-a165-0f21d7a4e1c4","status":"webhook_callback_verification_pending","type":"channel.channel_points_custom_reward_redemption.add","version":"1","condition":{"broadcaster_user_id":"44322889"},"transport":{"method":"webhook","callback":"https://example.com/callback"},"created_at":"2019-11-16T10:11:12.634234626Z","cost":0}],"total":1,"total_cost":0,"max_total_cost":10000}`))
	})

	got, err := c.CreateEventSubSubscription(context.Background(), CreateSubscriptionRequest{
		Type:      "channel.channel_points_custom_reward_redemption.add",
		Version:   "1",
		Condition: helix.EventSubCondition{BroadcasterUserID: "44322889"},
		Transport: Transport{Method: TransportMethodWebhook, Callback: "https://example.com/callback", Secret: "s3cr3t-s3cr3t"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, map[string]any{
		"type":    "channel.channel_points_custom_reward_redemption.add",
		"version": "1",
		"condition": map[string]any{
			"broadcaster_user_id": "44322889",
		},
		"transport": map[string]any{
			"method":   "webhook",
			"callback": "https://example.com/callback",
			"secret":   "s3cr3t-s3cr3t",
		},
	}, gotBody)
	assert.Equal(t, "f1c2a387-161a-49f9-a165-0f21d7a4e1c4", got.ID)
	assert.Equal(t, "webhook_callback_verification_pending", got.Status)
	assert.Equal(t, "44322889", got.Condition.BroadcasterUserID)
	assert.Equal(t, "https://example.com/callback", got.Transport.Callback)
}

func Test_Client_GetEventSubSubscriptions_paginates(t *testing.T) {
	requests := 0
	c := newTestClient(t, func(res http.ResponseWriter, req *http.Request) {
		requests++
		assert.Equal(t, "stream.online", req.URL.Query().Get("type"))
		res.Header().Set("Content-Type", "application/json")
		if req.URL.Query().Get("after") == "" {
			res.Write([]byte(`{"data":[{"id":"1","type":"stream.online"}],"pagination":{"cursor":"page-2"}}`))
			return
		}
		assert.Equal(t, "page-2", req.URL.Query().Get("after"))
		res.Write([]byte(`{"data":[{"id":"2","type":"stream.online"}],"pagination":{}}`))
	})

	got, err := c.GetEventSubSubscriptions(context.Background(), SubscriptionFilter{Type: "stream.online"})
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}

func Test_Client_DeleteEventSubSubscription(t *testing.T) {
	c := newTestClient(t, func(res http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodDelete, req.Method)
		if req.URL.Query().Get("id") != "known" {
			res.Header().Set("Content-Type", "application/json")
			res.WriteHeader(http.StatusNotFound)
			res.Write([]byte(`{"error":"Not Found","status":404,"message":"subscription not found"}`))
			return
		}
		res.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.DeleteEventSubSubscription(context.Background(), "known"))
	err := c.DeleteEventSubSubscription(context.Background(), "unknown")
	assert.ErrorIs(t, err, apicall.ErrNotFound)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "my-client-id", req.Header.Get("Client-ID"))
		assert.Equal(t, "Bearer my-token", req.Header.Get("Authorization"))
		handler(res, req)
	}))
	t.Cleanup(srv.Close)
	invoker := apicall.NewInvokerWithBaseURLs(srv.Client(), map[apicall.Family]string{
		apicall.Helix: srv.URL + "/helix/",
	})
	return NewClient(invoker, "my-client-id", StaticToken("my-token"))
}
