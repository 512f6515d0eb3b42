package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewRewardRedemption(t *testing.T) {
	tests := []struct {
		name            string
		status          string
		wantIsFulfilled bool
		wantIsCanceled  bool
	}{
		{"unfulfilled redemption", "unfulfilled", false, false},
		{"unfulfilled redemption, uppercase", "UNFULFILLED", false, false},
		{"fulfilled redemption", "fulfilled", true, false},
		{"canceled redemption", "canceled", false, true},
		{"unknown status", "unknown", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{
				"id": "17fa2df1-ad76-4804-bfa5-a40ef63efe63",
				"broadcaster_user_id": "44322889",
				"broadcaster_user_login": "dallas",
				"broadcaster_user_name": "Dallas",
				"user_id": "1234",
				"user_login": "cooler_user",
				"user_name": "Cooler_User",
				"user_input": "pogchamp",
				"status": "` + tt.status + `",
				"reward": {
					"id": "92af127c-7326-4483-a52b-b0da0be61c01",
					"title": "title",
					"cost": 100,
					"prompt": "reward prompt"
				},
				"redeemed_at": "2020-07-15T17:16:03.17106713Z"
			}`
			e, err := NewRewardRedemption(nil, []byte(raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantIsFulfilled, e.IsFulfilled())
			assert.Equal(t, tt.wantIsCanceled, e.IsCanceled())

			assert.Equal(t, "44322889", e.BroadcasterID())
			assert.Equal(t, "dallas", e.BroadcasterName())
			assert.Equal(t, "Cooler_User", e.UserDisplayName())
			assert.Equal(t, "pogchamp", e.UserInput())
			assert.Equal(t, "92af127c-7326-4483-a52b-b0da0be61c01", e.RewardID())
			assert.Equal(t, 100, e.RewardCost())
			assert.Equal(t, time.Date(2020, 7, 15, 17, 16, 3, 171067130, time.UTC), e.RedemptionDate())
		})
	}
}

func Test_RewardRedemption_MarshalJSON(t *testing.T) {
	raw := `{"id":"abc","broadcaster_user_id":"44322889","broadcaster_user_login":"dallas","broadcaster_user_name":"Dallas","user_id":"1234","user_login":"cooler_user","user_name":"Cooler_User","user_input":"","status":"unfulfilled","reward":{"id":"r","title":"t","cost":1,"prompt":"p"},"redeemed_at":"2020-07-15T17:16:03Z"}`
	e, err := NewRewardRedemption(nil, []byte(raw))
	require.NoError(t, err)

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(b))
}

func Test_RewardRedemption_lazy_lookups_without_client(t *testing.T) {
	e, err := NewRewardRedemption(nil, []byte(`{"broadcaster_user_id":"44322889","user_id":"1234","reward":{"id":"r"}}`))
	require.NoError(t, err)

	_, err = e.Broadcaster(context.Background())
	assert.Error(t, err)
	_, err = e.User(context.Background())
	assert.Error(t, err)
	_, err = e.Reward(context.Background())
	assert.Error(t, err)
}

func Test_NewReward(t *testing.T) {
	raw := `{
		"id": "9001",
		"broadcaster_user_id": "1337",
		"broadcaster_user_login": "cool_user",
		"broadcaster_user_name": "Cool_User",
		"is_enabled": true,
		"is_paused": false,
		"is_in_stock": true,
		"title": "Cool Reward",
		"cost": 100,
		"prompt": "reward prompt",
		"is_user_input_required": true,
		"should_redemptions_skip_request_queue": false,
		"cooldown_expires_at": null,
		"redemptions_redeemed_current_stream": null,
		"max_per_stream": {"is_enabled": true, "value": 1000},
		"max_per_user_per_stream": {"is_enabled": true, "value": 1000},
		"global_cooldown": {"is_enabled": true, "seconds": 1000},
		"background_color": "#FA1ED2"
	}`
	e, err := NewReward(nil, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "9001", e.ID())
	assert.Equal(t, "1337", e.BroadcasterID())
	assert.True(t, e.IsEnabled())
	assert.True(t, e.UserInputRequired())
	assert.Nil(t, e.CooldownExpiryDate())
	assert.Equal(t, 0, e.RedemptionsThisStream())
	assert.Equal(t, 1000, e.MaxRedemptionsPerStream())
	assert.Equal(t, 1000*time.Second, e.GlobalCooldown())
}
