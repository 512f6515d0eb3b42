package twitchapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Client_GetCustomRewardRedemptionByID(t *testing.T) {
	c := newTestClient(t, func(res http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/helix/channel_points/custom_rewards/redemptions", req.URL.Path)
		assert.Equal(t, "274637212", req.URL.Query().Get("broadcaster_id"))
		assert.Equal(t, "92af127c-7326-4483-a52b-b0da0be61c01", req.URL.Query().Get("reward_id"))
		res.Header().Set("Content-Type", "application/json")
		if req.URL.Query().Get("id") != "17fa2df1-ad76-4804-bfa5-a40ef63efe63" {
			res.Write([]byte(`{"data":[]}`))
			return
		}
		res.Write([]byte(`{"data":[{
			"broadcaster_name": "torpedo09",
			"broadcaster_login": "torpedo09",
			"broadcaster_id": "274637212",
			"id": "17fa2df1-ad76-4804-bfa5-a40ef63efe63",
			"user_login": "torpedo09",
			"user_id": "274637212",
			"user_name": "torpedo09",
			"user_input": "",
			"status": "CANCELED",
			"redeemed_at": "2020-07-01T18:37:32Z",
			"reward": {
				"id": "92af127c-7326-4483-a52b-b0da0be61c01",
				"title": "game analysis",
				"prompt": "",
				"cost": 50000
			}
		}]}`))
	})

	r, err := c.GetCustomRewardRedemptionByID(context.Background(), "274637212", "92af127c-7326-4483-a52b-b0da0be61c01", "17fa2df1-ad76-4804-bfa5-a40ef63efe63")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.IsCanceled())
	assert.False(t, r.IsFulfilled())
	assert.Equal(t, "game analysis", r.RewardTitle())
	assert.Equal(t, 50000, r.RewardCost())
	assert.Equal(t, time.Date(2020, 7, 1, 18, 37, 32, 0, time.UTC), r.RedemptionDate())

	r, err = c.GetCustomRewardRedemptionByID(context.Background(), "274637212", "92af127c-7326-4483-a52b-b0da0be61c01", "nope")
	assert.NoError(t, err)
	assert.Nil(t, r)
}

func Test_Client_GetCustomRewardByID(t *testing.T) {
	c := newTestClient(t, func(res http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/helix/channel_points/custom_rewards", req.URL.Path)
		res.Header().Set("Content-Type", "application/json")
		res.Write([]byte(`{"data":[{"broadcaster_id":"274637212","id":"92af127c","title":"game analysis 1v1","prompt":"","cost":50000,"background_color":"#00E5CB","is_enabled":true,"is_user_input_required":false,"is_paused":false,"is_in_stock":true}]}`))
	})

	r, err := c.GetCustomRewardByID(context.Background(), "274637212", "92af127c")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "game analysis 1v1", r.Title())
	assert.Equal(t, "#00E5CB", r.BackgroundColor())
	assert.True(t, r.IsEnabled())
	assert.True(t, r.IsInStock())
}
