package twitchapi

import (
	"context"
	"net/url"
	"time"

	"github.com/nicklaw5/helix/v2"
)

const (
	RedemptionStatusUnfulfilled = "UNFULFILLED"
	RedemptionStatusFulfilled   = "FULFILLED"
	RedemptionStatusCanceled    = "CANCELED"
)

// CustomReward is a custom Channel Points reward
type CustomReward struct {
	data   helix.ChannelCustomReward
	client *Client
}

// GetCustomRewardByID fetches a single custom reward, returning nil if the broadcaster
// has no such reward. Requires a user access token with the 'channel:read:redemptions'
// scope.
func (c *Client) GetCustomRewardByID(ctx context.Context, broadcasterID, rewardID string) (*CustomReward, error) {
	data, err := getFirst[helix.ChannelCustomReward](ctx, c, "channel_points/custom_rewards", url.Values{
		"broadcaster_id": {broadcasterID},
		"id":             {rewardID},
	})
	if err != nil || data == nil {
		return nil, err
	}
	return &CustomReward{data: *data, client: c}, nil
}

func (r *CustomReward) ID() string              { return r.data.ID }
func (r *CustomReward) BroadcasterID() string   { return r.data.BroadcasterID }
func (r *CustomReward) Title() string           { return r.data.Title }
func (r *CustomReward) Prompt() string          { return r.data.Prompt }
func (r *CustomReward) Cost() int               { return r.data.Cost }
func (r *CustomReward) BackgroundColor() string { return r.data.BackgroundColor }
func (r *CustomReward) IsEnabled() bool         { return r.data.IsEnabled }
func (r *CustomReward) IsPaused() bool          { return r.data.IsPaused }
func (r *CustomReward) IsInStock() bool         { return r.data.IsInStock }
func (r *CustomReward) UserInputRequired() bool { return r.data.IsUserInputRequired }

// Broadcaster retrieves the user who owns this reward
func (r *CustomReward) Broadcaster(ctx context.Context) (*User, error) {
	return r.client.GetUserByID(ctx, r.data.BroadcasterID)
}

// CustomRewardRedemption is a single redemption of a custom Channel Points reward
type CustomRewardRedemption struct {
	data   helix.ChannelCustomRewardsRedemption
	client *Client
}

// GetCustomRewardRedemptionByID fetches a single redemption of the given reward,
// returning nil if no such redemption exists. Requires a user access token with the
// 'channel:read:redemptions' scope.
func (c *Client) GetCustomRewardRedemptionByID(ctx context.Context, broadcasterID, rewardID, redemptionID string) (*CustomRewardRedemption, error) {
	data, err := getFirst[helix.ChannelCustomRewardsRedemption](ctx, c, "channel_points/custom_rewards/redemptions", url.Values{
		"broadcaster_id": {broadcasterID},
		"reward_id":      {rewardID},
		"id":             {redemptionID},
	})
	if err != nil || data == nil {
		return nil, err
	}
	return &CustomRewardRedemption{data: *data, client: c}, nil
}

func (r *CustomRewardRedemption) ID() string                     { return r.data.ID }
func (r *CustomRewardRedemption) BroadcasterID() string          { return r.data.BroadcasterID }
func (r *CustomRewardRedemption) BroadcasterName() string        { return r.data.BroadcasterLogin }
func (r *CustomRewardRedemption) BroadcasterDisplayName() string { return r.data.BroadcasterName }
func (r *CustomRewardRedemption) UserID() string                 { return r.data.UserID }
func (r *CustomRewardRedemption) UserName() string               { return r.data.UserLogin }
func (r *CustomRewardRedemption) UserDisplayName() string        { return r.data.UserName }
func (r *CustomRewardRedemption) UserInput() string              { return r.data.UserInput }
func (r *CustomRewardRedemption) RedemptionDate() time.Time      { return r.data.RedeemedAt.Time }
func (r *CustomRewardRedemption) RewardID() string               { return r.data.Reward.ID }
func (r *CustomRewardRedemption) RewardTitle() string            { return r.data.Reward.Title }
func (r *CustomRewardRedemption) RewardPrompt() string           { return r.data.Reward.Prompt }
func (r *CustomRewardRedemption) RewardCost() int                { return r.data.Reward.Cost }

// IsFulfilled returns true if the broadcaster has marked the redemption as fulfilled
func (r *CustomRewardRedemption) IsFulfilled() bool {
	return r.data.Status == RedemptionStatusFulfilled
}

// IsCanceled returns true if the redemption was canceled and its points refunded
func (r *CustomRewardRedemption) IsCanceled() bool {
	return r.data.Status == RedemptionStatusCanceled
}

// Reward retrieves the full details of the reward that was redeemed
func (r *CustomRewardRedemption) Reward(ctx context.Context) (*CustomReward, error) {
	return r.client.GetCustomRewardByID(ctx, r.data.BroadcasterID, r.data.Reward.ID)
}

// User retrieves the user who redeemed the reward
func (r *CustomRewardRedemption) User(ctx context.Context) (*User, error) {
	return r.client.GetUserByID(ctx, r.data.UserID)
}
