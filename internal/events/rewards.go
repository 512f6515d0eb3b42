package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

// RewardRedemption is sent when a viewer redeems a custom Channel Points reward, and
// again whenever the broadcaster changes the status of that redemption
type RewardRedemption struct {
	payload
	broadcaster
	user
	data   helix.EventSubChannelPointsCustomRewardRedemptionEvent
	client *twitchapi.Client
}

func NewRewardRedemption(client *twitchapi.Client, raw []byte) (*RewardRedemption, error) {
	e := &RewardRedemption{client: client}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	e.user = user{e.data.UserID, e.data.UserLogin, e.data.UserName, client}
	return e, nil
}

func (e *RewardRedemption) ID() string                { return e.data.ID }
func (e *RewardRedemption) UserInput() string         { return e.data.UserInput }
func (e *RewardRedemption) RedemptionDate() time.Time { return e.data.RedeemedAt.Time }
func (e *RewardRedemption) RewardID() string          { return e.data.Reward.ID }
func (e *RewardRedemption) RewardTitle() string       { return e.data.Reward.Title }
func (e *RewardRedemption) RewardCost() int           { return e.data.Reward.Cost }
func (e *RewardRedemption) RewardPrompt() string      { return e.data.Reward.Prompt }

// Status is "unfulfilled", "fulfilled", "canceled", or "unknown"
func (e *RewardRedemption) Status() string {
	return e.data.Status
}

// IsFulfilled returns true if the broadcaster has marked the redemption as fulfilled
func (e *RewardRedemption) IsFulfilled() bool {
	return equalFoldStatus(e.data.Status, twitchapi.RedemptionStatusFulfilled)
}

// IsCanceled returns true if the redemption was canceled and its points refunded
func (e *RewardRedemption) IsCanceled() bool {
	return equalFoldStatus(e.data.Status, twitchapi.RedemptionStatusCanceled)
}

// Reward retrieves the full details of the reward that was redeemed
func (e *RewardRedemption) Reward(ctx context.Context) (*twitchapi.CustomReward, error) {
	if e.client == nil {
		return nil, fmt.Errorf("no API client available to look up reward %s", e.data.Reward.ID)
	}
	r, err := e.client.GetCustomRewardByID(ctx, e.data.BroadcasterUserID, e.data.Reward.ID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("reward %s not found", e.data.Reward.ID)
	}
	return r, nil
}

// Reward is sent when a custom Channel Points reward is added, updated, or removed
type Reward struct {
	payload
	broadcaster
	data helix.EventSubChannelPointsCustomRewardEvent
}

func NewReward(client *twitchapi.Client, raw []byte) (*Reward, error) {
	e := &Reward{}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	return e, nil
}

func (e *Reward) ID() string              { return e.data.ID }
func (e *Reward) IsEnabled() bool         { return e.data.IsEnabled }
func (e *Reward) IsPaused() bool          { return e.data.IsPaused }
func (e *Reward) IsInStock() bool         { return e.data.IsInStock }
func (e *Reward) Title() string           { return e.data.Title }
func (e *Reward) Cost() int               { return e.data.Cost }
func (e *Reward) Prompt() string          { return e.data.Prompt }
func (e *Reward) UserInputRequired() bool { return e.data.IsUserInputRequired }
func (e *Reward) AutoApproved() bool      { return e.data.ShouldRedemptionsSkipRequestQueue }
func (e *Reward) BackgroundColor() string { return e.data.BackgroundColor }

// CooldownExpiryDate is the time at which the reward's cooldown expires, or nil if it
// isn't on cooldown
func (e *Reward) CooldownExpiryDate() *time.Time {
	if e.data.CooldownExpiresAt.IsZero() {
		return nil
	}
	t := e.data.CooldownExpiresAt.Time
	return &t
}

// RedemptionsThisStream is the number of times the reward has been redeemed in the
// current stream; Twitch reports 0 when the broadcaster is offline or no per-stream
// limit applies
func (e *Reward) RedemptionsThisStream() int {
	return e.data.RedemptionsRedeemedCurrentStream
}

// MaxRedemptionsPerStream is the per-stream redemption limit, or 0 if unlimited
func (e *Reward) MaxRedemptionsPerStream() int {
	if !e.data.MaxPerStream.IsEnabled {
		return 0
	}
	return e.data.MaxPerStream.Value
}

// GlobalCooldown is the cooldown between redemptions, or 0 if none is configured
func (e *Reward) GlobalCooldown() time.Duration {
	if !e.data.GlobalCooldown.IsEnabled {
		return 0
	}
	return time.Duration(e.data.GlobalCooldown.Seconds) * time.Second
}

// EventSub reports redemption statuses in lowercase, whereas the Helix API uses
// uppercase
func equalFoldStatus(status, want string) bool {
	return strings.EqualFold(status, want)
}
