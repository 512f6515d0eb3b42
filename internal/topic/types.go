package topic

import (
	"fmt"

	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/events"
)

const (
	TypeChannelUpdate          = helix.EventSubTypeChannelUpdate
	TypeStreamOnline           = helix.EventSubTypeStreamOnline
	TypeStreamOffline          = helix.EventSubTypeStreamOffline
	TypeChannelFollow          = helix.EventSubTypeChannelFollow
	TypeChannelRaid            = helix.EventSubTypeChannelRaid
	TypeChannelCheer           = helix.EventSubTypeChannelCheer
	TypeHypeTrainBegin         = helix.EventSubTypeHypeTrainBegin
	TypeHypeTrainEnd           = "channel.hype_train.end"
	TypeRewardRedemptionAdd    = "channel.channel_points_custom_reward_redemption.add"
	TypeRewardRedemptionUpdate = "channel.channel_points_custom_reward_redemption.update"
	TypeRewardUpdate           = "channel.channel_points_custom_reward.update"
	TypePredictionEnd          = "channel.prediction.end"
	TypeSubscribe              = helix.EventSubTypeChannelSubscription
	TypeSubscriptionEnd        = helix.EventSubTypeChannelSubscriptionEnd
	TypeSubscriptionGift       = helix.EventSubTypeChannelSubscriptionGift
	TypeSubscriptionMessage    = helix.EventSubTypeChannelSubscriptionMessage
)

const (
	ScopeModeratorReadFollowers = "moderator:read:followers"
	ScopeBitsRead               = "bits:read"
	ScopeChannelReadRedemptions = "channel:read:redemptions"
	ScopeChannelReadPredictions = "channel:read:predictions"
	ScopeChannelReadHypeTrain   = "channel:read:hype_train"
	ScopeChannelReadSubs        = "channel:read:subscriptions"
)

// ChannelUpdate notifies when the broadcaster updates their channel's title, category,
// or other stream metadata
func ChannelUpdate(broadcasterID string) Topic[*events.ChannelUpdate] {
	return define(TypeChannelUpdate, "2", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
	}, nil, events.NewChannelUpdate)
}

// StreamOnline notifies when the broadcaster goes live
func StreamOnline(broadcasterID string) Topic[*events.StreamOnline] {
	return define(TypeStreamOnline, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
	}, nil, events.NewStreamOnline)
}

// StreamOffline notifies when the broadcaster stops streaming
func StreamOffline(broadcasterID string) Topic[*events.StreamOffline] {
	return define(TypeStreamOffline, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
	}, nil, events.NewStreamOffline)
}

// ChannelFollow notifies when a user follows the broadcaster. The moderator must be
// the broadcaster or one of their moderators, and must have granted the
// 'moderator:read:followers' scope.
func ChannelFollow(broadcasterID, moderatorID string) Topic[*events.Follow] {
	return define(TypeChannelFollow, "2", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
		ModeratorUserID:   moderatorID,
	}, []string{ScopeModeratorReadFollowers}, events.NewFollow)
}

// ChannelRaidTo notifies when the broadcaster is raided by another channel
func ChannelRaidTo(broadcasterID string) Topic[*events.Raid] {
	return define(TypeChannelRaid, "1", helix.EventSubCondition{
		ToBroadcasterUserID: broadcasterID,
	}, nil, events.NewRaid)
}

// ChannelRaidFrom notifies when the broadcaster raids another channel
func ChannelRaidFrom(broadcasterID string) Topic[*events.Raid] {
	return define(TypeChannelRaid, "1", helix.EventSubCondition{
		FromBroadcasterUserID: broadcasterID,
	}, nil, events.NewRaid)
}

// ChannelCheer notifies when a user cheers bits in the broadcaster's channel
func ChannelCheer(broadcasterID string) Topic[*events.Cheer] {
	return define(TypeChannelCheer, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
	}, []string{ScopeBitsRead}, events.NewCheer)
}

// RewardRedemptionAdd notifies when a viewer redeems any of the broadcaster's custom
// Channel Points rewards
func RewardRedemptionAdd(broadcasterID string) Topic[*events.RewardRedemption] {
	return RewardRedemptionAddForReward(broadcasterID, "")
}

// RewardRedemptionAddForReward notifies when a viewer redeems a specific custom reward
func RewardRedemptionAddForReward(broadcasterID, rewardID string) Topic[*events.RewardRedemption] {
	return define(TypeRewardRedemptionAdd, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
		RewardID:          rewardID,
	}, []string{ScopeChannelReadRedemptions}, events.NewRewardRedemption)
}

// RewardRedemptionUpdate notifies when the status of a redemption of any of the
// broadcaster's custom rewards changes, e.g. when it's fulfilled or canceled
func RewardRedemptionUpdate(broadcasterID string) Topic[*events.RewardRedemption] {
	return RewardRedemptionUpdateForReward(broadcasterID, "")
}

// RewardRedemptionUpdateForReward notifies when the status of a redemption of a
// specific custom reward changes
func RewardRedemptionUpdateForReward(broadcasterID, rewardID string) Topic[*events.RewardRedemption] {
	return define(TypeRewardRedemptionUpdate, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
		RewardID:          rewardID,
	}, []string{ScopeChannelReadRedemptions}, events.NewRewardRedemption)
}

// RewardUpdate notifies when any of the broadcaster's custom rewards is updated
func RewardUpdate(broadcasterID string) Topic[*events.Reward] {
	return RewardUpdateForReward(broadcasterID, "")
}

// RewardUpdateForReward notifies when a specific custom reward is updated
func RewardUpdateForReward(broadcasterID, rewardID string) Topic[*events.Reward] {
	return define(TypeRewardUpdate, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
		RewardID:          rewardID,
	}, []string{ScopeChannelReadRedemptions}, events.NewReward)
}

// PredictionEnd notifies when a prediction in the broadcaster's channel is resolved
// or canceled
func PredictionEnd(broadcasterID string) Topic[*events.PredictionEnd] {
	return define(TypePredictionEnd, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
	}, []string{ScopeChannelReadPredictions}, events.NewPredictionEnd)
}

// HypeTrainBegin notifies when a Hype Train starts in the broadcaster's channel
func HypeTrainBegin(broadcasterID string) Topic[*events.HypeTrainBegin] {
	return define(TypeHypeTrainBegin, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
	}, []string{ScopeChannelReadHypeTrain}, events.NewHypeTrainBegin)
}

// HypeTrainEnd notifies when a Hype Train ends in the broadcaster's channel
func HypeTrainEnd(broadcasterID string) Topic[*events.HypeTrainEnd] {
	return define(TypeHypeTrainEnd, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
	}, []string{ScopeChannelReadHypeTrain}, events.NewHypeTrainEnd)
}

// ChannelSubscribe notifies when a user subscribes to the broadcaster's channel
func ChannelSubscribe(broadcasterID string) Topic[*events.Subscribe] {
	return define(TypeSubscribe, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
	}, []string{ScopeChannelReadSubs}, events.NewSubscribe)
}

// SubscriptionEnd notifies when a subscription to the broadcaster's channel expires
func SubscriptionEnd(broadcasterID string) Topic[*events.SubscriptionEnd] {
	return define(TypeSubscriptionEnd, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
	}, []string{ScopeChannelReadSubs}, events.NewSubscriptionEnd)
}

// SubscriptionGift notifies when a user gifts subscriptions in the broadcaster's channel
func SubscriptionGift(broadcasterID string) Topic[*events.SubscriptionGift] {
	return define(TypeSubscriptionGift, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
	}, []string{ScopeChannelReadSubs}, events.NewSubscriptionGift)
}

// SubscriptionMessage notifies when a user sends a resubscription message in the
// broadcaster's chat
func SubscriptionMessage(broadcasterID string) Topic[*events.SubscriptionMessage] {
	return define(TypeSubscriptionMessage, "1", helix.EventSubCondition{
		BroadcasterUserID: broadcasterID,
	}, []string{ScopeChannelReadSubs}, events.NewSubscriptionMessage)
}

// Parse resolves a subscription type, version, and condition to the matching topic,
// returning an error if the type is not supported or the condition doesn't carry the
// fields that the type requires
func Parse(typ, version string, condition helix.EventSubCondition) (Descriptor, error) {
	d, err := parse(typ, condition)
	if err != nil {
		return nil, err
	}
	if version != "" && d.Version() != version {
		return nil, fmt.Errorf("unsupported version %q of subscription type %s (want %q)", version, typ, d.Version())
	}
	return d, nil
}

func parse(typ string, c helix.EventSubCondition) (Descriptor, error) {
	switch typ {
	case TypeChannelRaid:
		if c.ToBroadcasterUserID != "" && c.FromBroadcasterUserID == "" {
			return ChannelRaidTo(c.ToBroadcasterUserID), nil
		}
		if c.FromBroadcasterUserID != "" && c.ToBroadcasterUserID == "" {
			return ChannelRaidFrom(c.FromBroadcasterUserID), nil
		}
		return nil, fmt.Errorf("%s condition requires exactly one of from_broadcaster_user_id and to_broadcaster_user_id", typ)
	}

	if c.BroadcasterUserID == "" {
		return nil, fmt.Errorf("%s condition requires broadcaster_user_id", typ)
	}
	switch typ {
	case TypeChannelUpdate:
		return ChannelUpdate(c.BroadcasterUserID), nil
	case TypeStreamOnline:
		return StreamOnline(c.BroadcasterUserID), nil
	case TypeStreamOffline:
		return StreamOffline(c.BroadcasterUserID), nil
	case TypeChannelFollow:
		if c.ModeratorUserID == "" {
			return nil, fmt.Errorf("%s condition requires moderator_user_id", typ)
		}
		return ChannelFollow(c.BroadcasterUserID, c.ModeratorUserID), nil
	case TypeChannelCheer:
		return ChannelCheer(c.BroadcasterUserID), nil
	case TypeRewardRedemptionAdd:
		return RewardRedemptionAddForReward(c.BroadcasterUserID, c.RewardID), nil
	case TypeRewardRedemptionUpdate:
		return RewardRedemptionUpdateForReward(c.BroadcasterUserID, c.RewardID), nil
	case TypeRewardUpdate:
		return RewardUpdateForReward(c.BroadcasterUserID, c.RewardID), nil
	case TypePredictionEnd:
		return PredictionEnd(c.BroadcasterUserID), nil
	case TypeHypeTrainBegin:
		return HypeTrainBegin(c.BroadcasterUserID), nil
	case TypeHypeTrainEnd:
		return HypeTrainEnd(c.BroadcasterUserID), nil
	case TypeSubscribe:
		return ChannelSubscribe(c.BroadcasterUserID), nil
	case TypeSubscriptionEnd:
		return SubscriptionEnd(c.BroadcasterUserID), nil
	case TypeSubscriptionGift:
		return SubscriptionGift(c.BroadcasterUserID), nil
	case TypeSubscriptionMessage:
		return SubscriptionMessage(c.BroadcasterUserID), nil
	}
	return nil, fmt.Errorf("unsupported subscription type: %s", typ)
}
