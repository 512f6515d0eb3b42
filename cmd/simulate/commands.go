package main

import (
	"flag"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/topic"
)

// channel identifies the broadcaster whose events we're simulating
type channel struct {
	name   string
	userId string
}

func (c channel) login() string {
	return strings.ToLower(c.name)
}

// Command builds the event payload for a single type of EventSub notification
type Command struct {
	name     string
	initFunc func(cmd *flag.FlagSet)
	runFunc  func(c channel) (string, any)
}

var commands = []Command{
	{"online", func(cmd *flag.FlagSet) {}, runOnlineCommand},
	{"offline", func(cmd *flag.FlagSet) {}, runOfflineCommand},
	{"update", initUpdateCommand, runUpdateCommand},
	{"hype", func(cmd *flag.FlagSet) {}, runHypeCommand},
	{"hype-end", func(cmd *flag.FlagSet) {}, runHypeEndCommand},
	{"follow", initFollowCommand, runFollowCommand},
	{"raid", initRaidCommand, runRaidCommand},
	{"cheer", initCheerCommand, runCheerCommand},
	{"subscribe", initSubscribeCommand, runSubscribeCommand},
	{"gift", initGiftCommand, runGiftCommand},
	{"redeem", initRedeemCommand, runRedeemCommand},
	{"predict", initPredictCommand, runPredictCommand},
}

// Flags shared by commands that simulate an action taken by a viewer
var viewerName string
var viewerId string

func initViewerFlags(cmd *flag.FlagSet, verb string) {
	cmd.StringVar(&viewerName, "username", "BigJoeBob", "Twitch Display Name of the user who "+verb)
	cmd.StringVar(&viewerId, "user-id", "1337", "Twitch User ID of the user who "+verb)
}

func runOnlineCommand(c channel) (string, any) {
	return topic.TypeStreamOnline, helix.EventSubStreamOnlineEvent{
		ID:                   uuid.NewString(),
		BroadcasterUserID:    c.userId,
		BroadcasterUserLogin: c.login(),
		BroadcasterUserName:  c.name,
		Type:                 "live",
		StartedAt:            helix.Time{Time: time.Now()},
	}
}

func runOfflineCommand(c channel) (string, any) {
	return topic.TypeStreamOffline, helix.EventSubStreamOfflineEvent{
		BroadcasterUserID:    c.userId,
		BroadcasterUserLogin: c.login(),
		BroadcasterUserName:  c.name,
	}
}

var updateTitle string
var updateCategoryName string

func initUpdateCommand(cmd *flag.FlagSet) {
	cmd.StringVar(&updateTitle, "title", "Watching some old tapes", "New stream title")
	cmd.StringVar(&updateCategoryName, "category", "Just Chatting", "Name of the new stream category")
}

func runUpdateCommand(c channel) (string, any) {
	return topic.TypeChannelUpdate, map[string]any{
		"broadcaster_user_id":           c.userId,
		"broadcaster_user_login":        c.login(),
		"broadcaster_user_name":         c.name,
		"title":                         updateTitle,
		"language":                      "en",
		"category_id":                   "509658",
		"category_name":                 updateCategoryName,
		"content_classification_labels": []string{},
	}
}

func runHypeCommand(c channel) (string, any) {
	return topic.TypeHypeTrainBegin, helix.EventSubHypeTrainBeginEvent{
		BroadcasterUserID:    c.userId,
		BroadcasterUserLogin: c.login(),
		BroadcasterUserName:  c.name,
		Total:                137,
		Progress:             137,
		Goal:                 500,
	}
}

func runHypeEndCommand(c channel) (string, any) {
	now := time.Now()
	return topic.TypeHypeTrainEnd, map[string]any{
		"id":                     uuid.NewString(),
		"broadcaster_user_id":    c.userId,
		"broadcaster_user_login": c.login(),
		"broadcaster_user_name":  c.name,
		"level":                  2,
		"total":                  1337,
		"top_contributions":      []any{},
		"started_at":             now.Add(-5 * time.Minute).Format(time.RFC3339),
		"ended_at":               now.Format(time.RFC3339),
		"cooldown_ends_at":       now.Add(time.Hour).Format(time.RFC3339),
	}
}

func initFollowCommand(cmd *flag.FlagSet) {
	initViewerFlags(cmd, "followed the channel")
}

func runFollowCommand(c channel) (string, any) {
	return topic.TypeChannelFollow, helix.EventSubChannelFollowEvent{
		UserID:               viewerId,
		UserLogin:            strings.ToLower(viewerName),
		UserName:             viewerName,
		BroadcasterUserID:    c.userId,
		BroadcasterUserLogin: c.login(),
		BroadcasterUserName:  c.name,
		FollowedAt:           helix.Time{Time: time.Now()},
	}
}

var raidNumViewers int

func initRaidCommand(cmd *flag.FlagSet) {
	initViewerFlags(cmd, "raided the channel")
	cmd.IntVar(&raidNumViewers, "num-viewers", 99, "Number of viewers in the raid")
}

func runRaidCommand(c channel) (string, any) {
	return topic.TypeChannelRaid, helix.EventSubChannelRaidEvent{
		FromBroadcasterUserID:    viewerId,
		FromBroadcasterUserLogin: strings.ToLower(viewerName),
		FromBroadcasterUserName:  viewerName,
		ToBroadcasterUserID:      c.userId,
		ToBroadcasterUserLogin:   c.login(),
		ToBroadcasterUserName:    c.name,
		Viewers:                  raidNumViewers,
	}
}

var cheerNumBits int
var cheerMessage string

func initCheerCommand(cmd *flag.FlagSet) {
	initViewerFlags(cmd, "cheered")
	cmd.IntVar(&cheerNumBits, "num-bits", 200, "Number of bits cheered")
	cmd.StringVar(&cheerMessage, "message", "", "Text of cheer message")
}

func runCheerCommand(c channel) (string, any) {
	return topic.TypeChannelCheer, helix.EventSubChannelCheerEvent{
		UserID:               viewerId,
		UserLogin:            strings.ToLower(viewerName),
		UserName:             viewerName,
		BroadcasterUserID:    c.userId,
		BroadcasterUserLogin: c.login(),
		BroadcasterUserName:  c.name,
		Message:              cheerMessage,
		Bits:                 cheerNumBits,
	}
}

var subscribeTier string

func initSubscribeCommand(cmd *flag.FlagSet) {
	initViewerFlags(cmd, "subscribed")
	cmd.StringVar(&subscribeTier, "tier", "1000", "Subscription tier: 1000, 2000, or 3000")
}

func runSubscribeCommand(c channel) (string, any) {
	return topic.TypeSubscribe, helix.EventSubChannelSubscribeEvent{
		UserID:               viewerId,
		UserLogin:            strings.ToLower(viewerName),
		UserName:             viewerName,
		BroadcasterUserID:    c.userId,
		BroadcasterUserLogin: c.login(),
		BroadcasterUserName:  c.name,
		Tier:                 subscribeTier,
	}
}

var giftNumSubs int
var giftTier string

func initGiftCommand(cmd *flag.FlagSet) {
	initViewerFlags(cmd, "gifted subscriptions")
	cmd.IntVar(&giftNumSubs, "num-subs", 5, "Number of subscriptions gifted")
	cmd.StringVar(&giftTier, "tier", "1000", "Subscription tier: 1000, 2000, or 3000")
}

func runGiftCommand(c channel) (string, any) {
	return topic.TypeSubscriptionGift, helix.EventSubChannelSubscriptionGiftEvent{
		UserID:               viewerId,
		UserLogin:            strings.ToLower(viewerName),
		UserName:             viewerName,
		BroadcasterUserID:    c.userId,
		BroadcasterUserLogin: c.login(),
		BroadcasterUserName:  c.name,
		Total:                giftNumSubs,
		Tier:                 giftTier,
		CumulativeTotal:      giftNumSubs,
	}
}

var redeemRewardTitle string
var redeemRewardCost int
var redeemUserInput string

func initRedeemCommand(cmd *flag.FlagSet) {
	initViewerFlags(cmd, "redeemed the reward")
	cmd.StringVar(&redeemRewardTitle, "title", "Hydrate", "Title of the redeemed reward")
	cmd.IntVar(&redeemRewardCost, "cost", 100, "Channel Points cost of the redeemed reward")
	cmd.StringVar(&redeemUserInput, "input", "", "Text entered by the user, if the reward requires it")
}

func runRedeemCommand(c channel) (string, any) {
	return topic.TypeRewardRedemptionAdd, map[string]any{
		"id":                     uuid.NewString(),
		"broadcaster_user_id":    c.userId,
		"broadcaster_user_login": c.login(),
		"broadcaster_user_name":  c.name,
		"user_id":                viewerId,
		"user_login":             strings.ToLower(viewerName),
		"user_name":              viewerName,
		"user_input":             redeemUserInput,
		"status":                 "UNFULFILLED",
		"reward": map[string]any{
			"id":     uuid.NewString(),
			"title":  redeemRewardTitle,
			"cost":   redeemRewardCost,
			"prompt": "",
		},
		"redeemed_at": time.Now().Format(time.RFC3339),
	}
}

var predictTitle string
var predictCanceled bool

func initPredictCommand(cmd *flag.FlagSet) {
	cmd.StringVar(&predictTitle, "title", "Will the tape be watchable?", "Title of the prediction")
	cmd.BoolVar(&predictCanceled, "canceled", false, "Simulate a canceled prediction instead of a resolved one")
}

func runPredictCommand(c channel) (string, any) {
	now := time.Now()
	outcomes := []map[string]any{
		{"id": "outcome-yes", "title": "Yes", "color": "blue", "users": 3, "channel_points": 1500},
		{"id": "outcome-no", "title": "No", "color": "pink", "users": 1, "channel_points": 250},
	}
	event := map[string]any{
		"id":                     uuid.NewString(),
		"broadcaster_user_id":    c.userId,
		"broadcaster_user_login": c.login(),
		"broadcaster_user_name":  c.name,
		"title":                  predictTitle,
		"outcomes":               outcomes,
		"status":                 "resolved",
		"winning_outcome_id":     "outcome-yes",
		"started_at":             now.Add(-10 * time.Minute).Format(time.RFC3339),
		"ended_at":               now.Format(time.RFC3339),
	}
	if predictCanceled {
		event["status"] = "canceled"
		event["winning_outcome_id"] = nil
	}
	return topic.TypePredictionEnd, event
}
