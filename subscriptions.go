package eventsub

import (
	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/topic"
)

// Subscriptions declares all of the Twitch EventSub subscriptions that must be held
// for our app to function
var Subscriptions = RequiredSubscriptions{
	{
		Type:    topic.TypeChannelUpdate,
		Version: "2",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
	},
	{
		Type:    topic.TypeStreamOnline,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
	},
	{
		Type:    topic.TypeStreamOffline,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
	},
	{
		Type:    topic.TypeHypeTrainBegin,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
		RequiredScopes: []string{
			topic.ScopeChannelReadHypeTrain,
		},
	},
	{
		Type:    topic.TypeHypeTrainEnd,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
		RequiredScopes: []string{
			topic.ScopeChannelReadHypeTrain,
		},
	},
	{
		Type:    topic.TypeChannelFollow,
		Version: "2",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
			ModeratorUserID:   "{{.ChannelUserId}}",
		},
		RequiredScopes: []string{
			topic.ScopeModeratorReadFollowers,
		},
	},
	{
		Type:    topic.TypeChannelRaid,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			ToBroadcasterUserID: "{{.ChannelUserId}}",
		},
	},
	{
		Type:    topic.TypeSubscribe,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
		RequiredScopes: []string{
			topic.ScopeChannelReadSubs,
		},
	},
	{
		Type:    topic.TypeSubscriptionEnd,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
		RequiredScopes: []string{
			topic.ScopeChannelReadSubs,
		},
	},
	{
		Type:    topic.TypeSubscriptionGift,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
		RequiredScopes: []string{
			topic.ScopeChannelReadSubs,
		},
	},
	{
		Type:    topic.TypeSubscriptionMessage,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
		RequiredScopes: []string{
			topic.ScopeChannelReadSubs,
		},
	},
	{
		Type:    topic.TypeChannelCheer,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
		RequiredScopes: []string{
			topic.ScopeBitsRead,
		},
	},
	{
		Type:    topic.TypeRewardRedemptionAdd,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
		RequiredScopes: []string{
			topic.ScopeChannelReadRedemptions,
		},
	},
	{
		Type:    topic.TypePredictionEnd,
		Version: "1",
		TemplatedCondition: helix.EventSubCondition{
			BroadcasterUserID: "{{.ChannelUserId}}",
		},
		RequiredScopes: []string{
			topic.ScopeChannelReadPredictions,
		},
	},
}
