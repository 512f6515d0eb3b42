package events

import (
	"context"

	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

// Subscription tiers as reported by EventSub
const (
	SubscriptionTier1 = "1000"
	SubscriptionTier2 = "2000"
	SubscriptionTier3 = "3000"
)

// Subscribe is sent when a user subscribes to a channel, including when the
// subscription was gifted to them. Resubscriptions are reported via SubscriptionMessage
// instead.
type Subscribe struct {
	payload
	broadcaster
	user
	data helix.EventSubChannelSubscribeEvent
}

func NewSubscribe(client *twitchapi.Client, raw []byte) (*Subscribe, error) {
	e := &Subscribe{}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	e.user = user{e.data.UserID, e.data.UserLogin, e.data.UserName, client}
	return e, nil
}

func (e *Subscribe) Tier() string { return e.data.Tier }
func (e *Subscribe) IsGift() bool { return e.data.IsGift }

// SubscriptionEnd is sent when a subscription to a channel expires
type SubscriptionEnd struct {
	payload
	broadcaster
	user
	data helix.EventSubChannelSubscribeEvent
}

func NewSubscriptionEnd(client *twitchapi.Client, raw []byte) (*SubscriptionEnd, error) {
	e := &SubscriptionEnd{}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	e.user = user{e.data.UserID, e.data.UserLogin, e.data.UserName, client}
	return e, nil
}

func (e *SubscriptionEnd) Tier() string { return e.data.Tier }
func (e *SubscriptionEnd) IsGift() bool { return e.data.IsGift }

// SubscriptionGift is sent when a user gifts one or more subscriptions in a channel.
// Anonymous gifts carry no user information.
type SubscriptionGift struct {
	payload
	broadcaster
	data   helix.EventSubChannelSubscriptionGiftEvent
	client *twitchapi.Client
}

func NewSubscriptionGift(client *twitchapi.Client, raw []byte) (*SubscriptionGift, error) {
	e := &SubscriptionGift{client: client}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	return e, nil
}

func (e *SubscriptionGift) IsAnonymous() bool       { return e.data.IsAnonymous }
func (e *SubscriptionGift) UserID() string          { return e.data.UserID }
func (e *SubscriptionGift) UserName() string        { return e.data.UserLogin }
func (e *SubscriptionGift) UserDisplayName() string { return e.data.UserName }
func (e *SubscriptionGift) Tier() string            { return e.data.Tier }

// Total is the number of subscriptions gifted in this event
func (e *SubscriptionGift) Total() int { return e.data.Total }

// CumulativeTotal is the number of subscriptions the user has gifted in the channel
// over all time, or 0 if they're anonymous or have chosen not to share it
func (e *SubscriptionGift) CumulativeTotal() int { return e.data.CumulativeTotal }

// User retrieves more information about the gifting user, returning nil for anonymous
// gifts
func (e *SubscriptionGift) User(ctx context.Context) (*twitchapi.User, error) {
	if e.data.IsAnonymous || e.data.UserID == "" {
		return nil, nil
	}
	return getUser(ctx, e.client, e.data.UserID)
}

// SubscriptionMessage is sent when a user shares a resubscription message in chat
type SubscriptionMessage struct {
	payload
	broadcaster
	user
	data helix.EventSubChannelSubscriptionMessageEvent
}

func NewSubscriptionMessage(client *twitchapi.Client, raw []byte) (*SubscriptionMessage, error) {
	e := &SubscriptionMessage{}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	e.user = user{e.data.UserID, e.data.UserLogin, e.data.UserName, client}
	return e, nil
}

func (e *SubscriptionMessage) Tier() string          { return e.data.Tier }
func (e *SubscriptionMessage) Message() string       { return e.data.Message.Text }
func (e *SubscriptionMessage) CumulativeMonths() int { return e.data.CumulativeMonths }

// StreakMonths is the user's current subscription streak, or 0 if they chose not to
// share it
func (e *SubscriptionMessage) StreakMonths() int { return e.data.StreakMonths }

// DurationMonths is the length of the subscription that was purchased, in months
func (e *SubscriptionMessage) DurationMonths() int { return e.data.DurationMonths }
