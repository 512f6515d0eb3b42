package events

import (
	"context"
	"time"

	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

// Follow is sent when a user follows a channel
type Follow struct {
	payload
	broadcaster
	user
	data helix.EventSubChannelFollowEvent
}

func NewFollow(client *twitchapi.Client, raw []byte) (*Follow, error) {
	e := &Follow{}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	e.user = user{e.data.UserID, e.data.UserLogin, e.data.UserName, client}
	return e, nil
}

func (e *Follow) FollowDate() time.Time { return e.data.FollowedAt.Time }

// Cheer is sent when a user cheers bits in a channel. Anonymous cheers carry no user
// information.
type Cheer struct {
	payload
	broadcaster
	data   helix.EventSubChannelCheerEvent
	client *twitchapi.Client
}

func NewCheer(client *twitchapi.Client, raw []byte) (*Cheer, error) {
	e := &Cheer{client: client}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	return e, nil
}

func (e *Cheer) IsAnonymous() bool       { return e.data.IsAnonymous }
func (e *Cheer) UserID() string          { return e.data.UserID }
func (e *Cheer) UserName() string        { return e.data.UserLogin }
func (e *Cheer) UserDisplayName() string { return e.data.UserName }
func (e *Cheer) Message() string         { return e.data.Message }
func (e *Cheer) Bits() int               { return e.data.Bits }

// User retrieves more information about the cheering user, returning nil for anonymous
// cheers
func (e *Cheer) User(ctx context.Context) (*twitchapi.User, error) {
	if e.data.IsAnonymous || e.data.UserID == "" {
		return nil, nil
	}
	return getUser(ctx, e.client, e.data.UserID)
}

// Raid is sent when one broadcaster raids another
type Raid struct {
	payload
	data   helix.EventSubChannelRaidEvent
	client *twitchapi.Client
}

func NewRaid(client *twitchapi.Client, raw []byte) (*Raid, error) {
	e := &Raid{client: client}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	return e, nil
}

func (e *Raid) RaidingBroadcasterID() string          { return e.data.FromBroadcasterUserID }
func (e *Raid) RaidingBroadcasterName() string        { return e.data.FromBroadcasterUserLogin }
func (e *Raid) RaidingBroadcasterDisplayName() string { return e.data.FromBroadcasterUserName }
func (e *Raid) RaidedBroadcasterID() string           { return e.data.ToBroadcasterUserID }
func (e *Raid) RaidedBroadcasterName() string         { return e.data.ToBroadcasterUserLogin }
func (e *Raid) RaidedBroadcasterDisplayName() string  { return e.data.ToBroadcasterUserName }
func (e *Raid) Viewers() int                          { return e.data.Viewers }

func (e *Raid) RaidingBroadcaster(ctx context.Context) (*twitchapi.User, error) {
	return getUser(ctx, e.client, e.data.FromBroadcasterUserID)
}

func (e *Raid) RaidedBroadcaster(ctx context.Context) (*twitchapi.User, error) {
	return getUser(ctx, e.client, e.data.ToBroadcasterUserID)
}
