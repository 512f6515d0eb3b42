package events

import (
	"time"

	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

// StreamOnline is sent when a broadcaster starts a stream
type StreamOnline struct {
	payload
	broadcaster
	data helix.EventSubStreamOnlineEvent
}

func NewStreamOnline(client *twitchapi.Client, raw []byte) (*StreamOnline, error) {
	e := &StreamOnline{}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	return e, nil
}

// StreamID is the ID of the stream that went online
func (e *StreamOnline) StreamID() string { return e.data.ID }

// StreamType is the type of stream, e.g. "live"
func (e *StreamOnline) StreamType() string { return e.data.Type }

func (e *StreamOnline) StartDate() time.Time { return e.data.StartedAt.Time }

// StreamOffline is sent when a broadcaster ends a stream
type StreamOffline struct {
	payload
	broadcaster
	data helix.EventSubStreamOfflineEvent
}

func NewStreamOffline(client *twitchapi.Client, raw []byte) (*StreamOffline, error) {
	e := &StreamOffline{}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	return e, nil
}

// ChannelUpdate is sent when a broadcaster changes their channel's title, category or
// other stream metadata
type ChannelUpdate struct {
	payload
	broadcaster
	data helix.EventSubChannelUpdateEvent
}

func NewChannelUpdate(client *twitchapi.Client, raw []byte) (*ChannelUpdate, error) {
	e := &ChannelUpdate{}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	return e, nil
}

func (e *ChannelUpdate) Title() string        { return e.data.Title }
func (e *ChannelUpdate) Language() string     { return e.data.Language }
func (e *ChannelUpdate) CategoryID() string   { return e.data.CategoryID }
func (e *ChannelUpdate) CategoryName() string { return e.data.CategoryName }
