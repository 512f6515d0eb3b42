package events

import (
	"time"

	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

// HypeTrainContribution is a single user's contribution to a Hype Train
type HypeTrainContribution struct {
	UserID    string
	UserLogin string
	UserName  string
	// Type is "bits", "subscription", or "other"
	Type  string
	Total int
}

// HypeTrainBegin is sent when a Hype Train starts in a channel
type HypeTrainBegin struct {
	payload
	broadcaster
	data helix.EventSubHypeTrainBeginEvent
}

func NewHypeTrainBegin(client *twitchapi.Client, raw []byte) (*HypeTrainBegin, error) {
	e := &HypeTrainBegin{}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	return e, nil
}

func (e *HypeTrainBegin) Total() int            { return e.data.Total }
func (e *HypeTrainBegin) Progress() int         { return e.data.Progress }
func (e *HypeTrainBegin) Goal() int             { return e.data.Goal }
func (e *HypeTrainBegin) StartDate() time.Time  { return e.data.StartedAt.Time }
func (e *HypeTrainBegin) ExpiryDate() time.Time { return e.data.ExpiresAt.Time }

func (e *HypeTrainBegin) TopContributions() []HypeTrainContribution {
	contributions := make([]HypeTrainContribution, 0, len(e.data.TopContributions))
	for _, c := range e.data.TopContributions {
		contributions = append(contributions, HypeTrainContribution{
			UserID:    c.UserID,
			UserLogin: c.UserLogin,
			UserName:  c.UserName,
			Type:      c.Type,
			Total:     int(c.Total),
		})
	}
	return contributions
}

// LastContribution is the most recent contribution, if any
func (e *HypeTrainBegin) LastContribution() *HypeTrainContribution {
	c := e.data.LastContribution
	if c.UserID == "" && c.Total == 0 {
		return nil
	}
	return &HypeTrainContribution{
		UserID:    c.UserID,
		UserLogin: c.UserLogin,
		UserName:  c.UserName,
		Type:      c.Type,
		Total:     int(c.Total),
	}
}

// HypeTrainEnd is sent when a Hype Train ends
type HypeTrainEnd struct {
	payload
	broadcaster
	data helix.EventSubHypeTrainEndEvent
}

func NewHypeTrainEnd(client *twitchapi.Client, raw []byte) (*HypeTrainEnd, error) {
	e := &HypeTrainEnd{}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	return e, nil
}

// Level is the level the Hype Train ended on
func (e *HypeTrainEnd) Level() int { return e.data.Level }

// Total is the total number of points contributed to the Hype Train
func (e *HypeTrainEnd) Total() int { return e.data.Total }

func (e *HypeTrainEnd) TopContributions() []HypeTrainContribution {
	contributions := make([]HypeTrainContribution, 0, len(e.data.TopContributions))
	for _, c := range e.data.TopContributions {
		contributions = append(contributions, HypeTrainContribution{
			UserID:    c.UserID,
			UserLogin: c.UserLogin,
			UserName:  c.UserName,
			Type:      c.Type,
			Total:     int(c.Total),
		})
	}
	return contributions
}

func (e *HypeTrainEnd) StartDate() time.Time       { return e.data.StartedAt.Time }
func (e *HypeTrainEnd) EndDate() time.Time         { return e.data.EndedAt.Time }
func (e *HypeTrainEnd) CooldownEndDate() time.Time { return e.data.CooldownEndsAt.Time }
