package events

import (
	"fmt"
	"time"

	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

const (
	PredictionStatusResolved = "resolved"
	PredictionStatusCanceled = "canceled"
)

// PredictionOutcome is one of the possible outcomes of a prediction
type PredictionOutcome struct {
	id              string
	title           string
	color           string
	users           int
	channelPoints   int
	topPredictorIDs []string
}

func (o *PredictionOutcome) ID() string         { return o.id }
func (o *PredictionOutcome) Title() string      { return o.title }
func (o *PredictionOutcome) Users() int         { return o.users }
func (o *PredictionOutcome) ChannelPoints() int { return o.channelPoints }

// Color is either "blue" or "pink"
func (o *PredictionOutcome) Color() string {
	return o.color
}

// TopPredictorIDs lists the user IDs of up to 10 users who spent the most points on
// this outcome
func (o *PredictionOutcome) TopPredictorIDs() []string {
	return append([]string{}, o.topPredictorIDs...)
}

// PredictionEnd is sent when a prediction is resolved or canceled
type PredictionEnd struct {
	payload
	broadcaster
	data helix.EventSubChannelPredictionEndEvent
}

func NewPredictionEnd(client *twitchapi.Client, raw []byte) (*PredictionEnd, error) {
	e := &PredictionEnd{}
	p, err := decode(raw, &e.data)
	if err != nil {
		return nil, err
	}
	e.payload = p
	e.broadcaster = broadcaster{e.data.BroadcasterUserID, e.data.BroadcasterUserLogin, e.data.BroadcasterUserName, client}
	return e, nil
}

func (e *PredictionEnd) ID() string           { return e.data.ID }
func (e *PredictionEnd) Title() string        { return e.data.Title }
func (e *PredictionEnd) StartDate() time.Time { return e.data.StartedAt.Time }
func (e *PredictionEnd) EndDate() time.Time   { return e.data.EndedAt.Time }

// Status is either "resolved" or "canceled"
func (e *PredictionEnd) Status() string {
	return e.data.Status
}

func (e *PredictionEnd) Outcomes() []*PredictionOutcome {
	outcomes := make([]*PredictionOutcome, 0, len(e.data.Outcomes))
	for _, o := range e.data.Outcomes {
		outcome := &PredictionOutcome{
			id:            o.ID,
			title:         o.Title,
			color:         o.Color,
			users:         o.Users,
			channelPoints: o.ChannelPoints,
		}
		for _, p := range o.TopPredictors {
			outcome.topPredictorIDs = append(outcome.topPredictorIDs, p.UserID)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// WinningOutcomeID is the ID of the winning outcome, or empty if the prediction was
// canceled
func (e *PredictionEnd) WinningOutcomeID() string {
	return e.data.WinningOutcomeID
}

// WinningOutcome returns the winning outcome, or nil if the prediction was canceled.
// It's an error for the payload to name a winning outcome that isn't among its
// outcomes.
func (e *PredictionEnd) WinningOutcome() (*PredictionOutcome, error) {
	if e.data.WinningOutcomeID == "" {
		return nil, nil
	}
	for _, outcome := range e.Outcomes() {
		if outcome.id == e.data.WinningOutcomeID {
			return outcome, nil
		}
	}
	return nil, fmt.Errorf("winning outcome %s not found in prediction %s", e.data.WinningOutcomeID, e.data.ID)
}
