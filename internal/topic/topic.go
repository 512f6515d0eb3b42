// Package topic defines the closed set of EventSub subscription types that this
// service knows how to create and decode.
//
// A topic is an EventSub subscription type scoped to a particular condition (usually
// a broadcaster). Every topic has a canonical ID derived from its type and condition:
// two topics with the same type and the same condition values always yield the same
// ID, and that ID is what the subscription manager uses to deduplicate registrations
// and to route inbound notifications.
package topic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/apicall"
	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

// Creator is the subset of the Twitch API needed to register a subscription
type Creator interface {
	CreateEventSubSubscription(ctx context.Context, req twitchapi.CreateSubscriptionRequest) (*twitchapi.Subscription, error)
	GetEventSubSubscriptions(ctx context.Context, filter twitchapi.SubscriptionFilter) ([]twitchapi.Subscription, error)
}

// Descriptor is the type-erased form of a Topic, used wherever the concrete event type
// is not known statically
type Descriptor interface {
	// ID is the canonical ID of the topic
	ID() string
	Type() string
	Version() string
	Condition() helix.EventSubCondition

	// RequiredScopes lists the OAuth scopes that the broadcaster must have granted
	// before Twitch will allow this subscription to be created
	RequiredScopes() []string

	// CreateRemote issues a single request to create this subscription, delivered via
	// the given transport. If Twitch reports that an identical subscription already
	// exists, that's not an error: the result describes the existing subscription
	// instead, with an empty Ref if it can't be found.
	CreateRemote(ctx context.Context, api Creator, transport twitchapi.Transport) (CreateResult, error)

	// Decode converts a raw notification payload to the topic's domain event
	Decode(client *twitchapi.Client, raw json.RawMessage) (any, error)
}

// CreateResult identifies the remote subscription that a create request resolved to
type CreateResult struct {
	// Ref is the ID that Twitch assigned to the subscription
	Ref string
	// Status is the subscription's status as reported by Twitch, e.g. "enabled"
	Status string
	// Existing is true if the subscription was created by an earlier request
	Existing bool
}

// Topic is a Descriptor whose notifications decode to events of type E
type Topic[E any] interface {
	Descriptor

	// Transform converts a raw notification payload to a domain event. It never
	// makes any network requests; the client is only retained by the event so that it
	// can look up related resources on demand.
	Transform(client *twitchapi.Client, raw json.RawMessage) (E, error)
}

// definition is the sole implementation of Topic: variants differ only in the data
// they're constructed with
type definition[E any] struct {
	id        string
	typ       string
	version   string
	condition helix.EventSubCondition
	scopes    []string
	transform func(client *twitchapi.Client, raw []byte) (E, error)
}

func define[E any](typ, version string, condition helix.EventSubCondition, scopes []string, transform func(*twitchapi.Client, []byte) (E, error)) *definition[E] {
	return &definition[E]{
		id:        CanonicalID(typ, condition),
		typ:       typ,
		version:   version,
		condition: condition,
		scopes:    scopes,
		transform: transform,
	}
}

func (d *definition[E]) ID() string                         { return d.id }
func (d *definition[E]) Type() string                       { return d.typ }
func (d *definition[E]) Version() string                    { return d.version }
func (d *definition[E]) Condition() helix.EventSubCondition { return d.condition }
func (d *definition[E]) String() string                     { return d.id }

func (d *definition[E]) RequiredScopes() []string {
	return append([]string(nil), d.scopes...)
}

func (d *definition[E]) Transform(client *twitchapi.Client, raw json.RawMessage) (E, error) {
	return d.transform(client, raw)
}

func (d *definition[E]) Decode(client *twitchapi.Client, raw json.RawMessage) (any, error) {
	ev, err := d.transform(client, raw)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (d *definition[E]) CreateRemote(ctx context.Context, api Creator, transport twitchapi.Transport) (CreateResult, error) {
	sub, err := api.CreateEventSubSubscription(ctx, twitchapi.CreateSubscriptionRequest{
		Type:      d.typ,
		Version:   d.version,
		Condition: d.condition,
		Transport: transport,
	})
	if err == nil {
		return CreateResult{Ref: sub.ID, Status: sub.Status}, nil
	}
	if !errors.Is(err, apicall.ErrConflict) {
		return CreateResult{}, fmt.Errorf("failed to create %s subscription: %w", d.typ, err)
	}

	// Twitch has told us that this subscription already exists: that's the outcome we
	// wanted, but we still need its ID in order to be able to delete it later
	existing, err := api.GetEventSubSubscriptions(ctx, twitchapi.SubscriptionFilter{Type: d.typ})
	if err != nil {
		return CreateResult{Existing: true}, nil
	}
	for i := range existing {
		if d.matches(&existing[i], transport) {
			return CreateResult{Ref: existing[i].ID, Status: existing[i].Status, Existing: true}, nil
		}
	}
	return CreateResult{Existing: true}, nil
}

func (d *definition[E]) matches(sub *twitchapi.Subscription, transport twitchapi.Transport) bool {
	return sub.Type == d.typ &&
		sub.Version == d.version &&
		CanonicalID(sub.Type, sub.Condition) == d.id &&
		transport.Matches(sub.Transport)
}

// CanonicalID derives the ID of a topic from its subscription type and condition: the
// type, followed by the value of each condition field that's set, separated by dots.
// Fields are always taken in the same order, so the result doesn't depend on how the
// condition was constructed. Directional fields are prefixed with their direction, so
// that e.g. a raid to a broadcaster and a raid from the same broadcaster yield
// different IDs.
func CanonicalID(typ string, condition helix.EventSubCondition) string {
	var b strings.Builder
	b.WriteString(typ)
	for _, f := range twitchapi.ConditionFields(&condition) {
		if label, ok := directionLabels[f.Key]; ok {
			b.WriteByte('.')
			b.WriteString(label)
		}
		b.WriteByte('.')
		b.WriteString(f.Value)
	}
	return b.String()
}

var directionLabels = map[string]string{
	"from_broadcaster_user_id": "from",
	"to_broadcaster_user_id":   "to",
}
