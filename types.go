package eventsub

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/topic"
)

// RequiredSubscription describes an EventSub subscription that our app depends on. Each
// field of TemplatedCondition may reference RequiredSubscriptionConditionParams values,
// e.g. "{{.ChannelUserId}}".
type RequiredSubscription struct {
	Type               string
	Version            string
	TemplatedCondition helix.EventSubCondition
	RequiredScopes     []string
}

type RequiredSubscriptions []RequiredSubscription

// RequiredSubscriptionConditionParams holds the values that are substituted into each
// templated condition
type RequiredSubscriptionConditionParams struct {
	ChannelUserId string
}

// Format resolves all template references in the given condition, returning a copy
func (p *RequiredSubscriptionConditionParams) Format(c *helix.EventSubCondition) (*helix.EventSubCondition, error) {
	result := *c
	fields := []*string{
		&result.BroadcasterUserID,
		&result.FromBroadcasterUserID,
		&result.ToBroadcasterUserID,
		&result.ModeratorUserID,
		&result.RewardID,
		&result.ClientID,
		&result.ExtensionClientID,
		&result.UserID,
	}
	for _, field := range fields {
		if *field == "" {
			continue
		}
		tmpl, err := template.New("condition").Option("missingkey=error").Parse(*field)
		if err != nil {
			return nil, fmt.Errorf("failed to parse condition template '%s': %w", *field, err)
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, p); err != nil {
			return nil, fmt.Errorf("failed to execute condition template '%s': %w", *field, err)
		}
		*field = b.String()
	}
	return &result, nil
}

// GetRequiredUserScopes returns the set of all OAuth scopes that the broadcaster must
// grant in order for all required subscriptions to be created
func (r RequiredSubscriptions) GetRequiredUserScopes() []string {
	scopes := make([]string, 0)
	seen := make(map[string]struct{})
	for _, required := range r {
		for _, scope := range required.RequiredScopes {
			if _, ok := seen[scope]; ok {
				continue
			}
			seen[scope] = struct{}{}
			scopes = append(scopes, scope)
		}
	}
	return scopes
}

// Descriptors resolves each required subscription to the topic it describes, using
// the given params to format its condition
func (r RequiredSubscriptions) Descriptors(params RequiredSubscriptionConditionParams) ([]topic.Descriptor, error) {
	descriptors := make([]topic.Descriptor, 0, len(r))
	for _, required := range r {
		cond, err := params.Format(&required.TemplatedCondition)
		if err != nil {
			return nil, fmt.Errorf("failed to format templated condition with params %+v: %w", params, err)
		}
		d, err := topic.Parse(required.Type, required.Version, *cond)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}
