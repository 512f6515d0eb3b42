package subscription

import (
	"context"

	"github.com/golden-vcr/eventsub/internal/topic"
	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

// getBoundSubscriptions queries the Twitch API to find all EventSub subscriptions that
// are registered with the given user ID and delivered via the given transport
func getBoundSubscriptions(ctx context.Context, api API, channelUserId string, binding twitchapi.Transport) ([]twitchapi.Subscription, error) {
	all, err := api.GetEventSubSubscriptions(ctx, twitchapi.SubscriptionFilter{UserID: channelUserId})
	if err != nil {
		return nil, err
	}

	// Ignore any subscriptions that don't hit our transport
	subscriptions := make([]twitchapi.Subscription, 0, len(all))
	for i := range all {
		if binding.Matches(all[i].Transport) {
			subscriptions = append(subscriptions, all[i])
		}
	}
	return subscriptions, nil
}

// reconcileSubscriptionStatus compares the subscriptions held by the manager, along
// with any others registered to our transport on Twitch, against the set of required
// subscriptions in order to determine the status of each one
func reconcileSubscriptionStatus(snapshot []EntrySnapshot, remote []twitchapi.Subscription, required []topic.Descriptor) *Report {
	entries := make([]ReportEntry, 0, len(required)+len(snapshot))

	managed := make(map[string]EntrySnapshot, len(snapshot))
	for _, s := range snapshot {
		managed[s.ID] = s
	}

	// Remote subscriptions that the manager already accounts for aren't listed twice
	unmanaged := make([]twitchapi.Subscription, 0, len(remote))
	for _, r := range remote {
		if r.ID != "" && !holdsRef(snapshot, r.ID) {
			unmanaged = append(unmanaged, r)
		}
	}

	// First resolve the status of each required subscription: preferably from the
	// manager, otherwise from a matching subscription that exists on Twitch
	for _, d := range required {
		cond := d.Condition()
		e := ReportEntry{
			Required:  true,
			Type:      d.Type(),
			Version:   d.Version(),
			Condition: twitchapi.FormatCondition(&cond),
			Status:    reportStatusMissing,
		}
		if s, ok := managed[d.ID()]; ok {
			e.Managed = true
			e.Status = managedStatus(s)
			e.subscriptionId = s.SubscriptionID
			delete(managed, d.ID())
		} else {
			for i := range unmanaged {
				if unmanaged[i].Type != d.Type() || unmanaged[i].Version != d.Version() {
					continue
				}
				if topic.CanonicalID(unmanaged[i].Type, unmanaged[i].Condition) != d.ID() {
					continue
				}
				e.Status = unmanaged[i].Status
				e.subscriptionId = unmanaged[i].ID
				unmanaged = append(unmanaged[:i], unmanaged[i+1:]...)
				break
			}
		}
		entries = append(entries, e)
	}

	// Then list everything else the manager holds, in ID order
	for _, s := range snapshot {
		if _, ok := managed[s.ID]; !ok {
			continue
		}
		cond := s.Condition
		entries = append(entries, ReportEntry{
			Managed:        true,
			Type:           s.Type,
			Version:        s.Version,
			Condition:      twitchapi.FormatCondition(&cond),
			Status:         managedStatus(s),
			subscriptionId: s.SubscriptionID,
		})
	}

	// Finally, list any other subscriptions that are registered to our transport but
	// which nothing in this process is listening to
	for _, r := range unmanaged {
		cond := r.Condition
		entries = append(entries, ReportEntry{
			Type:           r.Type,
			Version:        r.Version,
			Condition:      twitchapi.FormatCondition(&cond),
			Status:         r.Status,
			subscriptionId: r.ID,
		})
	}

	// For full functionality, every required subscription must be active and managed
	ok := true
	for _, e := range entries {
		if e.Required && (!e.Managed || e.Status != StatusActive.String()) {
			ok = false
			break
		}
	}

	return &Report{
		Ok:            ok,
		Subscriptions: entries,
	}
}

func managedStatus(s EntrySnapshot) string {
	if s.Stale && s.Status != StatusStopped {
		return reportStatusPaused
	}
	return s.Status.String()
}

func holdsRef(snapshot []EntrySnapshot, ref string) bool {
	for _, s := range snapshot {
		if s.SubscriptionID == ref {
			return true
		}
	}
	return false
}
