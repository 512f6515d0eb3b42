package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/golden-vcr/eventsub/internal/topic"
)

// EventHandler receives every event decoded for a topic that was subscribed via Ensure
type EventHandler func(d topic.Descriptor, ev any)

// Ensure subscribes to each of the given topics that the manager doesn't already hold,
// routing the resulting events to handler. Subscriptions are requested concurrently;
// each one that fails contributes to the returned error without affecting the others.
//
// The subscriptions belong to the manager, not to the caller: if ctx is done before
// they've all settled, Ensure returns ctx's error and the remaining subscriptions carry
// on in the background, with any later failures reported via Config.OnError.
func Ensure(ctx context.Context, m *Manager, required []topic.Descriptor, handler EventHandler) error {
	held := make(map[string]struct{})
	for _, s := range m.Snapshot() {
		held[s.ID] = struct{}{}
	}

	subscribeCtx := context.WithoutCancel(ctx)
	results := make(chan error, len(required))
	pending := 0
	for _, d := range required {
		if _, ok := held[d.ID()]; ok {
			continue
		}
		held[d.ID()] = struct{}{}

		pending++
		go func(d topic.Descriptor) {
			_, err := m.SubscribeAny(subscribeCtx, d, func(ev any) {
				handler(d, ev)
			})
			if err != nil {
				err = fmt.Errorf("failed to subscribe to %s: %w", d.ID(), err)
				if ctx.Err() != nil {
					m.reportError(d.ID(), err)
				}
			}
			results <- err
		}(d)
	}

	var errs []error
	for ; pending > 0; pending-- {
		select {
		case err := <-results:
			if err != nil {
				errs = append(errs, err)
			}
		case <-ctx.Done():
			return errors.Join(append(errs, ctx.Err())...)
		}
	}
	return errors.Join(errs...)
}
