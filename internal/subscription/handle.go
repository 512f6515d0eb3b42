package subscription

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle represents a single caller's interest in a subscription. Several handles may
// share the same underlying subscription; the subscription is only torn down once the
// last of them is unsubscribed.
type Handle struct {
	id      uuid.UUID
	topicID string
	handler func(any)

	detached atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
	err      error
}

func newHandle(topicID string, handler func(any)) *Handle {
	return &Handle{
		id:      uuid.New(),
		topicID: topicID,
		handler: handler,
		done:    make(chan struct{}),
	}
}

// ID uniquely identifies this handle
func (h *Handle) ID() string {
	return h.id.String()
}

// TopicID is the canonical ID of the subscription that this handle is attached to
func (h *Handle) TopicID() string {
	return h.topicID
}

// Done returns a channel that's closed once the handle will receive no further events
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err reports why the handle stopped receiving events: ErrStopped after an explicit
// unsubscribe, or the failure that stopped the underlying subscription. It returns
// nil while the handle is still live.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

func (h *Handle) deliver(ev any) {
	if h.detached.Load() {
		return
	}
	h.handler(ev)
}

// stop detaches the handle and records the reason; only the first call has any effect
func (h *Handle) stop(err error) {
	h.detached.Store(true)
	h.stopOnce.Do(func() {
		h.err = err
		close(h.done)
	})
}
