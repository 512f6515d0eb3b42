// Package subscription manages the lifecycle of EventSub subscriptions.
//
// A Manager owns a registry of subscriptions keyed by canonical topic ID. Subscribing
// to a topic that's already registered attaches another handler to the existing
// subscription instead of creating a duplicate one on Twitch. Each subscription moves
// from pending to active once Twitch has acknowledged it (and, for webhook transports,
// once the callback verification handshake completes), and from there to stopped when
// its last handle is unsubscribed, when Twitch revokes it, or when it fails.
//
// Transports report inbound traffic to the Manager via OnVerified, OnNotification and
// OnRevoked, and report the state of their connection via OnTransportLost and
// OnTransportRestored. When a transport is restored with a new binding, every
// subscription that was bound to the old one is requested again.
package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"github.com/golden-vcr/eventsub/internal/apicall"
	"github.com/golden-vcr/eventsub/internal/topic"
	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

const (
	// DefaultVerificationTimeout is how long a created subscription may remain
	// unverified before it's abandoned
	DefaultVerificationTimeout = 10 * time.Minute

	// DefaultRestoreTimeout is how long subscriptions are kept after their transport is
	// lost, waiting for it to be restored
	DefaultRestoreTimeout = time.Minute

	// DefaultCreateTimeout bounds a single create request, which is shared by every
	// caller waiting on the subscription and so doesn't honor any one caller's context
	DefaultCreateTimeout = 30 * time.Second

	// cleanupTimeout bounds delete requests that are issued in the background
	cleanupTimeout = 30 * time.Second
)

// Config supplies the dependencies and policy for a Manager
type Config struct {
	// API is used to create and delete subscriptions
	API API

	// Client is handed to decoded events so that they can look up related resources;
	// it may be nil
	Client *twitchapi.Client

	// Transport is the initial transport binding, if already known: e.g. a webhook
	// callback. If nil, subscriptions are deferred until OnTransportRestored is called.
	Transport *twitchapi.Transport

	Logger              *slog.Logger
	VerificationTimeout time.Duration
	RestoreTimeout      time.Duration
	CreateTimeout       time.Duration
	Metrics             Metrics

	// OnError, if set, is called for failures that occur after Subscribe has returned:
	// revocations, verification timeouts, lost transports, and failed re-subscriptions
	OnError func(topicID string, err error)
}

// Manager drives EventSub subscriptions through their lifecycle and dispatches
// notifications to the handlers attached to them. It's safe for concurrent use.
type Manager struct {
	api                 API
	client              *twitchapi.Client
	logger              *slog.Logger
	metrics             Metrics
	onError             func(string, error)
	verificationTimeout time.Duration
	restoreTimeout      time.Duration
	createTimeout       time.Duration

	mu           sync.Mutex
	entries      map[string]*record
	binding      *twitchapi.Transport
	epoch        uint64
	restoreTimer *time.Timer
	closed       bool
}

// record is the registry entry for a single subscription. All fields other than
// dispatchMu are guarded by Manager.mu.
type record struct {
	desc    topic.Descriptor
	status  Status
	handles []*Handle

	// stale is set while the transport the subscription was bound to is unavailable
	stale      bool
	bindingKey string

	// attempt is incremented each time the subscription is (re-)requested, so that the
	// outcome of a superseded request can be recognized and ignored
	attempt  uint64
	created  bool
	verified bool
	ref      string
	timer    *time.Timer

	// ready is closed when the subscription becomes active
	ready       chan struct{}
	readyClosed bool

	// dispatchMu serializes dispatch so handlers observe notifications in order
	dispatchMu sync.Mutex
}

// NewManager initializes a Manager with the given config, applying defaults for any
// unset policy values
func NewManager(cfg Config) *Manager {
	m := &Manager{
		api:                 cfg.API,
		client:              cfg.Client,
		logger:              cfg.Logger,
		metrics:             cfg.Metrics,
		onError:             cfg.OnError,
		verificationTimeout: cfg.VerificationTimeout,
		restoreTimeout:      cfg.RestoreTimeout,
		createTimeout:       cfg.CreateTimeout,
		entries:             make(map[string]*record),
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.metrics == nil {
		m.metrics = NopMetrics{}
	}
	if m.verificationTimeout <= 0 {
		m.verificationTimeout = DefaultVerificationTimeout
	}
	if m.restoreTimeout <= 0 {
		m.restoreTimeout = DefaultRestoreTimeout
	}
	if m.createTimeout <= 0 {
		m.createTimeout = DefaultCreateTimeout
	}
	if cfg.Transport != nil {
		binding := *cfg.Transport
		m.binding = &binding
	}
	return m
}

// Subscribe registers handler to receive the events of the given topic. It blocks
// until the subscription is active, the subscription fails, or ctx is done. If ctx is
// done first, only this caller's handle is detached: the request to Twitch is shared
// with any other callers subscribing to the same topic, so it runs to completion
// regardless. Handlers are invoked synchronously from the transport that delivered the
// notification, so they should return promptly.
func Subscribe[E any](ctx context.Context, m *Manager, t topic.Topic[E], handler func(E)) (*Handle, error) {
	return m.SubscribeAny(ctx, t, func(ev any) {
		handler(ev.(E))
	})
}

// SubscribeAny is the type-erased form of Subscribe: handler receives the events
// produced by d.Decode
func (m *Manager) SubscribeAny(ctx context.Context, d topic.Descriptor, handler func(any)) (*Handle, error) {
	id := d.ID()
	h := newHandle(id, handler)
	logger := m.logger.With("topicId", id)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}

	// If we already have a subscription for this topic, share it
	if e, ok := m.entries[id]; ok {
		e.handles = append(e.handles, h)
		status := e.status
		ready := e.ready
		m.mu.Unlock()
		logger.Debug("Attached handler to existing subscription", "status", status, "handleId", h.ID())
		if status == StatusActive {
			return h, nil
		}
		return m.await(ctx, h, ready)
	}

	e := &record{
		desc:    d,
		handles: []*Handle{h},
		ready:   make(chan struct{}),
	}
	m.entries[id] = e
	m.transitionLocked(e, StatusPending)
	ready := e.ready

	// If we have nowhere for Twitch to deliver notifications yet, the subscription will
	// be requested once a transport is established
	if m.binding == nil {
		e.stale = true
		m.mu.Unlock()
		logger.Info("Deferring subscription until transport is available")
		return m.await(ctx, h, ready)
	}
	binding := *m.binding
	attempt := m.beginAttemptLocked(e, binding)
	m.mu.Unlock()

	// A failed request stops every attached handle, this one included, so await will
	// report the error
	createCtx, cancel := m.createContext(ctx)
	go func() {
		defer cancel()
		m.create(createCtx, e, attempt, binding)
	}()
	return m.await(ctx, h, ready)
}

// Unsubscribe detaches the handle so that no further events are dispatched to its
// handler. A handler invocation that's already in progress when Unsubscribe is called
// is not waited on, since handlers may unsubscribe themselves. If no other handles
// remain attached to the subscription, it's stopped immediately and then deleted from
// Twitch: a failed delete request is logged and returned, but the subscription remains
// stopped regardless.
func (m *Manager) Unsubscribe(ctx context.Context, h *Handle) error {
	h.detached.Store(true)

	m.mu.Lock()
	e := m.entries[h.topicID]
	if e == nil || !e.detach(h) {
		m.mu.Unlock()
		h.stop(ErrStopped)
		return nil
	}
	if len(e.handles) > 0 {
		m.mu.Unlock()
		h.stop(ErrStopped)
		return nil
	}
	ref := e.ref
	m.stopLocked(e)
	m.mu.Unlock()
	h.stop(ErrStopped)

	m.logger.Info("Stopped subscription", "topicId", h.topicID, "subscriptionId", ref)
	if ref == "" {
		return nil
	}
	return m.deleteRemote(ctx, h.topicID, ref)
}

// OnVerified records that Twitch has completed the verification handshake for a
// subscription, returning false if the subscription is not one we're waiting on
func (m *Manager) OnVerified(topicID, ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entries[topicID]
	if e == nil || e.status != StatusPending || e.stale {
		m.logger.Debug("Ignoring verification for unexpected subscription", "topicId", topicID, "subscriptionId", ref)
		return false
	}
	if ref != "" && e.ref != "" && ref != e.ref {
		m.logger.Debug("Ignoring verification for superseded subscription", "topicId", topicID, "subscriptionId", ref)
		return false
	}
	e.verified = true
	if e.created {
		m.activateLocked(e)
	}
	return true
}

// OnNotification decodes a notification payload and dispatches the resulting event to
// every handler attached to the subscription. Notifications for subscriptions that
// are unknown, not yet active, or paused are dropped.
func (m *Manager) OnNotification(topicID, ref string, payload json.RawMessage) {
	m.mu.Lock()
	e := m.entries[topicID]
	if e == nil || e.status != StatusActive || e.stale || (ref != "" && e.ref != "" && ref != e.ref) {
		topicType := "unknown"
		if e != nil {
			topicType = e.desc.Type()
		}
		m.mu.Unlock()
		m.logger.Debug("Dropping notification", "topicId", topicID, "subscriptionId", ref)
		m.metrics.RecordNotification(topicType, false)
		return
	}
	handles := append([]*Handle(nil), e.handles...)
	m.mu.Unlock()

	e.dispatchMu.Lock()
	defer e.dispatchMu.Unlock()

	ev, err := e.desc.Decode(m.client, payload)
	if err != nil {
		m.logger.Error("Failed to decode notification", "topicId", topicID, "error", err)
		m.metrics.RecordNotification(e.desc.Type(), false)
		m.reportError(topicID, fmt.Errorf("failed to decode notification: %w", err))
		return
	}
	for _, h := range handles {
		h.deliver(ev)
	}
	m.metrics.RecordNotification(e.desc.Type(), true)
}

// OnRevoked stops a subscription that Twitch has revoked
func (m *Manager) OnRevoked(topicID, ref, reason string) {
	m.mu.Lock()
	e := m.entries[topicID]
	if e == nil || (ref != "" && e.ref != "" && ref != e.ref) {
		m.mu.Unlock()
		return
	}
	handles := m.stopLocked(e)
	m.mu.Unlock()

	err := &RevokedError{Reason: reason}
	m.logger.Warn("Subscription revoked", "topicId", topicID, "subscriptionId", ref, "reason", reason)
	stopAll(handles, err)
	m.reportError(topicID, err)
}

// OnTransportLost pauses all subscriptions until OnTransportRestored is called. If the
// transport isn't restored within the restore timeout, every paused subscription is
// stopped with ErrTransportLost.
func (m *Manager) OnTransportLost() {
	m.mu.Lock()
	if m.binding == nil {
		m.mu.Unlock()
		return
	}
	m.binding = nil
	m.epoch++
	epoch := m.epoch
	for _, e := range m.entries {
		e.stale = true
		e.attempt++
		e.stopTimer()
	}
	if m.restoreTimer != nil {
		m.restoreTimer.Stop()
	}
	m.restoreTimer = time.AfterFunc(m.restoreTimeout, func() {
		m.abandonStale(epoch)
	})
	count := len(m.entries)
	m.mu.Unlock()

	m.logger.Warn("Transport lost; pausing subscriptions", "count", count)
}

// OnTransportRestored binds the manager to a new transport, then requests every
// subscription that isn't already bound to it. It returns once all of those requests
// have completed; each one succeeds or fails independently. As with Subscribe, the
// requests are not cancelled when ctx is.
func (m *Manager) OnTransportRestored(ctx context.Context, binding twitchapi.Transport) {
	type job struct {
		e       *record
		attempt uint64
	}

	m.mu.Lock()
	m.binding = &binding
	m.epoch++
	if m.restoreTimer != nil {
		m.restoreTimer.Stop()
		m.restoreTimer = nil
	}
	jobs := make([]job, 0, len(m.entries))
	for _, e := range m.entries {
		if e.stale || e.bindingKey != binding.Key() {
			jobs = append(jobs, job{e: e, attempt: m.beginAttemptLocked(e, binding)})
		}
	}
	m.mu.Unlock()

	m.logger.Info("Transport restored", "transport", binding.Key(), "resubscribing", len(jobs))
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			createCtx, cancel := m.createContext(ctx)
			defer cancel()
			if err := m.create(createCtx, j.e, j.attempt, binding); err != nil {
				m.reportError(j.e.desc.ID(), err)
			}
		}(j)
	}
	wg.Wait()
}

// Binding returns the transport binding that new subscriptions are created with, if
// one is currently available
func (m *Manager) Binding() (twitchapi.Transport, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.binding == nil {
		return twitchapi.Transport{}, false
	}
	return *m.binding, true
}

// Snapshot describes every subscription currently held by the manager, ordered by ID
func (m *Manager) Snapshot() []EntrySnapshot {
	m.mu.Lock()
	snapshots := make([]EntrySnapshot, 0, len(m.entries))
	for id, e := range m.entries {
		snapshots = append(snapshots, EntrySnapshot{
			ID:             id,
			Type:           e.desc.Type(),
			Version:        e.desc.Version(),
			Condition:      e.desc.Condition(),
			Status:         e.status,
			Stale:          e.stale,
			SubscriptionID: e.ref,
			Handles:        len(e.handles),
		})
	}
	m.mu.Unlock()

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ID < snapshots[j].ID
	})
	return snapshots
}

// Owns returns true if the manager holds a subscription with the given Twitch-assigned
// ID
func (m *Manager) Owns(ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ref == ref {
			return true
		}
	}
	return false
}

// Close stops every subscription with ErrManagerClosed, without deleting them from
// Twitch, and causes subsequent calls to Subscribe to fail
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	if m.restoreTimer != nil {
		m.restoreTimer.Stop()
		m.restoreTimer = nil
	}
	var handles []*Handle
	for _, e := range m.entries {
		handles = append(handles, m.stopLocked(e)...)
	}
	m.mu.Unlock()

	stopAll(handles, ErrManagerClosed)
}

// create requests a subscription from Twitch and records the outcome. An error is
// returned only if the request failed, in which case the subscription is stopped.
func (m *Manager) create(ctx context.Context, e *record, attempt uint64, binding twitchapi.Transport) error {
	id := e.desc.ID()
	result, err := e.desc.CreateRemote(ctx, m.api, binding)
	m.metrics.RecordRemoteCall("create", err)
	ref := result.Ref

	m.mu.Lock()
	if !m.isCurrentLocked(e, attempt) {
		stopped := e.status == StatusStopped
		m.mu.Unlock()

		// Nobody wants this subscription any longer, so don't leave it behind on Twitch
		if err == nil && ref != "" && stopped {
			cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
			defer cancel()
			m.deleteRemote(cleanupCtx, id, ref)
		}
		return nil
	}
	if err != nil {
		handles := m.stopLocked(e)
		m.mu.Unlock()
		m.logger.Error("Failed to create subscription", "topicId", id, "transport", binding.Key(), "error", err)
		stopAll(handles, err)
		return err
	}

	e.ref = ref
	e.created = true
	if e.verified || !requiresVerification(binding) || adoptedEnabled(result) {
		m.activateLocked(e)
	} else {
		e.timer = time.AfterFunc(m.verificationTimeout, func() {
			m.expire(e, attempt)
		})
	}
	m.mu.Unlock()

	m.logger.Info("Created subscription", "topicId", id, "subscriptionId", ref, "transport", binding.Key(), "existing", result.Existing)
	return nil
}

// adoptedEnabled returns true if a create request resolved to a subscription that
// already existed on Twitch and needs no further verification: Twitch won't repeat a
// handshake that's already completed. An existing subscription that couldn't be found
// is assumed to be enabled, since Twitch only reports a conflict for subscriptions that
// are enabled or awaiting verification.
func adoptedEnabled(result topic.CreateResult) bool {
	if !result.Existing {
		return false
	}
	return result.Ref == "" || result.Status == twitchapi.SubscriptionStatusEnabled
}

// createContext derives the context for a create request from the context of the
// caller that triggered it
func (m *Manager) createContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), m.createTimeout)
}

// expire stops a subscription whose verification handshake never arrived
func (m *Manager) expire(e *record, attempt uint64) {
	id := e.desc.ID()

	m.mu.Lock()
	if !m.isCurrentLocked(e, attempt) {
		m.mu.Unlock()
		return
	}
	ref := e.ref
	handles := m.stopLocked(e)
	m.mu.Unlock()

	m.logger.Warn("Subscription was not verified in time", "topicId", id, "subscriptionId", ref)
	stopAll(handles, ErrVerificationTimeout)
	m.reportError(id, ErrVerificationTimeout)

	if ref != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		m.deleteRemote(ctx, id, ref)
	}
}

// abandonStale stops every subscription that's still waiting on a lost transport, as
// long as the transport hasn't changed state since the given epoch
func (m *Manager) abandonStale(epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch || m.binding != nil {
		m.mu.Unlock()
		return
	}
	abandoned := make(map[string][]*Handle)
	for id, e := range m.entries {
		if e.stale {
			abandoned[id] = m.stopLocked(e)
		}
	}
	m.mu.Unlock()

	m.logger.Error("Transport was not restored in time; stopping subscriptions", "count", len(abandoned))
	for id, handles := range abandoned {
		stopAll(handles, ErrTransportLost)
		m.reportError(id, ErrTransportLost)
	}
}

func (m *Manager) await(ctx context.Context, h *Handle, ready <-chan struct{}) (*Handle, error) {
	select {
	case <-ready:
		if err := h.Err(); err != nil {
			return nil, err
		}
		return h, nil
	case <-h.done:
		return nil, h.Err()
	case <-ctx.Done():
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()
		m.Unsubscribe(cleanupCtx, h)
		return nil, ctx.Err()
	}
}

func (m *Manager) deleteRemote(ctx context.Context, topicID, ref string) error {
	err := m.api.DeleteEventSubSubscription(ctx, ref)
	m.metrics.RecordRemoteCall("delete", err)
	if err != nil && !errors.Is(err, apicall.ErrNotFound) {
		m.logger.Error("Failed to delete subscription", "topicId", topicID, "subscriptionId", ref, "error", err)
		return fmt.Errorf("failed to delete subscription %s: %w", ref, err)
	}
	return nil
}

func (m *Manager) reportError(topicID string, err error) {
	if m.onError != nil {
		m.onError(topicID, err)
	}
}

func (m *Manager) isCurrentLocked(e *record, attempt uint64) bool {
	return m.entries[e.desc.ID()] == e && e.attempt == attempt && e.status == StatusPending
}

// beginAttemptLocked resets the entry's handshake state in preparation for requesting
// the subscription on the given transport
func (m *Manager) beginAttemptLocked(e *record, binding twitchapi.Transport) uint64 {
	e.stopTimer()
	e.attempt++
	e.stale = false
	e.created = false
	e.verified = false
	e.ref = ""
	e.bindingKey = binding.Key()
	if e.readyClosed {
		e.ready = make(chan struct{})
		e.readyClosed = false
	}
	if e.status != StatusPending {
		m.transitionLocked(e, StatusPending)
	}
	return e.attempt
}

func (m *Manager) activateLocked(e *record) {
	e.stopTimer()
	m.transitionLocked(e, StatusActive)
	if !e.readyClosed {
		close(e.ready)
		e.readyClosed = true
	}
}

// stopLocked removes the entry from the registry and returns the handles that were
// attached to it, which the caller must stop once the lock is released
func (m *Manager) stopLocked(e *record) []*Handle {
	e.stopTimer()
	if m.entries[e.desc.ID()] == e {
		delete(m.entries, e.desc.ID())
	}
	if e.status != StatusStopped {
		m.transitionLocked(e, StatusStopped)
	}
	handles := e.handles
	e.handles = nil
	for _, h := range handles {
		h.detached.Store(true)
	}
	return handles
}

func (m *Manager) transitionLocked(e *record, to Status) {
	from := e.status
	e.status = to
	m.metrics.RecordTransition(e.desc.Type(), from, to)
}

func (e *record) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// detach removes the handle from the entry, returning false if it was not attached
func (e *record) detach(h *Handle) bool {
	for i := range e.handles {
		if e.handles[i] == h {
			e.handles = append(e.handles[:i], e.handles[i+1:]...)
			return true
		}
	}
	return false
}

func stopAll(handles []*Handle, err error) {
	for _, h := range handles {
		h.stop(err)
	}
}
