package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/golden-vcr/auth"
	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"

	"github.com/golden-vcr/eventsub/internal/topic"
)

// Server exposes the status of this service's EventSub subscriptions to the
// broadcaster, along with endpoints to repair or clean them up
type Server struct {
	manager       *Manager
	api           API
	channelUserId string
	required      []topic.Descriptor
	handler       EventHandler
}

func NewServer(manager *Manager, api API, channelUserId string, required []topic.Descriptor, handler EventHandler) *Server {
	return &Server{
		manager:       manager,
		api:           api,
		channelUserId: channelUserId,
		required:      required,
		handler:       handler,
	}
}

func (s *Server) RegisterRoutes(c auth.Client, r *mux.Router) {
	subscriptions := r.Path("/subscriptions").Subrouter()
	subscriptions.Use(func(next http.Handler) http.Handler {
		return auth.RequireAccess(c, auth.RoleBroadcaster, next)
	})
	subscriptions.Methods("GET").HandlerFunc(s.handleGetSubscriptions)
	subscriptions.Methods("PATCH").HandlerFunc(s.handlePatchSubscriptions)
	subscriptions.Methods("DELETE").HandlerFunc(s.handleDeleteSubscriptions)
}

// handleGetSubscriptions (GET /subscriptions) reports the current status of all
// subscriptions required by, held by, and/or registered to the transport of this
// service
func (s *Server) handleGetSubscriptions(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	report, err := s.fetchReport(req.Context())
	if err != nil {
		logger.Error("Failed to resolve EventSub subscription status", "error", err)
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.Header().Set("content-type", "application/json")
	if err := json.NewEncoder(res).Encode(report); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

// handlePatchSubscriptions (PATCH /subscriptions) subscribes to every required topic
// that the manager doesn't currently hold
func (s *Server) handlePatchSubscriptions(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	if _, ok := s.manager.Binding(); !ok {
		http.Error(res, "no EventSub transport is currently available", http.StatusServiceUnavailable)
		return
	}

	if err := Ensure(req.Context(), s.manager, s.required, s.handler); err != nil {
		logger.Error("Failed to create EventSub subscriptions", "error", err)
		http.Error(res, fmt.Sprintf("Failed to create EventSub subscriptions: %v", err), http.StatusInternalServerError)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

// handleDeleteSubscriptions (DELETE /subscriptions) deletes all EventSub subscriptions
// registered to this service's transport that the manager doesn't hold, i.e. those left
// behind by previous runs. A subscription counts as held if the manager has either its
// ID or its topic: an adopted subscription's ID isn't always known.
func (s *Server) handleDeleteSubscriptions(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	binding, ok := s.manager.Binding()
	if !ok {
		http.Error(res, "no EventSub transport is currently available", http.StatusServiceUnavailable)
		return
	}

	remote, err := getBoundSubscriptions(req.Context(), s.api, s.channelUserId, binding)
	if err != nil {
		logger.Error("Failed to get EventSub subscriptions", "error", err)
		http.Error(res, fmt.Sprintf("failed to get EventSub subscriptions: %v", err), http.StatusInternalServerError)
		return
	}

	held := make(map[string]struct{})
	for _, e := range s.manager.Snapshot() {
		held[e.ID] = struct{}{}
	}

	var errs []error
	for _, subscription := range remote {
		topicID := topic.CanonicalID(subscription.Type, subscription.Condition)
		if _, ok := held[topicID]; ok || s.manager.Owns(subscription.ID) {
			continue
		}
		if err := s.manager.deleteRemote(req.Context(), topicID, subscription.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Info("Deleted orphaned EventSub subscription",
			"subscriptionId", subscription.ID,
			"subscriptionType", subscription.Type,
			"subscriptionVersion", subscription.Version,
			"subscriptionCondition", subscription.Condition,
		)
	}
	if err := errors.Join(errs...); err != nil {
		http.Error(res, fmt.Sprintf("Failed to delete EventSub subscriptions: %v", err), http.StatusInternalServerError)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

// fetchReport gets the current state of subscriptions registered to our transport from
// the Twitch API, then reconciles it against the manager's state and the set of
// required subscriptions
func (s *Server) fetchReport(ctx context.Context) (*Report, error) {
	snapshot := s.manager.Snapshot()

	binding, ok := s.manager.Binding()
	if !ok {
		report := reconcileSubscriptionStatus(snapshot, nil, s.required)
		report.Ok = false
		return report, nil
	}

	remote, err := getBoundSubscriptions(ctx, s.api, s.channelUserId, binding)
	if err != nil {
		return nil, fmt.Errorf("failed to get EventSub subscriptions: %w", err)
	}
	report := reconcileSubscriptionStatus(snapshot, remote, s.required)
	report.Transport = binding.Key()
	return report, nil
}
