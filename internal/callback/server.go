package callback

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"
	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub/internal/delivery"
	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

const (
	headerMessageId   = "Twitch-Eventsub-Message-Id"
	headerMessageType = "Twitch-Eventsub-Message-Type"
)

type VerifyNotificationFunc func(header http.Header, message string) bool

type Server struct {
	verifyNotification VerifyNotificationFunc
	receiver           delivery.Receiver
	dedup              *delivery.Deduplicator
}

func NewServer(twitchWebhookSecret string, receiver delivery.Receiver, dedup *delivery.Deduplicator) *Server {
	return &Server{
		verifyNotification: func(header http.Header, message string) bool {
			return helix.VerifyEventSubNotification(twitchWebhookSecret, header, message)
		},
		receiver: receiver,
		dedup:    dedup,
	}
}

// Transport returns the webhook transport binding under which Twitch will deliver
// events to this server, given the public URL at which it's reachable
func Transport(origin, twitchWebhookSecret string) twitchapi.Transport {
	return twitchapi.Transport{
		Method:   twitchapi.TransportMethodWebhook,
		Callback: origin + "/callback",
		Secret:   twitchWebhookSecret,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/callback").Methods("POST").HandlerFunc(s.handlePostCallback)
}

func (s *Server) handlePostCallback(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	// Pre-emptively read the request body so we can verify its signature
	body, err := io.ReadAll(req.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}
	defer req.Body.Close()

	// Verify that this event comes from Twitch: abort if phony
	if !s.verifyNotification(req.Header, string(body)) {
		logger.Error("Failed to verify signature")
		http.Error(res, "Signature verification failed", http.StatusBadRequest)
		return
	}

	// Decode the payload from JSON so we can examine the details of the event
	var payload delivery.Payload
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&payload); err != nil {
		logger.Error("Failed to decode request body", "error", err)
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	messageId := req.Header.Get(headerMessageId)
	messageType := req.Header.Get(headerMessageType)
	if messageType == "" && payload.Challenge != "" {
		messageType = delivery.MessageTypeVerification
	}
	topicId := payload.TopicID()
	logger = logger.With(
		"messageId", messageId,
		"messageType", messageType,
		"topicId", topicId,
		"subscriptionId", payload.Subscription.ID,
	)

	// If Twitch is confirming registration of this callback, responding with the
	// challenge value will enable the subscription: we only do so for subscriptions
	// that we've actually requested
	if messageType == delivery.MessageTypeVerification {
		if !s.receiver.OnVerified(topicId, payload.Subscription.ID) {
			logger.Warn("Refusing verification challenge for unrecognized subscription")
			http.Error(res, "Unrecognized subscription", http.StatusNotFound)
			return
		}
		logger.Info("Responding to challenge")
		res.Header().Set("content-type", "text/plain")
		res.Write([]byte(payload.Challenge))
		return
	}

	// Twitch may redeliver messages: acknowledge any we've already handled, but don't
	// handle them again
	if s.dedup != nil && s.dedup.IsDuplicate(messageId) {
		logger.Debug("Ignoring duplicate message")
		res.WriteHeader(http.StatusOK)
		return
	}

	// Hand the message off to the receiver: this should be relatively lightweight,
	// since we're doing it synchronously in the callback handler and waiting to respond
	// to Twitch until finished
	if err := delivery.Deliver(s.receiver, messageType, &payload); err != nil {
		logger.Error("Failed to handle message", "error", err)
		if s.dedup != nil {
			s.dedup.Forget(messageId)
		}
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Debug("Handled message")
	res.WriteHeader(http.StatusOK)
}
