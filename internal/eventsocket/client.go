package eventsocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"github.com/golden-vcr/eventsub/internal/delivery"
)

const (
	// DefaultURL is the address of Twitch's EventSub WebSocket server
	DefaultURL = "wss://eventsub.wss.twitch.tv/ws"

	defaultKeepaliveSlack    = 5 * time.Second
	defaultWelcomeTimeout    = 10 * time.Second
	defaultReconnectInterval = time.Second
	maxReconnectInterval     = 30 * time.Second
	handshakeTimeout         = 10 * time.Second
)

// Config supplies the dependencies and policy for a Client
type Config struct {
	// Session receives every message delivered over the connection, along with the
	// state of the connection itself
	Session delivery.Session

	// Dedup, if set, is used to discard messages that Twitch delivers more than once
	Dedup *delivery.Deduplicator

	URL               string
	Logger            *slog.Logger
	KeepaliveSlack    time.Duration
	WelcomeTimeout    time.Duration
	ReconnectInterval time.Duration
}

// Client maintains an EventSub WebSocket session
type Client struct {
	session           delivery.Session
	dedup             *delivery.Deduplicator
	url               string
	logger            *slog.Logger
	keepaliveSlack    time.Duration
	welcomeTimeout    time.Duration
	reconnectInterval time.Duration
	dialer            websocket.Dialer

	// bound is the ID of the session last reported to the delivery.Session
	bound string
	wg    sync.WaitGroup
}

// connection is a single WebSocket connection, which is closed if the context it was
// opened with is canceled
type connection struct {
	*websocket.Conn
	stop func() bool
}

func (c *connection) close() {
	c.stop()
	c.Conn.Close()
}

func NewClient(cfg Config) *Client {
	c := &Client{
		session:           cfg.Session,
		dedup:             cfg.Dedup,
		url:               cfg.URL,
		logger:            cfg.Logger,
		keepaliveSlack:    cfg.KeepaliveSlack,
		welcomeTimeout:    cfg.WelcomeTimeout,
		reconnectInterval: cfg.ReconnectInterval,
		dialer:            websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.keepaliveSlack <= 0 {
		c.keepaliveSlack = defaultKeepaliveSlack
	}
	if c.welcomeTimeout <= 0 {
		c.welcomeTimeout = defaultWelcomeTimeout
	}
	if c.reconnectInterval <= 0 {
		c.reconnectInterval = defaultReconnectInterval
	}
	return c
}

// Run connects to Twitch and handles incoming messages until ctx is canceled,
// reconnecting whenever the connection is lost. It always returns a non-nil error.
func (c *Client) Run(ctx context.Context) error {
	defer c.wg.Wait()

	interval := c.reconnectInterval
	for {
		conn, sess, err := c.handshake(ctx, c.url)
		if err == nil {
			interval = c.reconnectInterval
			c.bind(ctx, sess)
			err = c.serve(ctx, conn, sess)
			conn.close()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// If we had a session, the subscriptions bound to it are gone
		if c.bound != "" {
			c.logger.Warn("EventSub WebSocket session lost", "sessionId", c.bound, "error", err)
			c.bound = ""
			c.session.OnTransportLost()
		} else {
			c.logger.Warn("Failed to establish EventSub WebSocket session", "error", err, "nextRetry", interval)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		interval *= 2
		if interval > maxReconnectInterval {
			interval = maxReconnectInterval
		}
	}
}

// handshake opens a connection and waits for Twitch to welcome us to a session
func (c *Client) handshake(ctx context.Context, url string) (*connection, *session, error) {
	ws, _, err := c.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect WebSocket: %w", err)
	}
	conn := &connection{
		Conn: ws,
		stop: context.AfterFunc(ctx, func() { ws.Close() }),
	}

	conn.SetReadDeadline(time.Now().Add(c.welcomeTimeout))
	var msg message
	if err := conn.ReadJSON(&msg); err != nil {
		conn.close()
		return nil, nil, fmt.Errorf("failed to read welcome message: %w", err)
	}
	if msg.Metadata.MessageType != delivery.MessageTypeWelcome {
		conn.close()
		return nil, nil, fmt.Errorf("expected %s message; got %s", delivery.MessageTypeWelcome, msg.Metadata.MessageType)
	}
	var payload sessionPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		conn.close()
		return nil, nil, fmt.Errorf("failed to decode welcome message: %w", err)
	}
	if payload.Session.ID == "" {
		conn.close()
		return nil, nil, fmt.Errorf("welcome message has no session ID")
	}

	c.logger.Info("Connected to EventSub WebSocket session", "sessionId", payload.Session.ID, "keepalive", payload.Session.keepalive())
	return conn, &payload.Session, nil
}

// bind reports a newly-welcomed session, so that subscriptions can be created on it,
// unless it's the session we're already bound to
func (c *Client) bind(ctx context.Context, sess *session) {
	if sess.ID == c.bound {
		return
	}
	c.bound = sess.ID
	binding := sess.binding()

	// Continue reading while subscriptions are being created, so that keepalives and
	// notifications for subscriptions that are already active aren't held up
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.session.OnTransportRestored(ctx, binding)
	}()
}

// serve reads messages from the connection until it fails, migrating to a new
// connection if Twitch requests it. The connection that's current when serve returns
// is closed.
func (c *Client) serve(ctx context.Context, conn *connection, sess *session) error {
	for {
		conn.SetReadDeadline(time.Now().Add(sess.keepalive() + c.keepaliveSlack))
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}
		if c.dedup != nil && c.dedup.IsDuplicate(msg.Metadata.MessageID) {
			c.logger.Debug("Ignoring duplicate message", "messageId", msg.Metadata.MessageID)
			continue
		}

		switch msg.Metadata.MessageType {
		case delivery.MessageTypeKeepalive:
		case delivery.MessageTypeNotification, delivery.MessageTypeRevocation:
			var payload delivery.Payload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				c.logger.Error("Failed to decode message payload", "messageId", msg.Metadata.MessageID, "error", err)
				continue
			}
			if err := delivery.Deliver(c.session, msg.Metadata.MessageType, &payload); err != nil {
				c.logger.Error("Failed to handle message", "messageId", msg.Metadata.MessageID, "error", err)
			}
		case delivery.MessageTypeReconnect:
			var payload sessionPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				return fmt.Errorf("failed to decode reconnect message: %w", err)
			}
			if payload.Session.ReconnectURL == "" {
				return fmt.Errorf("reconnect message has no reconnect URL")
			}

			// Twitch keeps delivering to the old connection until the new one is
			// welcomed, so only then do we switch over
			next, nextSess, err := c.handshake(ctx, payload.Session.ReconnectURL)
			if err != nil {
				return fmt.Errorf("failed to reconnect: %w", err)
			}
			conn.close()
			*conn = *next
			sess = nextSess
			c.logger.Info("Migrated EventSub WebSocket session", "sessionId", sess.ID)
			c.bind(ctx, sess)
		default:
			c.logger.Debug("Ignoring unsupported message", "messageType", msg.Metadata.MessageType)
		}
	}
}
