package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/codingconcepts/env"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/golden-vcr/auth"
	"github.com/golden-vcr/eventsub"
	"github.com/golden-vcr/eventsub/internal/apicall"
	"github.com/golden-vcr/eventsub/internal/callback"
	"github.com/golden-vcr/eventsub/internal/delivery"
	"github.com/golden-vcr/eventsub/internal/eventsocket"
	"github.com/golden-vcr/eventsub/internal/publish"
	"github.com/golden-vcr/eventsub/internal/subscription"
	"github.com/golden-vcr/eventsub/internal/twitchapi"
	"github.com/golden-vcr/eventsub/internal/userauth"
	"github.com/golden-vcr/server-common/entry"
	"github.com/golden-vcr/server-common/rmq"
	"github.com/golden-vcr/server-common/twitch"
)

type Config struct {
	BindAddr   string `env:"BIND_ADDR"`
	ListenPort uint16 `env:"LISTEN_PORT" default:"5004"`
	Origin     string `env:"ORIGIN" default:"https://goldenvcr.com/api/eventsub"`

	// Transport is either "webhook" (Twitch calls POST /callback, which must be
	// reachable at ORIGIN) or "websocket" (we connect out to Twitch)
	Transport      string `env:"EVENTSUB_TRANSPORT" default:"webhook"`
	WebSocketURL   string `env:"EVENTSUB_WEBSOCKET_URL" default:"wss://eventsub.wss.twitch.tv/ws"`
	RestoreTimeout int    `env:"EVENTSUB_RESTORE_TIMEOUT_SECONDS" default:"60"`

	TwitchChannelName   string `env:"TWITCH_CHANNEL_NAME" required:"true"`
	TwitchClientId      string `env:"TWITCH_CLIENT_ID" required:"true"`
	TwitchClientSecret  string `env:"TWITCH_CLIENT_SECRET" required:"true"`
	TwitchWebhookSecret string `env:"TWITCH_WEBHOOK_SECRET"`

	RmqHost     string `env:"RMQ_HOST" required:"true"`
	RmqPort     int    `env:"RMQ_PORT" required:"true"`
	RmqVhost    string `env:"RMQ_VHOST" required:"true"`
	RmqUser     string `env:"RMQ_USER" required:"true"`
	RmqPassword string `env:"RMQ_PASSWORD" required:"true"`

	AuthURL string `env:"AUTH_URL" default:"http://localhost:5002"`
}

func main() {
	app := entry.NewApplication("eventsub")
	ctx := app.Context()
	defer app.Stop()

	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		app.Fail("Failed to load .env file", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		app.Fail("Failed to load config", err)
	}
	if config.Transport != twitchapi.TransportMethodWebhook && config.Transport != twitchapi.TransportMethodWebSocket {
		app.Fail("Failed to load config", fmt.Errorf("unsupported EVENTSUB_TRANSPORT '%s'", config.Transport))
	}
	if config.Transport == twitchapi.TransportMethodWebhook && config.TwitchWebhookSecret == "" {
		app.Fail("Failed to load config", fmt.Errorf("TWITCH_WEBHOOK_SECRET is required for webhook transport"))
	}

	// Initialize an AMQP client, so that every event we receive can be published to the
	// twitch-events exchange for other services to consume
	amqpConn, err := amqp.Dial(rmq.FormatConnectionString(config.RmqHost, config.RmqPort, config.RmqVhost, config.RmqUser, config.RmqPassword))
	if err != nil {
		app.Fail("Failed to connect to AMQP server", err)
	}
	defer amqpConn.Close()
	publisher, err := publish.NewPublisher(amqpConn, publish.DefaultExchange, app.Log())
	if err != nil {
		app.Fail("Failed to initialize AMQP publisher", err)
	}
	defer publisher.Close()

	// Initialize an auth client so we can require broadcaster-level access in order to
	// call the admin-only subscription management endpoints
	authClient, err := auth.NewClient(ctx, config.AuthURL)
	if err != nil {
		app.Fail("Failed to initialize auth client", err)
	}

	// Initialize a Twitch API client with an app access token, then use it to resolve
	// the Twitch User ID of our desired channel
	helixClient, err := twitch.NewClientWithAppToken(ctx, config.TwitchClientId, config.TwitchClientSecret)
	if err != nil {
		app.Fail("Failed to initialize Twitch API client", err)
	}
	channelUserId, err := twitch.ResolveChannelUserId(helixClient, config.TwitchChannelName)
	if err != nil {
		app.Fail(fmt.Sprintf("Failed to resolve Twitch user ID for channel '%s'", config.TwitchChannelName), err)
	}
	app.Log().Info(
		"Initialized broadcaster channel details",
		"channelName", config.TwitchChannelName,
		"channelUserId", channelUserId,
	)

	// Resolve the full set of subscriptions that this service needs to hold
	required, err := eventsub.Subscriptions.Descriptors(eventsub.RequiredSubscriptionConditionParams{
		ChannelUserId: channelUserId,
	})
	if err != nil {
		app.Fail("Failed to resolve required EventSub subscriptions", err)
	}

	// Subscriptions are created and deleted with an app access token, via our own
	// Twitch API client
	invoker := apicall.NewInvoker(&http.Client{Timeout: 30 * time.Second})
	twitchClient := twitchapi.NewClient(invoker, config.TwitchClientId, twitchapi.NewAppTokenSource(invoker, config.TwitchClientId, config.TwitchClientSecret))

	// Export metrics describing the state of our subscriptions
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := subscription.NewPrometheusMetrics(registry, "eventsub")

	// Twitch may deliver any message more than once
	dedup, err := delivery.NewDeduplicator(delivery.DefaultDeduplicatorSize)
	if err != nil {
		app.Fail("Failed to initialize message deduplicator", err)
	}

	// Webhook transports are bound up-front; WebSocket transports are bound once Twitch
	// welcomes us to a session
	var binding *twitchapi.Transport
	if config.Transport == twitchapi.TransportMethodWebhook {
		transport := callback.Transport(config.Origin, config.TwitchWebhookSecret)
		binding = &transport
	}
	manager := subscription.NewManager(subscription.Config{
		API:            twitchClient,
		Client:         twitchClient,
		Transport:      binding,
		Logger:         app.Log(),
		RestoreTimeout: time.Duration(config.RestoreTimeout) * time.Second,
		Metrics:        metrics,
		OnError: func(topicID string, err error) {
			app.Log().Error("EventSub subscription failed", "topicId", topicID, "error", err)
		},
	})

	// Subscriptions are left in place on Twitch when we shut down: a webhook subscription
	// is picked up again on restart, and a WebSocket subscription ends with its session
	defer manager.Close()

	// Start setting up our HTTP handlers, using gorilla/mux for routing
	r := mux.NewRouter()
	r.Path("/metrics").Handler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	if config.Transport == twitchapi.TransportMethodWebhook {
		// Twitch will call POST /callback to verify each new subscription, then in
		// response to events that occur on Twitch
		callbackServer := callback.NewServer(config.TwitchWebhookSecret, manager, dedup)
		callbackServer.RegisterRoutes(r)
	} else {
		client := eventsocket.NewClient(eventsocket.Config{
			Session: manager,
			Dedup:   dedup,
			URL:     config.WebSocketURL,
			Logger:  app.Log(),
		})
		go func() {
			if err := client.Run(ctx); err != nil && ctx.Err() == nil {
				app.Log().Error("EventSub WebSocket client exited", "error", err)
			}
		}()
	}

	// Subscribe to everything we require once we're able to handle traffic: with a
	// webhook transport, Twitch won't consider a subscription enabled until it's
	// verified via our callback endpoint
	handler := publisher.Handler()
	go func() {
		if err := subscription.Ensure(ctx, manager, required, handler); err != nil && ctx.Err() == nil {
			app.Log().Error("Failed to establish required EventSub subscriptions", "error", err)
			return
		}
		app.Log().Info("Established required EventSub subscriptions", "numSubscriptions", len(required))
	}()

	// A client authenticated as the broadcaster can call GET /subscriptions to view the
	// status of required EventSub subscriptions, PATCH to create ones that are missing,
	// and DELETE to remove any that were left behind
	subscriptionServer := subscription.NewServer(manager, twitchClient, channelUserId, required, handler)
	subscriptionServer.RegisterRoutes(authClient, r)

	// Registering EventSub subscriptions requires that our application be connected to
	// the target Twitch channel: the broadcaster can GET /userauth/start to initiate an
	// OAuth code grant flow that will accomplish that, and redirect_uri for that flow
	// will send an authorization code back to GET /userauth/finish
	userauthServer := userauth.NewServer(config.Origin, config.TwitchClientId, eventsub.Subscriptions.GetRequiredUserScopes())
	userauthServer.RegisterRoutes(r)

	// Handle incoming HTTP connections until our top-level context is canceled, at
	// which point shut down cleanly
	entry.RunServer(app, r, config.BindAddr, int(config.ListenPort))
}
