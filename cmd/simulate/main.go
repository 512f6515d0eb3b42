package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/codingconcepts/env"
	"github.com/golden-vcr/server-common/twitch"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/nicklaw5/helix/v2"

	"github.com/golden-vcr/eventsub"
	"github.com/golden-vcr/eventsub/internal/delivery"
	"github.com/golden-vcr/eventsub/internal/twitchapi"
)

const (
	TwitchHeaderMessageId        = "twitch-eventsub-message-id"
	TwitchHeaderMessageType      = "twitch-eventsub-message-type"
	TwitchHeaderMessageTimestamp = "twitch-eventsub-message-timestamp"
	TwitchHeaderMessageSignature = "twitch-eventsub-message-signature"
)

// We only want to simulate events locally; events that can affect the state of the
// deployed app should only come from Twitch itself
type Config struct {
	CallbackURL string `env:"SIMULATE_CALLBACK_URL" default:"http://localhost:5004/callback"`

	TwitchChannelName   string `env:"TWITCH_CHANNEL_NAME" required:"true"`
	TwitchClientId      string `env:"TWITCH_CLIENT_ID" required:"true"`
	TwitchClientSecret  string `env:"TWITCH_CLIENT_SECRET" required:"true"`
	TwitchWebhookSecret string `env:"TWITCH_WEBHOOK_SECRET" required:"true"`
}

func main() {
	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	// Parse the subcommand that we want to run, or print usage if no match
	commandName := ""
	if len(os.Args) > 1 {
		commandName = os.Args[1]
	}
	command := findCommand(commandName)
	if command == nil {
		commandNames := make([]string, 0, len(commands))
		for i := range commands {
			commandNames = append(commandNames, commands[i].name)
		}
		log.Fatalf("Usage: simulate [%s]", strings.Join(commandNames, "|"))
	}

	// Initialize command-line flags for the chosen subcommand
	flagSet := flag.NewFlagSet(command.name, flag.ExitOnError)
	command.initFunc(flagSet)
	if err := flagSet.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Parse error: %v", err)
	}

	// Initialize a Twitch API client with an app access token, then use it to resolve
	// the Twitch User ID of our desired channel
	twitchClient, err := twitch.NewClientWithAppToken(context.Background(), config.TwitchClientId, config.TwitchClientSecret)
	if err != nil {
		log.Fatalf("Failed to initialize Twitch API client: %v", err)
	}
	channelUserId, err := twitch.ResolveChannelUserId(twitchClient, config.TwitchChannelName)
	if err != nil {
		log.Fatalf("Failed to resolve Twitch user ID for channel '%s': %v", config.TwitchChannelName, err)
	}

	// Run the subcommand-specific function to build an event, then wrap it in a
	// notification for the matching required subscription
	subscriptionType, event := command.runFunc(channel{name: config.TwitchChannelName, userId: channelUserId})
	payload, err := buildNotification(eventsub.RequiredSubscriptionConditionParams{ChannelUserId: channelUserId}, subscriptionType, event)
	if err != nil {
		log.Fatalf("failed to build notification: %v", err)
	}
	payload.Subscription.Transport = twitchapi.Transport{
		Method:   twitchapi.TransportMethodWebhook,
		Callback: config.CallbackURL,
	}

	req, err := newSignedRequest(config.CallbackURL, config.TwitchWebhookSecret, payload)
	if err != nil {
		log.Fatalf("failed to prepare request: %v", err)
	}

	// Print the details of the request to stdout
	fmt.Printf("%s %s\n", req.Method, req.URL)
	for k, values := range req.Header {
		for _, v := range values {
			fmt.Printf("> %s: %s\n", k, v)
		}
	}
	pretty, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		log.Fatalf("failed to pretty-print JSON payload: %v", err)
	}
	fmt.Printf("\n%s\n\n", pretty)

	// Send the request and verify that we get an OK response
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("error sending HTTP request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		log.Fatalf("got response %d", res.StatusCode)
	}
	fmt.Printf("< %d\n", res.StatusCode)
}

func findCommand(name string) *Command {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i]
		}
	}
	return nil
}

// buildNotification wraps an event in a notification payload for the required
// subscription of the given type, as Twitch would deliver it
func buildNotification(params eventsub.RequiredSubscriptionConditionParams, subscriptionType string, event any) (*delivery.Payload, error) {
	var required *eventsub.RequiredSubscription
	for i := range eventsub.Subscriptions {
		if eventsub.Subscriptions[i].Type == subscriptionType {
			required = &eventsub.Subscriptions[i]
			break
		}
	}
	if required == nil {
		return nil, fmt.Errorf("no subscription of type %s is required by the service", subscriptionType)
	}

	condition, err := params.Format(&required.TemplatedCondition)
	if err != nil {
		return nil, fmt.Errorf("failed to format subscription condition from template: %w", err)
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return &delivery.Payload{
		Subscription: twitchapi.Subscription{
			ID:        uuid.NewString(),
			Status:    helix.EventSubStatusEnabled,
			Type:      required.Type,
			Version:   required.Version,
			Condition: *condition,
			CreatedAt: time.Now().Add(-5 * time.Minute),
		},
		Event: eventJSON,
	}, nil
}

// newSignedRequest prepares the HTTP request that carries a notification, setting
// Twitch-Eventsub-* headers to identify the message and cryptographically sign it with
// the webhook secret, in a way that helix.VerifyEventSubNotification can verify
func newSignedRequest(url, secret string, payload *delivery.Payload) (*http.Request, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message payload: %w", err)
	}
	body := string(bodyBytes)

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error initializing HTTP request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set(TwitchHeaderMessageId, uuid.NewString())
	req.Header.Set(TwitchHeaderMessageType, delivery.MessageTypeNotification)
	req.Header.Set(TwitchHeaderMessageTimestamp, time.Now().Format(time.RFC3339))
	req.Header.Set(TwitchHeaderMessageSignature, computeSignature(secret, req.Header, body))
	return req, nil
}

func computeSignature(secret string, h http.Header, message string) string {
	hmacMessage := []byte(fmt.Sprintf("%s%s%s", h.Get(TwitchHeaderMessageId), h.Get(TwitchHeaderMessageTimestamp), message))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(hmacMessage)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}
