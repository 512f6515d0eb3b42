// Package events contains the typed domain events produced from EventSub notification
// payloads.
//
// Each event wraps the deserialized payload and exposes it only through accessor
// methods. Events also carry a reference to the twitchapi.Client that was in effect
// when the notification was received, so that related resources (the broadcaster, the
// redeeming user, the full reward record, etc.) can be fetched on demand. Decoding an
// event never performs any network calls itself.
//
// Events marshal to JSON as the original payload, which is what gets forwarded to
// downstream consumers.
package events
