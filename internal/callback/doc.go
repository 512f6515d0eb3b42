// Package callback implements the HTTP server functionality required to handle incoming
// EventSub webhook requests from Twitch, as described in
// https://dev.twitch.tv/docs/eventsub/handling-webhook-events/
//
// Verified requests are handed off to a delivery.Receiver: the server echoes
// verification challenges only for subscriptions that the receiver is waiting on.
package callback
