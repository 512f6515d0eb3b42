// Package eventsocket implements the client side of an EventSub WebSocket session, as
// described in https://dev.twitch.tv/docs/eventsub/handling-websocket-events/
//
// A Client keeps a connection open for as long as it runs: each time a new session is
// welcomed, its ID is reported to the delivery.Session as the transport binding under
// which subscriptions must be created. When Twitch asks us to reconnect, the client
// migrates to the new URL without interrupting the session; when the connection is
// lost for any other reason, the loss is reported and the client reconnects with
// backoff.
package eventsocket
