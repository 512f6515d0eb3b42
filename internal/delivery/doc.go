// Package delivery defines the contract between EventSub transports (webhook callbacks
// and WebSocket sessions) and the subscription manager that they deliver to, along with
// the message envelope and deduplication logic that both transports share.
package delivery
