// Package apicall is the single chokepoint through which every request to the Twitch
// API passes. It selects a base URL by endpoint family (Helix, the legacy Kraken API,
// or the id.twitch.tv OAuth service), injects the client ID and access token supplied
// by the caller, and translates non-2xx responses into *Error values that can be
// classified with errors.Is.
//
// An Invoker holds no per-call state: credentials are passed in on every call and are
// never cached, so a single Invoker may be shared freely between goroutines.
package apicall
