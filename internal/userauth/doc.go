// Package userauth sends the broadcaster through a Twitch-hosted OAuth consent page,
// where they can connect our application to their channel with every scope that our
// required EventSub subscriptions depend on.
//
// Subscriptions are created with an app access token, but Twitch also checks that the
// app has been granted the relevant scopes on the target channel. A 'channel.follow'
// subscription for broadcaster "12345", for example, is rejected with a 403 unless user
// "12345" has authorized our app with 'moderator:read:followers'.
//
// GET /userauth/start redirects to id.twitch.tv to begin an authorization code grant
// flow, and Twitch redirects back to GET /userauth/finish once the user has consented:
//
// - https://dev.twitch.tv/docs/authentication/getting-tokens-oauth/#authorization-code-grant-flow
//
// We never redeem the resulting code for a user access token. The only effect we need
// is the grant recorded by Twitch, after which PATCH /subscriptions can succeed.
package userauth
