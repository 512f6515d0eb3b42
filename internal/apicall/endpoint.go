package apicall

import (
	"net/http"
	"net/url"
	"strings"
)

// Family identifies which Twitch API a request is addressed to
type Family int

const (
	// Helix is the primary resource API at api.twitch.tv/helix
	Helix Family = iota
	// Kraken is the legacy v5 resource API at api.twitch.tv/kraken
	Kraken
	// Auth is the OAuth service at id.twitch.tv/oauth2
	Auth
)

func (f Family) String() string {
	switch f {
	case Helix:
		return "helix"
	case Kraken:
		return "kraken"
	case Auth:
		return "auth"
	}
	return "unknown"
}

// DefaultBaseURLs maps each Family to the base URL used in production
var DefaultBaseURLs = map[Family]string{
	Helix:  "https://api.twitch.tv/helix/",
	Kraken: "https://api.twitch.tv/kraken/",
	Auth:   "https://id.twitch.tv/oauth2/",
}

// Endpoint describes a single request to be made against the Twitch API
type Endpoint struct {
	Family Family
	Method string
	Path   string
	Query  url.Values

	// JSONBody, if non-nil, is serialized to JSON and sent as the request body
	JSONBody any
}

// Credentials identifies the caller to Twitch. Both fields are optional: ClientID is
// never sent to the Auth family, and AccessToken is only sent when non-empty.
type Credentials struct {
	ClientID    string
	AccessToken string
}

func (e *Endpoint) method() string {
	if e.Method == "" {
		return http.MethodGet
	}
	return e.Method
}

// resolveURL joins the family's base URL with the endpoint's relative path, then
// appends the encoded query string (if any) with a leading '?'
func (e *Endpoint) resolveURL(baseURLs map[Family]string) string {
	base, ok := baseURLs[e.Family]
	if !ok {
		base = DefaultBaseURLs[e.Family]
	}
	u := strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(e.Path, "/")
	return u + EncodeQuery(e.Query)
}

// authorizationScheme returns the Authorization header scheme that Twitch expects for
// tokens sent to the given family
func (f Family) authorizationScheme() string {
	if f == Helix {
		return "Bearer"
	}
	return "OAuth"
}

// EncodeQuery serializes query parameters in the form Twitch expects: array values are
// conveyed by repeating the key (e.g. ?id=1&id=2), and the result carries a leading
// '?' only if there is at least one parameter. Keys are emitted in sorted order.
func EncodeQuery(q url.Values) string {
	encoded := q.Encode()
	if encoded == "" {
		return ""
	}
	return "?" + encoded
}
