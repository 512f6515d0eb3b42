package userauth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"
)

const authorizeURL = "https://id.twitch.tv/oauth2/authorize"

type Server struct {
	origin         string
	twitchClientId string
	scopes         []string
	csrf           *csrfBuffer
}

// NewServer prepares a server that will ask the broadcaster to grant the given scopes
// to our app
func NewServer(origin, twitchClientId string, scopes []string) *Server {
	return &Server{
		origin:         origin,
		twitchClientId: twitchClientId,
		scopes:         scopes,
		csrf:           newCSRFBuffer(),
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/userauth/start").Methods("GET").HandlerFunc(s.handleStartAuth)
	r.Path("/userauth/finish").Methods("GET").HandlerFunc(s.handleFinishAuth)
}

func (s *Server) handleStartAuth(res http.ResponseWriter, req *http.Request) {
	state, err := s.csrf.generate()
	if err != nil {
		entry.Log(req).Error("Failed to generate CSRF token", "error", err)
		http.Error(res, "failed to generate CSRF token", http.StatusInternalServerError)
		return
	}

	q := url.Values{}
	q.Add("response_type", "code")
	q.Add("client_id", s.twitchClientId)
	q.Add("redirect_uri", s.origin+"/userauth/finish")
	q.Add("scope", strings.Join(s.scopes, " "))
	q.Add("state", state)

	res.Header().Set("location", authorizeURL+"?"+q.Encode())
	res.WriteHeader(http.StatusSeeOther)
}

func (s *Server) handleFinishAuth(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	// Verify the CSRF token carried in the 'state' parameter
	tokenValue := req.URL.Query().Get("state")
	if tokenValue == "" {
		http.Error(res, "'state' value not found in URL query params", http.StatusBadRequest)
		return
	}
	if !s.csrf.check(tokenValue) {
		http.Error(res, "CSRF token verification failed", http.StatusBadRequest)
		return
	}

	// If the broadcaster declined, Twitch tells us why
	if errorValue := req.URL.Query().Get("error"); errorValue != "" {
		logger.Warn("Broadcaster did not grant access", "error", errorValue, "description", req.URL.Query().Get("error_description"))
		http.Error(res, fmt.Sprintf("access was not granted: %s", req.URL.Query().Get("error_description")), http.StatusBadRequest)
		return
	}

	// Verify that all requested scopes were granted
	scopeValue := req.URL.Query().Get("scope")
	if scopeValue == "" && len(s.scopes) > 0 {
		http.Error(res, "'scope' value not found in URL query params", http.StatusBadRequest)
		return
	}
	granted := make(map[string]struct{})
	for _, scope := range strings.Fields(scopeValue) {
		granted[scope] = struct{}{}
	}
	for _, desiredScope := range s.scopes {
		if _, ok := granted[desiredScope]; !ok {
			http.Error(res, fmt.Sprintf("required scope '%s' was not granted", desiredScope), http.StatusBadRequest)
			return
		}
	}

	logger.Info("Broadcaster granted access", "scopes", s.scopes)
	res.Header().Set("Content-Type", "text/html; charset=utf-8")
	res.Write([]byte("<!DOCTYPE html><html><head><title>OK</title></head><body><h1>Success!</h1><p>Access granted. You may close this window.</p></body></html>"))
}
