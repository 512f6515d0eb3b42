package apicall

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors used to classify an *Error by HTTP status, via errors.Is
var (
	// ErrBadRequest indicates a 400 response
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized indicates a 401 response: the token is missing, invalid, or expired
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a 403 response: typically a missing OAuth scope
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates a 404 response
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a 409 response, e.g. an EventSub subscription that already
	// exists
	ErrConflict = errors.New("conflict")

	// ErrRateLimited indicates a 429 response
	ErrRateLimited = errors.New("rate limited")
)

// ErrorPayload is the structured error body returned by Twitch, e.g.
// {"error":"Conflict","status":409,"message":"subscription already exists"}
type ErrorPayload struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error is returned for any response with a non-2xx status code
type Error struct {
	StatusCode int
	Method     string
	URL        string

	// Payload is set if the response body could be parsed as an ErrorPayload
	Payload *ErrorPayload

	// Body holds the raw response body
	Body []byte
}

func (e *Error) Error() string {
	if e.Payload != nil && e.Payload.Message != "" {
		return fmt.Sprintf("got response %d from %s %s: %s", e.StatusCode, e.Method, e.URL, e.Payload.Message)
	}
	return fmt.Sprintf("got response %d from %s %s", e.StatusCode, e.Method, e.URL)
}

// Is allows callers to classify an *Error with errors.Is(err, apicall.ErrNotFound) etc.
func (e *Error) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return target == ErrBadRequest
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusForbidden:
		return target == ErrForbidden
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusConflict:
		return target == ErrConflict
	case http.StatusTooManyRequests:
		return target == ErrRateLimited
	}
	return false
}
