package apicall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// Invoker builds and sends authenticated requests to the Twitch API
type Invoker struct {
	httpClient *http.Client
	baseURLs   map[Family]string
}

// NewInvoker returns an Invoker that sends requests with the given HTTP client (or
// http.DefaultClient if nil) to the production Twitch base URLs
func NewInvoker(httpClient *http.Client) *Invoker {
	return NewInvokerWithBaseURLs(httpClient, DefaultBaseURLs)
}

// NewInvokerWithBaseURLs returns an Invoker that resolves endpoint families against the
// given base URLs; families absent from the map fall back to DefaultBaseURLs
func NewInvokerWithBaseURLs(httpClient *http.Client, baseURLs map[Family]string) *Invoker {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Invoker{
		httpClient: httpClient,
		baseURLs:   baseURLs,
	}
}

// Do sends the request described by the endpoint and returns the raw response, without
// inspecting its status code. The caller is responsible for closing the response body.
func (i *Invoker) Do(ctx context.Context, e Endpoint, creds Credentials) (*http.Response, error) {
	var body io.Reader
	if e.JSONBody != nil {
		data, err := json.Marshal(e.JSONBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, e.method(), e.resolveURL(i.baseURLs), body)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds.ClientID != "" && e.Family != Auth {
		req.Header.Set("Client-ID", creds.ClientID)
	}
	if creds.AccessToken != "" {
		req.Header.Set("Authorization", e.Family.authorizationScheme()+" "+creds.AccessToken)
	}

	return i.httpClient.Do(req)
}

// Call sends the request described by the endpoint. If the response indicates success
// and carries a JSON body, that body is decoded into out (which may be nil to discard
// it). Any non-2xx response is returned as an *Error.
func (i *Invoker) Call(ctx context.Context, e Endpoint, creds Credentials, out any) error {
	res, err := i.Do(ctx, e, creds)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &Error{
			StatusCode: res.StatusCode,
			Method:     res.Request.Method,
			URL:        res.Request.URL.String(),
			Body:       data,
		}
		var payload ErrorPayload
		if isJSON(res.Header) && json.Unmarshal(data, &payload) == nil {
			apiErr.Payload = &payload
		}
		return apiErr
	}

	// An empty body or a non-JSON content type both indicate that there's no content
	// for us to parse
	if out == nil || len(data) == 0 || !isJSON(res.Header) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func isJSON(h http.Header) bool {
	mediaType, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
