package callback

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golden-vcr/eventsub/internal/delivery"
)

func Test_Server_handlePostCallback(t *testing.T) {
	tests := []struct {
		name          string
		messageType   string
		requestBody   string
		signatureIsOK bool
		wantStatus    int
		wantBody      string
		wantCalls     []string
	}{
		{
			"if signature verification fails, returns 400",
			delivery.MessageTypeNotification,
			"{}",
			false,
			400,
			"Signature verification failed",
			nil,
		},
		{
			"if challenge is for a pending subscription, echoes challenge with 200",
			delivery.MessageTypeVerification,
			`{"subscription":{"id":"some-subscription","type":"stream.online","condition":{"broadcaster_user_id":"1337"}},"challenge":"foobar12345"}`,
			true,
			200,
			"foobar12345",
			[]string{"verified stream.online.1337 some-subscription"},
		},
		{
			"if challenge is for an unknown subscription, returns 404",
			delivery.MessageTypeVerification,
			`{"subscription":{"id":"some-subscription","type":"stream.offline","condition":{"broadcaster_user_id":"1337"}},"challenge":"foobar12345"}`,
			true,
			404,
			"Unrecognized subscription",
			[]string{"verified stream.offline.1337 some-subscription"},
		},
		{
			"challenge without message type header is treated as verification",
			"",
			`{"subscription":{"id":"some-subscription","type":"stream.online","condition":{"broadcaster_user_id":"1337"}},"challenge":"foobar12345"}`,
			true,
			200,
			"foobar12345",
			[]string{"verified stream.online.1337 some-subscription"},
		},
		{
			"valid notification is delivered to receiver",
			delivery.MessageTypeNotification,
			`{"subscription":{"id":"some-subscription","type":"stream.online","condition":{"broadcaster_user_id":"1337"}},"event":{"value":42}}`,
			true,
			200,
			"",
			[]string{`notification stream.online.1337 some-subscription {"value":42}`},
		},
		{
			"revocation is delivered to receiver",
			delivery.MessageTypeRevocation,
			`{"subscription":{"id":"some-subscription","status":"user_removed","type":"stream.online","condition":{"broadcaster_user_id":"1337"}}}`,
			true,
			200,
			"",
			[]string{"revoked stream.online.1337 some-subscription user_removed"},
		},
		{
			"unsupported message type returns 400",
			"something_else",
			`{"subscription":{"id":"some-subscription","type":"stream.online"}}`,
			true,
			400,
			"unsupported message type 'something_else'",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &mockReceiver{verified: map[string]bool{"stream.online.1337": true}}
			s := &Server{
				verifyNotification: func(header http.Header, message string) bool {
					return tt.signatureIsOK
				},
				receiver: r,
			}
			req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(tt.requestBody))
			if tt.messageType != "" {
				req.Header.Set(headerMessageType, tt.messageType)
			}
			res := httptest.NewRecorder()
			s.handlePostCallback(res, req)

			b, err := io.ReadAll(res.Body)
			assert.NoError(t, err)
			body := strings.TrimSuffix(string(b), "\n")
			assert.Equal(t, tt.wantStatus, res.Code)
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, tt.wantCalls, r.calls)
		})
	}
}

func Test_Server_handlePostCallback_duplicate_messages(t *testing.T) {
	secret := "my-cool-webhook-secret"
	r := &mockReceiver{}
	dedup, err := delivery.NewDeduplicator(16)
	require.NoError(t, err)
	s := NewServer(secret, r, dedup)

	body := `{"subscription":{"id":"some-subscription","type":"stream.online","condition":{"broadcaster_user_id":"1337"}},"event":{"broadcaster_user_id":"1337"}}`
	for i := 0; i < 2; i++ {
		req := newSignedRequest(secret, "message-1", delivery.MessageTypeNotification, body)
		res := httptest.NewRecorder()
		s.handlePostCallback(res, req)
		assert.Equal(t, http.StatusOK, res.Code)
	}
	assert.Len(t, r.calls, 1)

	// A request with a bogus signature is rejected outright
	req := newSignedRequest("some-other-secret", "message-2", delivery.MessageTypeNotification, body)
	res := httptest.NewRecorder()
	s.handlePostCallback(res, req)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Len(t, r.calls, 1)
}

func Test_Transport(t *testing.T) {
	transport := Transport("https://goldenvcr.com/api/eventsub", "shh")
	assert.Equal(t, "webhook", transport.Method)
	assert.Equal(t, "https://goldenvcr.com/api/eventsub/callback", transport.Callback)
	assert.Equal(t, "shh", transport.Secret)
}

func newSignedRequest(secret, messageId, messageType, body string) *http.Request {
	timestamp := "2023-11-16T10:11:12.634234626Z"
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(messageId + timestamp + body))

	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set(headerMessageId, messageId)
	req.Header.Set(headerMessageType, messageType)
	req.Header.Set("Twitch-Eventsub-Message-Timestamp", timestamp)
	req.Header.Set("Twitch-Eventsub-Message-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

type mockReceiver struct {
	verified map[string]bool
	calls    []string
}

func (m *mockReceiver) OnVerified(topicID, ref string) bool {
	m.calls = append(m.calls, "verified "+topicID+" "+ref)
	return m.verified[topicID]
}

func (m *mockReceiver) OnNotification(topicID, ref string, payload json.RawMessage) {
	m.calls = append(m.calls, "notification "+topicID+" "+ref+" "+string(payload))
}

func (m *mockReceiver) OnRevoked(topicID, ref, reason string) {
	m.calls = append(m.calls, "revoked "+topicID+" "+ref+" "+reason)
}
