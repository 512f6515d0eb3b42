package userauth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const csrfTokenTTL = 15 * time.Minute

// csrfBuffer holds the CSRF tokens issued for OAuth flows that have been started but
// not yet finished; each token may be redeemed once before it expires
type csrfBuffer struct {
	tokens []csrfToken
	ttl    time.Duration
	now    func() time.Time
	mu     sync.Mutex
}

type csrfToken struct {
	value     string
	expiresAt time.Time
}

func newCSRFBuffer() *csrfBuffer {
	return &csrfBuffer{
		tokens: make([]csrfToken, 0, 8),
		ttl:    csrfTokenTTL,
		now:    time.Now,
	}
}

func (b *csrfBuffer) generate() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	tokenValue := hex.EncodeToString(bytes)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = append(b.purgeExpired(), csrfToken{
		value:     tokenValue,
		expiresAt: b.now().Add(b.ttl),
	})
	return tokenValue, nil
}

func (b *csrfBuffer) check(tokenValue string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	retained := b.purgeExpired()
	for i := range retained {
		// A matching token is valid, and is dropped from the buffer since it's been used
		if retained[i].value == tokenValue {
			b.tokens = append(retained[:i], retained[i+1:]...)
			return true
		}
	}
	b.tokens = retained
	return false
}

// purgeExpired returns the tokens that have not yet expired; the caller must hold mu
func (b *csrfBuffer) purgeExpired() []csrfToken {
	now := b.now()
	retained := make([]csrfToken, 0, len(b.tokens)+1)
	for _, token := range b.tokens {
		if token.expiresAt.After(now) {
			retained = append(retained, token)
		}
	}
	return retained
}
