package sessions

import (
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/rs/zerolog"
)

// DefaultTTL is the absolute session lifetime. Expiry is counted from
// creation and never refreshed by activity.
const DefaultTTL = 24 * time.Hour

var ErrUnauthenticated = errors.New("not authenticated")

// Session binds an opaque token to a user identity.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Manager holds all live sessions in an owned, lock-guarded map. State is
// process-local: a restart logs everyone out.
type Manager struct {
	logger zerolog.Logger
	ttl    time.Duration

	mu  sync.RWMutex
	mem map[string]Session // by token
}

func NewManager(ttl time.Duration, logger zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		logger: logger.With().Str("component", "sessions").Logger(),
		ttl:    ttl,
		mem:    map[string]Session{},
	}
}

// TTL returns the configured absolute lifetime, for cookie Max-Age.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Create issues a new session for the given user and returns its token.
func (m *Manager) Create(userID string) string {
	token := base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
	now := time.Now().UTC()
	m.mu.Lock()
	m.mem[token] = Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	m.mu.Unlock()
	return token
}

// Validate returns the owning user for a live token. Expired entries are
// dropped lazily here; Sweep handles the rest.
func (m *Manager) Validate(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	m.mu.RLock()
	sess, ok := m.mem[token]
	m.mu.RUnlock()
	if !ok {
		return "", ErrUnauthenticated
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		m.Destroy(token)
		return "", ErrUnauthenticated
	}
	return sess.UserID, nil
}

// Destroy removes a session. Removing an unknown token is not an error.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	delete(m.mem, token)
	m.mu.Unlock()
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	now := time.Now().UTC()
	m.mu.Lock()
	removed := 0
	for token, sess := range m.mem {
		if now.After(sess.ExpiresAt) {
			delete(m.mem, token)
			removed++
		}
	}
	m.mu.Unlock()
	if removed > 0 {
		m.logger.Debug().Int("removed", removed).Msg("swept expired sessions")
	}
	return removed
}

// Count returns the number of live entries, expired or not.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.mem)
}
