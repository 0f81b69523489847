package nonce

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Actions a nonce can be scoped to.
const (
	ActionBuilder = "builder"
	ActionAdmin   = "admin"
)

const issuer = "formbridge"

var (
	ErrSecretRequired = errors.New("nonce: signing secret is required")
	ErrInvalidNonce   = errors.New("nonce: invalid or expired")
)

type claims struct {
	jwt.RegisteredClaims
	Action string `json:"act"`
}

// Manager issues and verifies HS256 signed nonces bound to an action and a
// user.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Manager)

// WithClock overrides the clock used for issue time and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager returns a Manager. A non-positive ttl falls back to 12 hours.
func NewManager(secret []byte, ttl time.Duration, opts ...Option) (*Manager, error) {
	if len(secret) == 0 {
		return nil, ErrSecretRequired
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	m := &Manager{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Issue returns a nonce for action on behalf of user.
func (m *Manager) Issue(action, user string) (string, error) {
	now := m.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strings.TrimSpace(user),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Action: strings.TrimSpace(action),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("nonce: sign: %w", err)
	}
	return signed, nil
}

// Verify checks that token was issued by this manager for action and user
// and has not expired.
func (m *Manager) Verify(token, action, user string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidNonce
	}

	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithLeeway(30*time.Second), jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return ErrInvalidNonce
	}
	if c.Action != strings.TrimSpace(action) || c.Subject != strings.TrimSpace(user) {
		return ErrInvalidNonce
	}
	return nil
}
