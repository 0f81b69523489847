package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/goliatone/go-formbridge/internal/permissions"
)

// SessionCookie carries the session token for browser requests.
const SessionCookie = "formbridge_session"

var ErrInvalidSession = errors.New("http: invalid session token")

// SessionClaims identify the signed-in user and their roles.
type SessionClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

type userKey struct{}

// User is the authenticated caller.
type User struct {
	ID    string
	Roles []string
}

func contextWithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the caller set by the session middleware.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey{}).(User)
	return user, ok
}

// IssueSession signs a session token for user. The CLI uses it to mint
// tokens for local use.
func IssueSession(secret []byte, user User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: user.Roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseSession(secret []byte, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return secret, nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

func sessionToken(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

// sessionMiddleware resolves the caller from a bearer token or the session
// cookie and installs their capabilities. Requests without a token continue
// anonymously; invalid tokens are rejected.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := parseSession(s.authSecret, token)
		if err != nil {
			s.logger.Warn("http.session_rejected", "path", r.URL.Path, "error", err)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		ctx := contextWithUser(r.Context(), User{ID: claims.Subject, Roles: claims.Roles})
		ctx = permissions.WithChecker(ctx, permissions.ForRoles(claims.Roles...))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireCapability rejects callers lacking capability.
func requireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := permissions.Require(r.Context(), capability); err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
