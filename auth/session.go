package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/pestguard-go/apperror"
	"github.com/user/pestguard-go/config"
)

// SessionCookieName is the name of the signed session cookie.
const SessionCookieName = "session"

// SessionClaims is the payload of the session cookie: the logged-in
// username plus standard expiry claims. Nothing is persisted server-side.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies the signed client-side session cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionManager creates a SessionManager from the auth configuration.
func NewSessionManager(cfg config.AuthConfig) *SessionManager {
	return &SessionManager{
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.SessionTTL,
	}
}

// Issue signs a session token for username.
func (m *SessionManager) Issue(username string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and returns the username it was issued
// for. Expired, tampered or otherwise malformed tokens are an AuthError.
func (m *SessionManager) Verify(token string) (string, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", apperror.NewAuthError("invalid session", err)
	}
	if !parsed.Valid || claims.Username == "" {
		return "", apperror.NewAuthError("invalid session", errors.New("token not valid"))
	}
	return claims.Username, nil
}

// SetCookie attaches a freshly issued session cookie to the response.
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
}

// ClearCookie expires the session cookie. Clearing an absent cookie is a
// no-op, so logout is idempotent.
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
