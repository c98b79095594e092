package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hajimeclub/portal/internal/entities"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// DefaultSessionLifetime is how long a session stays valid after issuance.
// There is no sliding expiration: the expiry is fixed when the token is
// issued and changes only on explicit re-issuance.
const DefaultSessionLifetime = 30 * 24 * time.Hour

const tokenBytes = 32

// ErrTokenExists is returned by a TokenStore when a Put would overwrite a
// live token. The Manager retries with a fresh token.
var ErrTokenExists = errors.New("session token already exists")

// Record is the identity a session token maps to.
type Record struct {
	UserID uint
	Expiry time.Time
}

// TokenStore is the pluggable token-to-identity mapping. Implementations
// must be safe for concurrent use, and Delete must be idempotent. Within a
// single token, a Delete followed by a Get must observe the deletion.
type TokenStore interface {
	// Put stores a record under token, failing with ErrTokenExists if the
	// token is already live.
	Put(ctx context.Context, token string, rec Record) error
	// Get returns the record for token. The second return is false when the
	// token is unknown.
	Get(ctx context.Context, token string) (Record, bool, error)
	// Delete removes the token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

// UserResolver resolves a user id to the account it names. Returns (nil, nil)
// when the account no longer exists.
type UserResolver interface {
	GetByID(id uint) (*entities.User, error)
}

// Manager owns the session token lifecycle: issuance, resolution and
// revocation. Cookie values are HMAC-signed with the session secret so a
// tampered cookie is rejected before the store is consulted.
type Manager struct {
	store    TokenStore
	users    UserResolver
	secret   []byte
	lifetime time.Duration
	secure   bool
}

// NewManager creates a session manager. The secret must be non-empty; secure
// controls the cookie Secure attribute and must be true in production.
func NewManager(store TokenStore, users UserResolver, secret []byte, lifetime time.Duration, secure bool) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret must not be empty")
	}
	if lifetime <= 0 {
		lifetime = DefaultSessionLifetime
	}
	return &Manager{
		store:    store,
		users:    users,
		secret:   secret,
		lifetime: lifetime,
		secure:   secure,
	}, nil
}

// Issue creates a fresh unguessable token for userID and stores it with the
// configured lifetime. On the vanishingly unlikely token collision the store
// refuses the Put and a new token is drawn.
func (m *Manager) Issue(ctx context.Context, userID uint) (string, time.Time, error) {
	expiry := time.Now().Add(m.lifetime)

	for attempt := 0; attempt < 3; attempt++ {
		token, err := generateSessionToken()
		if err != nil {
			return "", time.Time{}, err
		}

		err = m.store.Put(ctx, token, Record{UserID: userID, Expiry: expiry})
		if err == nil {
			return token, expiry, nil
		}
		if !errors.Is(err, ErrTokenExists) {
			return "", time.Time{}, fmt.Errorf("failed to store session: %w", err)
		}
	}
	return "", time.Time{}, errors.New("failed to allocate unique session token")
}

// Resolve maps a token to the user it identifies. It returns (nil, nil) for
// anything that should be treated as anonymous: unknown token, expired
// token, or a token whose user has since been deleted. In the latter two
// cases the entry is dropped from the store (lazy invalidation).
func (m *Manager) Resolve(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, nil
	}

	rec, ok, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if !ok {
		return nil, nil
	}

	if time.Now().After(rec.Expiry) {
		_ = m.store.Delete(ctx, token)
		return nil, nil
	}

	user, err := m.users.GetByID(rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("session user lookup failed: %w", err)
	}
	if user == nil {
		// The account is gone; the session dies with it.
		_ = m.store.Delete(ctx, token)
		return nil, nil
	}

	return user, nil
}

// Revoke removes the token. Revoking twice, or revoking a token that never
// existed, is not an error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

// WriteCookie attaches the signed session cookie to the response. The cookie
// is HTTP-only and carries a max-age matching the session expiry.
func (m *Manager) WriteCookie(c *gin.Context, token string, expiry time.Time) {
	maxAge := int(time.Until(expiry).Seconds())
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    m.signToken(token),
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest extracts and authenticates the session token from the
// request cookie. Returns ("", false) when the cookie is missing or its
// signature does not verify.
func (m *Manager) TokenFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	return m.verifySignedToken(cookie.Value)
}

// signToken returns "<token>.<hex-hmac>" so the cookie value is useless
// without the server secret.
func (m *Manager) signToken(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return token + "." + hex.EncodeToString(mac.Sum(nil))
}

func (m *Manager) verifySignedToken(value string) (string, bool) {
	token, sig, found := strings.Cut(value, ".")
	if !found || token == "" {
		return "", false
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	expected := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return "", false
	}
	return token, true
}

// generateSessionToken draws a cryptographically random 32-byte token.
func generateSessionToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateSessionSecret creates a random 32-byte secret for cookie signing.
// Used at startup in development when AUTH_SESSION_SECRET is unset.
func GenerateSessionSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
