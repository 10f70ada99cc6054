package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"netinv/internal/config"
	"netinv/internal/inventory"
)

// sessionKey is the gin context key of the authenticated session.
const sessionKey = "netinv_session"

// TokenAuth resolves bearer tokens against the bcrypt hashes of the
// [server] config section.
type TokenAuth struct {
	tokens []config.TokenConfig
}

func NewTokenAuth(tokens []config.TokenConfig) *TokenAuth {
	return &TokenAuth{tokens: tokens}
}

// Authenticate returns the user the token belongs to.
func (a *TokenAuth) Authenticate(token string) (inventory.Session, bool) {
	if token == "" {
		return inventory.Session{}, false
	}
	for _, t := range a.tokens {
		if bcrypt.CompareHashAndPassword([]byte(t.Hash), []byte(token)) == nil {
			return inventory.Session{UserID: t.UserID}, true
		}
	}
	return inventory.Session{}, false
}

// Middleware aborts requests without a valid bearer token with 401 and
// stores the session of the others.
func (a *TokenAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := a.Authenticate(bearerToken(c))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session stored by the auth middleware.
func SessionFrom(c *gin.Context) inventory.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(inventory.Session); ok {
			return s
		}
	}
	return inventory.Session{}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// NewToken generates a random bearer token.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

// HashToken returns the bcrypt hash stored in config for token.
func HashToken(token string) (string, error) {
	if len(token) < 16 {
		return "", errors.New("token must be at least 16 characters")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
