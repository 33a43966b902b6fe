package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"wabalerts/internal/common"

	"github.com/gin-gonic/gin"
)

const (
	apiKeyHeader = "X-API-Key"
	bearerPrefix = "Bearer "
)

// keyring holds the SHA-256 digests of the accepted API keys. Digests have a
// fixed length, so comparing them does not leak the length of any key.
type keyring [][sha256.Size]byte

func newKeyring(keys []string) keyring {
	ring := make(keyring, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		ring = append(ring, sha256.Sum256([]byte(k)))
	}
	return ring
}

// match reports whether key is accepted and, if so, a short fingerprint of it
// that is safe to log.
func (r keyring) match(key string) (string, bool) {
	digest := sha256.Sum256([]byte(key))
	found := 0
	for i := range r {
		found |= subtle.ConstantTimeCompare(digest[:], r[i][:])
	}
	if found != 1 {
		return "", false
	}
	return hex.EncodeToString(digest[:4]), true
}

// Auth returns middleware that accepts a shop API key from the X-API-Key
// header or an "Authorization: Bearer" header. Callers are the shop's event
// sources and operator tooling, not end users.
func Auth(validKeys []string) gin.HandlerFunc {
	ring := newKeyring(validKeys)

	return func(c *gin.Context) {
		apiKey := presentedKey(c)
		if apiKey == "" {
			common.Error(c, http.StatusUnauthorized, "missing X-API-Key header")
			c.Abort()
			return
		}

		caller, ok := ring.match(apiKey)
		if !ok {
			common.Error(c, http.StatusUnauthorized, "invalid API key")
			c.Abort()
			return
		}

		c.Set(common.CallerKey, caller)
		c.Next()
	}
}

func presentedKey(c *gin.Context) string {
	if key := c.GetHeader(apiKeyHeader); key != "" {
		return key
	}
	auth := c.GetHeader("Authorization")
	if len(auth) > len(bearerPrefix) && strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(auth[len(bearerPrefix):])
	}
	return ""
}
