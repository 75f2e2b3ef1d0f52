package core

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequestTimeoutMiddleware bounds each request with a deadline so a stalled
// store call cannot hold the handler forever.
func RequestTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CORSMiddleware validates Origin/Referer against the allowed list and sets
// CORS headers. Preflight requests are answered directly.
func CORSMiddleware(cfg Config) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.ToLower(o)] = struct{}{}
	}

	isAllowed := func(origin string) bool {
		if origin == "" {
			// Same-origin navigation (no Origin header) is allowed.
			return true
		}
		if len(allowed) == 0 {
			return false
		}
		origin = strings.ToLower(origin)
		_, ok := allowed[origin]
		return ok
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		referer := c.GetHeader("Referer")
		if origin == "" && referer != "" {
			if u, err := url.Parse(referer); err == nil {
				origin = u.Scheme + "://" + u.Host
			}
		}

		// Preflight handling
		if c.Request.Method == http.MethodOptions && origin != "" {
			if !isAllowed(origin) {
				respondError(c, http.StatusForbidden, "FORBIDDEN", "origin not allowed")
				c.Abort()
				return
			}
			setCORSHeaders(c, origin)
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		if !isAllowed(origin) {
			respondError(c, http.StatusForbidden, "FORBIDDEN", "origin not allowed")
			c.Abort()
			return
		}
		if origin != "" {
			setCORSHeaders(c, origin)
		}
		c.Next()
	}
}

func setCORSHeaders(c *gin.Context, origin string) {
	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Vary", "Origin")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
}

// AuthRequired verifies the bearer token and re-resolves the subject against
// the user store. The store lookup is mandatory: a deregistered user's still
// valid token must be rejected, so the token payload is never trusted as the
// identity on its own.
func AuthRequired(tokens *TokenManager, users UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "authorization header with bearer token is required")
			c.Abort()
			return
		}

		username, err := tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				respondError(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "token has expired, log in again")
				c.Abort()
				return
			}
			respondError(c, http.StatusUnauthorized, "INVALID_TOKEN", "token could not be verified")
			c.Abort()
			return
		}

		u, err := users.FindByUsername(c.Request.Context(), username)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				respondError(c, http.StatusUnauthorized, "UNKNOWN_SUBJECT", "token subject no longer exists")
				c.Abort()
				return
			}
			respondStoreError(c, err)
			c.Abort()
			return
		}

		c.Set(identityKey, Identity{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
		})
		c.Next()
	}
}

// identityFrom returns the authenticated identity set by AuthRequired.
func identityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// requireSelf enforces that the authenticated caller matches the :username
// path parameter. A valid token for user A must never act on user B.
func requireSelf(c *gin.Context) (Identity, bool) {
	id, ok := identityFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "authentication required")
		return Identity{}, false
	}
	if id.Username != c.Param("username") {
		respondError(c, http.StatusForbidden, "PERMISSION_DENIED", "you can only manage your own account")
		return Identity{}, false
	}
	return id, true
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
