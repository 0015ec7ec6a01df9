package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/internal/domain"
	"github.com/corralhq/corral/internal/models"
)

// authTimingFloor is the minimum response time for auth endpoints to prevent
// timing oracle attacks that could distinguish valid from invalid API keys.
const authTimingFloor = 50 * time.Millisecond

// DomainOverrideHeader names the domain a request should run against. It is
// honored only on admin sessions, where the override wins over any resolver.
const DomainOverrideHeader = "X-Corral-Domain"

// DomainLookup is the interface for resolving a domain by API key.
type DomainLookup interface {
	ResolveAPIKey(ctx context.Context, apiKey string) (uuid.UUID, error)
}

// truncateKey returns at most the first 4 characters of key followed by "...".
func truncateKey(key string) string {
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return key
}

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// AuthMiddleware returns Gin middleware that authenticates requests via Bearer
// token and installs the request's domain scope.
//
// Domain API keys resolve eagerly so failures feed the brute force guard; the
// resolved ID then backs the scope handlers consult on first use. The admin
// key authenticates without a domain of its own: an admin request naming one
// in X-Corral-Domain gets an override scope, and one without the header gets
// an empty scope that refuses domain-bound operations.
func AuthMiddleware(lookup DomainLookup, adminKey string, log *logrus.Logger, guards ...*BruteForceGuard) gin.HandlerFunc {
	var guard *BruteForceGuard
	if len(guards) > 0 {
		guard = guards[0]
	}

	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		apiKey := ExtractBearerToken(c)
		if apiKey == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		if adminKey != "" && subtle.ConstantTimeCompare([]byte(apiKey), []byte(adminKey)) == 1 {
			enterAdmin(c)
			return
		}

		domainID, err := lookup.ResolveAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			logAuthFailure(log, c, apiKey)

			if guard != nil {
				guard.RecordFailure(apiKey)
			}

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid api key")
			return
		}

		if guard != nil {
			guard.ResetKey(apiKey)
		}

		c.Set("domain_id", models.CanonicalID(domainID))
		installScope(c, domain.NewScope(func(context.Context) (uuid.UUID, error) {
			return domainID, nil
		}))
		c.Next()
	}
}

// enterAdmin marks the session as admin and installs its domain scope.
func enterAdmin(c *gin.Context) {
	c.Set("is_admin", true)

	raw := c.GetHeader(DomainOverrideHeader)
	if raw == "" {
		installScope(c, domain.NewScope(nil))
		c.Next()
		return
	}

	id, err := models.ParseID(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "invalid "+DomainOverrideHeader+" header")
		return
	}

	c.Set("domain_id", models.CanonicalID(id))
	installScope(c, domain.NewOverrideScope(id))
	c.Next()
}

// installScope attaches the domain scope to the request context.
func installScope(c *gin.Context, s *domain.Scope) {
	c.Request = c.Request.WithContext(domain.WithScope(c.Request.Context(), s))
}

// AdminOnly returns middleware that rejects non-admin sessions. It must run
// after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			respondError(c, http.StatusForbidden, "forbidden", "admin key required")
			return
		}

		c.Next()
	}
}

// ExtractBearerToken extracts the API key from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// logAuthFailure logs a failed authentication attempt.
func logAuthFailure(log *logrus.Logger, c *gin.Context, apiKey string) {
	log.WithFields(logrus.Fields{
		"client_ip":  c.ClientIP(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"request_id": c.GetString("request_id"),
		"key_prefix": truncateKey(apiKey),
	}).Warn("authentication failed: invalid api key")
}
