package http

import (
	"net/http"
	"strings"
	"time"

	"market-service/internal/apperr"
	"market-service/internal/auth"
	"market-service/internal/policy"
	"market-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDKey    = "request_id"
	actorKey        = "actor"
	claimsKey       = "claims"
	requestIDHeader = "X-Request-ID"
)

// RequestID tags every request with an id, reusing the caller's when sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog writes one line per request.
func AccessLog(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start),
			"ip":         c.ClientIP(),
			"request_id": c.GetString(requestIDKey),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("HTTP request")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("HTTP request")
		default:
			entry.Info("HTTP request")
		}
	}
}

// SecurityHeaders sets the standard hardening headers for a JSON API.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate resolves the bearer token into the request's actor.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			fail(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized: No token provided")
			return
		}
		actor, claims, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			h.respondError(c, err, "Failed to authenticate")
			return
		}
		c.Set(actorKey, actor)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequirePermission rejects actors the policy table does not allow.
func RequirePermission(resource policy.Resource, action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.Allow(currentActor(c).Role, resource, action) {
			fail(c, http.StatusForbidden, apperr.CodeAccessDenied, "Access denied")
			return
		}
		c.Next()
	}
}

func currentActor(c *gin.Context) services.Actor {
	v, _ := c.Get(actorKey)
	actor, _ := v.(services.Actor)
	return actor
}

func currentClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(claimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}
