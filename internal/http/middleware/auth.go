package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/swim-records/internal/auth"
)

// Context keys set by the authentication middleware.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

// Dev identity headers, honored only by DevIdentity.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// TokenVerifier resolves a raw bearer token to the caller identity.
type TokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

// Authenticate requires a valid bearer token. It answers 401 for a missing
// or invalid token and 403 when the token carries no role; otherwise the
// caller is stored under UserIDKey and RoleKey.
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var id auth.Identity
			if id, err = v.Verify(raw); err == nil {
				setIdentity(c, id)
				c.Next()
				return
			}
		}

		switch {
		case errors.Is(err, auth.ErrNoRole):
			abortJSON(c, http.StatusForbidden, "forbidden", "Forbidden: no app role assigned")
		case errors.Is(err, auth.ErrMissingToken):
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Unauthorized: missing bearer token")
		default:
			LoggerFrom(c).Debug().Err(err).Msg("token rejected")
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Unauthorized: invalid token")
		}
	}
}

// DevIdentity trusts X-User-ID and X-User-Role. It exists for local runs with
// AUTH_DISABLED and must never face untrusted clients.
func DevIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := auth.Identity{
			UserID: strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Role:   strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserRole))),
		}
		if id.UserID == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Unauthorized: missing "+HeaderUserID)
			return
		}
		if id.Role == "" {
			abortJSON(c, http.StatusForbidden, "forbidden", "Forbidden: no app role assigned")
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

// IdentityFrom returns the caller stored by Authenticate or DevIdentity.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	uid, _ := c.Get(UserIDKey)
	role, _ := c.Get(RoleKey)
	id := auth.Identity{UserID: asString(uid), Role: asString(role)}
	return id, id.UserID != ""
}

func setIdentity(c *gin.Context, id auth.Identity) {
	c.Set(UserIDKey, id.UserID)
	c.Set(RoleKey, id.Role)
	lg := LoggerFrom(c).With().Str("user_id", id.UserID).Str("role", id.Role).Logger()
	c.Set(loggerKey, &lg)
}

// abortJSON writes the API error envelope. Handlers own the same shape.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       code,
		"request_id": RequestIDFrom(c),
	})
}
