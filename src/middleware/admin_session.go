package middleware

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/axialy/axialy-server/src/services"
)

// AdminSessionCookie is the admin surface session cookie name
const AdminSessionCookie = "axialy_admin_session"

// Context keys set by AdminSessionRequired
const (
	AdminUserIDKey       = "admin_user_id"
	AdminSessionTokenKey = "admin_session_token"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// SanitizeSessionID reduces a client-supplied session identifier to
// alphanumeric characters only.
func SanitizeSessionID(raw string) string {
	return nonAlphanumeric.ReplaceAllString(raw, "")
}

// RequestIsHTTPS reports whether the request arrived over TLS, directly
// or behind a forwarding proxy.
func RequestIsHTTPS(c *gin.Context) bool {
	return c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}

// AdminSessionToken resolves the session token for this request. The
// cookie wins; when the browser dropped it, a hidden `sid` form field
// is accepted (sanitized to alphanumerics) so the login flow survives
// first-visit cookie loss. A bearer header is the last resort. The
// returned value is only ever used to look up an existing
// server-issued session row; unknown identifiers are never adopted.
func AdminSessionToken(c *gin.Context) (token string, fromCookie bool) {
	if cookie, err := c.Cookie(AdminSessionCookie); err == nil && cookie != "" {
		return SanitizeSessionID(cookie), true
	}

	if c.Request.Method == http.MethodPost {
		if sid := c.PostForm("sid"); sid != "" {
			return SanitizeSessionID(sid), false
		}
	}

	authHeader := c.GetHeader("Authorization")
	if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
		return SanitizeSessionID(parts[1]), false
	}
	return "", false
}

// SetAdminSessionCookie sends the session cookie with the surface's
// policy: HttpOnly always; Secure and SameSite=Strict over HTTPS,
// SameSite=Lax otherwise.
func SetAdminSessionCookie(c *gin.Context, token string) {
	secure := RequestIsHTTPS(c)
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteStrictMode
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     AdminSessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}

// ClearAdminSessionCookie expires the session cookie
func ClearAdminSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     AdminSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// AdminSessionRequired validates the request's session token against
// the sessions table, enforcing expiry. On success the admin user id
// and token land in the context, and the cookie is re-sent when the
// inbound request did not carry it.
func AdminSessionRequired(adminService *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := AdminSessionToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Authentication required."})
			c.Abort()
			return
		}

		session, err := adminService.ValidateSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrSessionExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Session expired. Please log in again."})
			} else if errors.Is(err, services.ErrSessionNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Authentication required."})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "An error occurred. Please try again."})
			}
			c.Abort()
			return
		}

		if !fromCookie {
			SetAdminSessionCookie(c, token)
		}

		c.Set(AdminUserIDKey, session.AdminUserID)
		c.Set(AdminSessionTokenKey, token)
		c.Next()
	}
}
