package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/axialy/axialy-server/src/middleware"
	"github.com/axialy/axialy-server/src/services"
)

// AdminHandler handles the admin console surface: login, logout,
// session status, and first-admin seeding.
type AdminHandler struct {
	adminService *services.AdminService

	defaultUsername string
	defaultEmail    string
	defaultPassword string
}

// NewAdminHandler creates a new admin handler. The default credentials
// seed the first admin account when none exists.
func NewAdminHandler(adminService *services.AdminService, defaultUsername, defaultEmail, defaultPassword string) *AdminHandler {
	return &AdminHandler{
		adminService:    adminService,
		defaultUsername: defaultUsername,
		defaultEmail:    defaultEmail,
		defaultPassword: defaultPassword,
	}
}

// AdminLoginRequest represents an admin login submission. The console
// posts form-encoded fields; JSON is accepted for API clients.
type AdminLoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// HandleLogin handles POST /admin/login
func (h *AdminHandler) HandleLogin(c *gin.Context) {
	// Session recovery runs before the form is touched. A sanitized
	// `sid` hidden field is honored only when it names an existing
	// server-issued session; unknown values are ignored.
	if token, fromCookie := middleware.AdminSessionToken(c); token != "" {
		if session, err := h.adminService.ValidateSession(c.Request.Context(), token); err == nil {
			if !fromCookie {
				middleware.SetAdminSessionCookie(c, token)
			}
			c.JSON(http.StatusOK, gin.H{
				"status":        "ok",
				"message":       "Already logged in.",
				"admin_user_id": session.AdminUserID,
			})
			return
		}
	}

	var req AdminLoginRequest
	if err := c.ShouldBind(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Please enter your username and password.",
		})
		return
	}

	admin, err := h.adminService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Invalid credentials.",
			})
		case errors.Is(err, services.ErrAccountDisabled):
			c.JSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "This admin account is disabled.",
			})
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("admin login failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "An error occurred. Please try again.",
			})
		}
		return
	}

	session, err := h.adminService.CreateSession(c.Request.Context(), admin.ID)
	if err != nil {
		log.Error().Err(err).Int64("admin_user_id", admin.ID).Msg("session creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "An error occurred. Please try again.",
		})
		return
	}

	middleware.SetAdminSessionCookie(c, session.SessionToken)
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"message":       "Login successful.",
		"admin_user_id": admin.ID,
		"username":      admin.Username,
		"is_sys_admin":  admin.IsSysAdmin,
	})
}

// HandleLogout handles POST /admin/logout
func (h *AdminHandler) HandleLogout(c *gin.Context) {
	token := c.GetString(middleware.AdminSessionTokenKey)
	if token != "" {
		if err := h.adminService.DestroySession(c.Request.Context(), token); err != nil {
			log.Error().Err(err).Msg("session destroy failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "An error occurred. Please try again.",
			})
			return
		}
	}

	middleware.ClearAdminSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Logged out."})
}

// HandleStatus handles GET /admin/status - reports the authenticated admin
func (h *AdminHandler) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"authenticated": true,
		"admin_user_id": c.GetInt64(middleware.AdminUserIDKey),
	})
}

// HandleInit handles POST /admin/init - idempotently seeds the default
// admin account from configuration. Refuses when the username exists.
func (h *AdminHandler) HandleInit(c *gin.Context) {
	if h.defaultUsername == "" || h.defaultPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Default admin credentials are not configured.",
		})
		return
	}

	exists, err := h.adminService.UsernameExists(c.Request.Context(), h.defaultUsername)
	if err != nil {
		log.Error().Err(err).Msg("admin init lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "An error occurred. Please try again.",
		})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{
			"status":  "error",
			"message": "Admin user already exists.",
		})
		return
	}

	admin, err := h.adminService.CreateAdminUser(c.Request.Context(), h.defaultUsername, h.defaultPassword, h.defaultEmail, true)
	if err != nil {
		log.Error().Err(err).Msg("admin init failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "An error occurred. Please try again.",
		})
		return
	}

	log.Info().Str("username", admin.Username).Msg("default admin created")
	c.JSON(http.StatusCreated, gin.H{
		"status":        "ok",
		"message":       "Admin user created.",
		"admin_user_id": admin.ID,
	})
}
