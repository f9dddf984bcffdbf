package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/axialy/axialy-server/src/middleware"
	"github.com/axialy/axialy-server/src/services"
)

// AccountHandler handles account creation with email verification,
// user login, and content review requests.
type AccountHandler struct {
	accountService *services.AccountService
	sessionSecret  string
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *services.AccountService, sessionSecret string) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		sessionSecret:  sessionSecret,
	}
}

// StartVerificationRequest represents a verification email request
type StartVerificationRequest struct {
	Email string `json:"email" binding:"required"`
}

// CompleteAccountRequest represents the final account creation step
type CompleteAccountRequest struct {
	Token    string `json:"token" binding:"required"`
	Username string `json:"username" binding:"required,min=1,max=255"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserLoginRequest represents a UI user login request
type UserLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SendReviewsRequest represents a content review email request
type SendReviewsRequest struct {
	Emails    []string `json:"emails" binding:"required"`
	PackageID int64    `json:"package_id" binding:"required"`
	Feedback  string   `json:"feedback"`
}

// HandleStartVerification handles POST /auth/start-verification
func (h *AccountHandler) HandleStartVerification(c *gin.Context) {
	var req StartVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Please provide an email address.",
		})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Please provide a valid email address.",
		})
		return
	}

	token, err := h.accountService.IssueVerificationToken(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{
				"status":  "error",
				"message": "An account with this email already exists.",
			})
			return
		}
		log.Error().Err(err).Msg("verification token issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "An error occurred. Please try again.",
		})
		return
	}

	if err := h.accountService.SendVerificationEmail(c.Request.Context(), email, token); err != nil {
		log.Error().Err(err).Str("email", email).Msg("verification email failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to send verification email. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Verification email sent. Please check your inbox.",
	})
}

// HandleVerifyEmail handles GET /auth/verify-email?token=
func (h *AccountHandler) HandleVerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Missing verification token.",
		})
		return
	}

	email, err := h.accountService.VerifyToken(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenUsed):
			c.JSON(http.StatusGone, gin.H{
				"status":  "error",
				"message": "This verification link has already been used.",
			})
		case errors.Is(err, services.ErrTokenExpired):
			c.JSON(http.StatusGone, gin.H{
				"status":  "error",
				"message": "This verification link has expired. Please request a new one.",
			})
		case errors.Is(err, services.ErrTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid verification token.",
			})
		default:
			log.Error().Err(err).Msg("token verification failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "An error occurred. Please try again.",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Email verified. You can now complete your account.",
		"email":   email,
	})
}

// HandleCompleteAccount handles POST /auth/complete-account
func (h *AccountHandler) HandleCompleteAccount(c *gin.Context) {
	var req CompleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Token, username, and a password of at least 8 characters are required.",
		})
		return
	}

	email, err := h.accountService.VerifyToken(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenUsed), errors.Is(err, services.ErrTokenExpired), errors.Is(err, services.ErrTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid or expired verification token.",
			})
		default:
			log.Error().Err(err).Msg("token verification failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "An error occurred. Please try again.",
			})
		}
		return
	}

	userID, err := h.accountService.CreateAccount(c.Request.Context(), email, req.Username, req.Password)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("account creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "An error occurred. Please try again.",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "ok",
		"message": "Account created. You can now log in.",
		"user_id": userID,
	})
}

// HandleLogin handles POST /auth/login - issues the UI session cookie
func (h *AccountHandler) HandleLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Please enter your email and password.",
		})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := h.accountService.AuthenticateUser(c.Request.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Invalid credentials.",
			})
			return
		}
		log.Error().Err(err).Msg("user login failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "An error occurred. Please try again.",
		})
		return
	}

	token, err := middleware.GenerateUserToken(h.sessionSecret, user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Msg("user token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "An error occurred. Please try again.",
		})
		return
	}

	middleware.SetUserSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"message":  "Login successful.",
		"user_id":  user.ID,
		"username": user.Username,
	})
}

// HandleSendReviews handles POST /reviews/send
func (h *AccountHandler) HandleSendReviews(c *gin.Context) {
	var req SendReviewsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Emails) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "At least one email address and a package id are required.",
		})
		return
	}
	if req.PackageID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid package id.",
		})
		return
	}
	if len(req.Feedback) > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Feedback must be 1000 characters or less.",
		})
		return
	}

	emails := make([]string, 0, len(req.Emails))
	for _, raw := range req.Emails {
		email := strings.TrimSpace(strings.ToLower(raw))
		if _, err := mail.ParseAddress(email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid email address: " + raw,
			})
			return
		}
		emails = append(emails, email)
	}

	failed, err := h.accountService.RequestContentReviews(c.Request.Context(), req.PackageID, emails, req.Feedback)
	if err != nil {
		log.Error().Err(err).Msg("content review request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "An error occurred. Please try again.",
		})
		return
	}

	if len(failed) > 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Failed to send to: " + strings.Join(failed, ", "),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
