package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/axialy/axialy-server/src/models"
	"github.com/axialy/axialy-server/src/repositories"
)

// SessionLifetime is how long an admin session stays valid. Expiry is
// enforced by ValidateSession, not by a background reaper.
const SessionLifetime = 4 * time.Hour

// AdminService handles admin accounts and their server-side sessions
type AdminService struct {
	repo repositories.AdminRepository
}

// NewAdminService creates an admin service backed by the admin database
func NewAdminService(pool *pgxpool.Pool) *AdminService {
	return &AdminService{repo: repositories.NewPostgresAdminRepository(pool)}
}

// NewAdminServiceWithRepo creates an admin service with an explicit
// repository (for testing)
func NewAdminServiceWithRepo(repo repositories.AdminRepository) *AdminService {
	return &AdminService{repo: repo}
}

// CreateAdminUser creates a new admin user with a bcrypt-hashed password
func (as *AdminService) CreateAdminUser(ctx context.Context, username, password, email string, sysAdmin bool) (*models.AdminUser, error) {
	if len(username) < 1 || len(username) > 255 {
		return nil, errors.New("username must be between 1 and 255 characters")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		IsActive:     true,
		IsSysAdmin:   sysAdmin,
	}
	if err := as.repo.CreateUser(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// HasAdmins reports whether any admin users exist
func (as *AdminService) HasAdmins(ctx context.Context) (bool, error) {
	count, err := as.repo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UsernameExists reports whether an admin with the username exists
func (as *AdminService) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := as.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Authenticate verifies username and password. Unknown usernames and
// wrong passwords both return ErrInvalidCredentials; a disabled account
// returns ErrAccountDisabled.
func (as *AdminService) Authenticate(ctx context.Context, username, password string) (*models.AdminUser, error) {
	admin, err := as.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !admin.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := as.repo.UpdateLastLogin(ctx, admin.ID); err != nil {
		log.Warn().Err(err).Str("username", admin.Username).Msg("failed to update last_login")
	}
	return admin, nil
}

// CreateSession invalidates every prior session for the admin and
// issues a fresh 256-bit token valid for SessionLifetime.
func (as *AdminService) CreateSession(ctx context.Context, adminID int64) (*models.AdminSession, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.AdminSession{
		AdminUserID:  adminID,
		SessionToken: token,
		ExpiresAt:    time.Now().Add(SessionLifetime),
	}
	if err := as.repo.ReplaceSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ValidateSession resolves a session token to its session row,
// enforcing expiry.
func (as *AdminService) ValidateSession(ctx context.Context, token string) (*models.AdminSession, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	session, err := as.repo.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// DestroySession removes the session row for the token
func (as *AdminService) DestroySession(ctx context.Context, token string) error {
	return as.repo.DeleteSessionByToken(ctx, token)
}

// generateSessionToken returns a 64-character hex token (256 bits)
func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
