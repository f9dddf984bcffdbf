package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/axialy/axialy-server/src/models"
	"github.com/axialy/axialy-server/src/repositories"
	"github.com/axialy/axialy-server/src/templates"
)

// VerificationLifetime is the validity window for an email
// verification token.
const VerificationLifetime = 24 * time.Hour

// AccountService handles UI account creation with email verification
type AccountService struct {
	repo       repositories.AccountRepository
	mailer     Mailer
	appBaseURL string
}

// NewAccountService creates an account service backed by the UI database
func NewAccountService(pool *pgxpool.Pool, mailer Mailer, appBaseURL string) *AccountService {
	return &AccountService{
		repo:       repositories.NewPostgresAccountRepository(pool),
		mailer:     mailer,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

// NewAccountServiceWithRepo creates an account service with an explicit
// repository (for testing)
func NewAccountServiceWithRepo(repo repositories.AccountRepository, mailer Mailer, appBaseURL string) *AccountService {
	return &AccountService{
		repo:       repo,
		mailer:     mailer,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

// EmailExists reports whether the email address already has an account
func (s *AccountService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.EmailExists(ctx, email)
}

// IssueVerificationToken creates and persists a 256-bit verification
// token for the email, valid for VerificationLifetime. Addresses that
// already have an account get ErrEmailExists.
func (s *AccountService) IssueVerificationToken(ctx context.Context, email string) (string, error) {
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrEmailExists
	}

	token, err := generateHexToken()
	if err != nil {
		return "", err
	}

	v := &models.EmailVerification{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().Add(VerificationLifetime),
	}
	if err := s.repo.CreateVerification(ctx, v); err != nil {
		return "", err
	}
	return token, nil
}

// VerificationURL builds the link embedded in verification emails
func (s *AccountService) VerificationURL(token string) string {
	return fmt.Sprintf("%s/auth/verify-email?token=%s", s.appBaseURL, token)
}

// SendVerificationEmail delivers the verification link to the address
func (s *AccountService) SendVerificationEmail(ctx context.Context, email, token string) error {
	link := s.VerificationURL(token)
	html, text := templates.RenderVerificationEmail(link)
	return s.mailer.Send(ctx, email, "Verify your email for Axialy", html, text)
}

// VerifyToken matches an unused, unexpired token, marks it used, and
// returns the email it was issued for.
func (s *AccountService) VerifyToken(ctx context.Context, token string) (string, error) {
	v, err := s.repo.GetVerificationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return "", ErrTokenInvalid
		}
		return "", err
	}
	if v.Used {
		return "", ErrTokenUsed
	}
	if time.Now().After(v.ExpiresAt) {
		return "", ErrTokenExpired
	}
	if err := s.repo.MarkVerificationUsed(ctx, token); err != nil {
		return "", err
	}
	return v.Email, nil
}

// CreateAccount creates a default organization and the user record in
// one transaction and marks the verification token used. The welcome
// email is best-effort: a send failure never fails account creation.
func (s *AccountService) CreateAccount(ctx context.Context, email, username, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.repo.CreateAccount(ctx, email, username, string(hash))
	if err != nil {
		return 0, err
	}

	html, text := templates.RenderWelcomeEmail(s.appBaseURL + "/login")
	if err := s.mailer.Send(ctx, email, "Your Axialy account is ready!", html, text); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("welcome email failed")
	}
	return userID, nil
}

// AuthenticateUser verifies a UI user's credentials
func (s *AccountService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// RequestContentReviews persists a review row and sends a review
// request email for each address. Failed addresses are collected, not
// retried.
func (s *AccountService) RequestContentReviews(ctx context.Context, packageID int64, emails []string, feedback string) (failed []string, err error) {
	for _, email := range emails {
		token, tokenErr := generateHexToken()
		if tokenErr != nil {
			return nil, tokenErr
		}

		review := &models.ContentReview{
			PackageID: packageID,
			Email:     email,
			Token:     token,
			Feedback:  feedback,
		}
		if dbErr := s.repo.CreateContentReview(ctx, review); dbErr != nil {
			log.Error().Err(dbErr).Str("email", email).Msg("content review insert failed")
			failed = append(failed, email)
			continue
		}

		link := fmt.Sprintf("%s/content-review?token=%s", s.appBaseURL, token)
		html, text := templates.RenderContentReviewEmail(link)
		if sendErr := s.mailer.Send(ctx, email, "Content Review Request", html, text); sendErr != nil {
			failed = append(failed, email)
		}
	}
	return failed, nil
}

// generateHexToken returns a 64-character hex token (256 bits)
func generateHexToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
