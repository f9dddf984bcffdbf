package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/axialy/axialy-server/src/models"
	"github.com/axialy/axialy-server/src/repositories/mock"
)

// recordingMailer captures sent messages and optionally fails
type recordingMailer struct {
	sent    []string
	failAll bool
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, htmlBody, altBody string) error {
	if m.failAll {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, to)
	return nil
}

// TestIssueVerificationToken verifies the token shape and the 24 hour
// expiry window.
func TestIssueVerificationToken(t *testing.T) {
	repo := mock.NewAccountRepository()
	svc := NewAccountServiceWithRepo(repo, &recordingMailer{}, "https://app.axialy.ai")

	token, err := svc.IssueVerificationToken(context.Background(), "new@example.com")
	require.NoError(t, err)
	require.Len(t, token, 64)

	require.Len(t, repo.Calls["CreateVerification"], 1)
	v := repo.Calls["CreateVerification"][0].(*models.EmailVerification)
	remaining := time.Until(v.ExpiresAt)
	require.Greater(t, remaining, VerificationLifetime-time.Minute)
	require.LessOrEqual(t, remaining, VerificationLifetime)
}

// TestIssueVerificationToken_DuplicateEmail refuses addresses that
// already have an account.
func TestIssueVerificationToken_DuplicateEmail(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.EmailExistsFunc = func(ctx context.Context, email string) (bool, error) {
		return true, nil
	}
	svc := NewAccountServiceWithRepo(repo, &recordingMailer{}, "https://app.axialy.ai")

	_, err := svc.IssueVerificationToken(context.Background(), "taken@example.com")
	require.ErrorIs(t, err, ErrEmailExists)
	require.Empty(t, repo.Calls["CreateVerification"])
}

// TestVerifyToken_Expired verifies a token older than its window is
// rejected and not marked used.
func TestVerifyToken_Expired(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.GetVerificationByTokenFunc = func(ctx context.Context, token string) (*models.EmailVerification, error) {
		return &models.EmailVerification{
			Email:     "old@example.com",
			Token:     token,
			ExpiresAt: time.Now().Add(-time.Hour),
		}, nil
	}
	svc := NewAccountServiceWithRepo(repo, &recordingMailer{}, "https://app.axialy.ai")

	_, err := svc.VerifyToken(context.Background(), strings.Repeat("a", 64))
	require.ErrorIs(t, err, ErrTokenExpired)
	require.Empty(t, repo.Calls["MarkVerificationUsed"])
}

// TestVerifyToken_Used verifies single use
func TestVerifyToken_Used(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.GetVerificationByTokenFunc = func(ctx context.Context, token string) (*models.EmailVerification, error) {
		return &models.EmailVerification{
			Email:     "done@example.com",
			Token:     token,
			ExpiresAt: time.Now().Add(time.Hour),
			Used:      true,
		}, nil
	}
	svc := NewAccountServiceWithRepo(repo, &recordingMailer{}, "https://app.axialy.ai")

	_, err := svc.VerifyToken(context.Background(), strings.Repeat("b", 64))
	require.ErrorIs(t, err, ErrTokenUsed)
}

// TestVerifyToken_Unknown verifies an unknown token is invalid
func TestVerifyToken_Unknown(t *testing.T) {
	repo := mock.NewAccountRepository()
	svc := NewAccountServiceWithRepo(repo, &recordingMailer{}, "https://app.axialy.ai")

	_, err := svc.VerifyToken(context.Background(), "nope")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

// TestVerifyToken_Success marks the token used and returns its email
func TestVerifyToken_Success(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.GetVerificationByTokenFunc = func(ctx context.Context, token string) (*models.EmailVerification, error) {
		return &models.EmailVerification{
			Email:     "ok@example.com",
			Token:     token,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil
	}
	svc := NewAccountServiceWithRepo(repo, &recordingMailer{}, "https://app.axialy.ai")

	email, err := svc.VerifyToken(context.Background(), strings.Repeat("c", 64))
	require.NoError(t, err)
	require.Equal(t, "ok@example.com", email)
	require.Len(t, repo.Calls["MarkVerificationUsed"], 1)
}

// TestCreateAccount_WelcomeEmailFailure verifies a failed welcome email
// never fails account creation.
func TestCreateAccount_WelcomeEmailFailure(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.CreateAccountFunc = func(ctx context.Context, email, username, passwordHash string) (int64, error) {
		return 42, nil
	}
	svc := NewAccountServiceWithRepo(repo, &recordingMailer{failAll: true}, "https://app.axialy.ai")

	userID, err := svc.CreateAccount(context.Background(), "new@example.com", "newuser", "password123")
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

// TestCreateAccount_RepoFailure verifies a transaction failure leaves
// nothing behind and sends no email.
func TestCreateAccount_RepoFailure(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.CreateAccountFunc = func(ctx context.Context, email, username, passwordHash string) (int64, error) {
		return 0, errors.New("tx aborted")
	}
	mailer := &recordingMailer{}
	svc := NewAccountServiceWithRepo(repo, mailer, "https://app.axialy.ai")

	_, err := svc.CreateAccount(context.Background(), "new@example.com", "newuser", "password123")
	require.Error(t, err)
	require.Empty(t, mailer.sent)
}

// TestVerificationURL builds the link under the configured base URL
func TestVerificationURL(t *testing.T) {
	svc := NewAccountServiceWithRepo(mock.NewAccountRepository(), &recordingMailer{}, "https://app.axialy.ai/")

	url := svc.VerificationURL("abc123")
	require.Equal(t, "https://app.axialy.ai/auth/verify-email?token=abc123", url)
}

// TestRequestContentReviews_CollectsFailures verifies failed addresses
// are reported without aborting the rest.
func TestRequestContentReviews_CollectsFailures(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.CreateContentReviewFunc = func(ctx context.Context, review *models.ContentReview) error {
		if review.Email == "bad@example.com" {
			return errors.New("insert failed")
		}
		return nil
	}
	mailer := &recordingMailer{}
	svc := NewAccountServiceWithRepo(repo, mailer, "https://app.axialy.ai")

	failed, err := svc.RequestContentReviews(context.Background(), 9,
		[]string{"one@example.com", "bad@example.com", "two@example.com"}, "please review")
	require.NoError(t, err)
	require.Equal(t, []string{"bad@example.com"}, failed)
	require.Equal(t, []string{"one@example.com", "two@example.com"}, mailer.sent)
}

// TestAuthenticateUser_WrongPassword verifies invalid credentials
func TestAuthenticateUser_WrongPassword(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.GetUserByEmailFunc = func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{
			ID:           5,
			Email:        email,
			PasswordHash: hashPassword(t, "right"),
		}, nil
	}
	svc := NewAccountServiceWithRepo(repo, &recordingMailer{}, "https://app.axialy.ai")

	_, err := svc.AuthenticateUser(context.Background(), "user@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AuthenticateUser(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
