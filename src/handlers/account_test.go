package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/axialy/axialy-server/src/models"
	"github.com/axialy/axialy-server/src/repositories/mock"
	"github.com/axialy/axialy-server/src/services"
)

// nullMailer accepts everything silently
type nullMailer struct {
	failAll bool
	sent    int
}

func (m *nullMailer) Send(ctx context.Context, to, subject, htmlBody, altBody string) error {
	if m.failAll {
		return errors.New("mail down")
	}
	m.sent++
	return nil
}

func bcryptHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func accountRouter(repo *mock.AccountRepository, mailer services.Mailer) *gin.Engine {
	svc := services.NewAccountServiceWithRepo(repo, mailer, "https://app.axialy.ai")
	handler := NewAccountHandler(svc, "test-secret-at-least-32-characters!!")
	router := gin.New()
	router.POST("/auth/start-verification", handler.HandleStartVerification)
	router.GET("/auth/verify-email", handler.HandleVerifyEmail)
	router.POST("/auth/complete-account", handler.HandleCompleteAccount)
	router.POST("/auth/login", handler.HandleLogin)
	router.POST("/reviews/send", handler.HandleSendReviews)
	return router
}

// TestHandleStartVerification_InvalidEmail rejects malformed addresses
func TestHandleStartVerification_InvalidEmail(t *testing.T) {
	router := accountRouter(mock.NewAccountRepository(), &nullMailer{})

	w := postJSON(router, "/auth/start-verification", `{"email":"not-an-email"}`)
	assertStatusCode(t, w, http.StatusBadRequest)
	assertJSONMessage(t, w, "Please provide a valid email address.")
}

// TestHandleStartVerification_DuplicateEmail rejects existing accounts
func TestHandleStartVerification_DuplicateEmail(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.EmailExistsFunc = func(ctx context.Context, email string) (bool, error) {
		return true, nil
	}
	router := accountRouter(repo, &nullMailer{})

	w := postJSON(router, "/auth/start-verification", `{"email":"taken@example.com"}`)
	assertStatusCode(t, w, http.StatusConflict)
	assertJSONMessage(t, w, "An account with this email already exists.")
}

// TestHandleStartVerification_Success issues a token and sends the mail
func TestHandleStartVerification_Success(t *testing.T) {
	repo := mock.NewAccountRepository()
	mailer := &nullMailer{}
	router := accountRouter(repo, mailer)

	w := postJSON(router, "/auth/start-verification", `{"email":"New@Example.com"}`)
	assertStatusCode(t, w, http.StatusOK)

	if len(repo.Calls["CreateVerification"]) != 1 {
		t.Errorf("expected one verification row, got %d", len(repo.Calls["CreateVerification"]))
	}
	if mailer.sent != 1 {
		t.Errorf("expected one email sent, got %d", mailer.sent)
	}

	// The address is normalized before use
	v := repo.Calls["CreateVerification"][0].(*models.EmailVerification)
	if v.Email != "new@example.com" {
		t.Errorf("expected lowercased email, got %s", v.Email)
	}
}

// TestHandleVerifyEmail_Expired reports an expired link
func TestHandleVerifyEmail_Expired(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.GetVerificationByTokenFunc = func(ctx context.Context, token string) (*models.EmailVerification, error) {
		return &models.EmailVerification{
			Email:     "old@example.com",
			Token:     token,
			ExpiresAt: time.Now().Add(-time.Hour),
		}, nil
	}
	router := accountRouter(repo, &nullMailer{})

	req := httptest.NewRequest(http.MethodGet, "/auth/verify-email?token=sometoken", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertStatusCode(t, w, http.StatusGone)
	assertJSONMessage(t, w, "This verification link has expired. Please request a new one.")
}

// TestHandleCompleteAccount_Success creates the account from a valid
// token.
func TestHandleCompleteAccount_Success(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.GetVerificationByTokenFunc = func(ctx context.Context, token string) (*models.EmailVerification, error) {
		return &models.EmailVerification{
			Email:     "new@example.com",
			Token:     token,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil
	}
	repo.CreateAccountFunc = func(ctx context.Context, email, username, passwordHash string) (int64, error) {
		if email != "new@example.com" {
			t.Errorf("expected account for new@example.com, got %s", email)
		}
		return 11, nil
	}
	router := accountRouter(repo, &nullMailer{})

	w := postJSON(router, "/auth/complete-account",
		`{"token":"sometoken","username":"newuser","password":"password123"}`)
	assertStatusCode(t, w, http.StatusCreated)
}

// TestHandleCompleteAccount_ShortPassword fails validation
func TestHandleCompleteAccount_ShortPassword(t *testing.T) {
	router := accountRouter(mock.NewAccountRepository(), &nullMailer{})

	w := postJSON(router, "/auth/complete-account",
		`{"token":"sometoken","username":"newuser","password":"short"}`)
	assertStatusCode(t, w, http.StatusBadRequest)
}

// TestHandleUserLogin_SetsCookie issues the UI session cookie
func TestHandleUserLogin_SetsCookie(t *testing.T) {
	repo := mock.NewAccountRepository()
	repo.GetUserByEmailFunc = func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{ID: 11, Username: "user", Email: email, PasswordHash: bcryptHash(t, "password123")}, nil
	}
	router := accountRouter(repo, &nullMailer{})

	w := postJSON(router, "/auth/login", `{"email":"user@example.com","password":"password123"}`)
	assertStatusCode(t, w, http.StatusOK)
	if w.Header().Get("Set-Cookie") == "" {
		t.Error("expected UI session cookie to be set")
	}
}

// TestHandleSendReviews_Validation rejects bad input up front
func TestHandleSendReviews_Validation(t *testing.T) {
	router := accountRouter(mock.NewAccountRepository(), &nullMailer{})

	w := postJSON(router, "/reviews/send", `{"emails":[],"package_id":1}`)
	assertStatusCode(t, w, http.StatusBadRequest)

	w = postJSON(router, "/reviews/send", `{"emails":["a@example.com"],"package_id":-1}`)
	assertStatusCode(t, w, http.StatusBadRequest)

	w = postJSON(router, "/reviews/send", `{"emails":["not-an-email"],"package_id":1}`)
	assertStatusCode(t, w, http.StatusBadRequest)
}

// TestHandleSendReviews_ReportsFailures lists undeliverable addresses
func TestHandleSendReviews_ReportsFailures(t *testing.T) {
	router := accountRouter(mock.NewAccountRepository(), &nullMailer{failAll: true})

	w := postJSON(router, "/reviews/send", `{"emails":["a@example.com"],"package_id":1,"feedback":"check this"}`)
	assertStatusCode(t, w, http.StatusOK)
	assertJSONMessage(t, w, "Failed to send to: a@example.com")
}
