package mock

import (
	"context"

	"github.com/axialy/axialy-server/src/models"
	"github.com/axialy/axialy-server/src/repositories"
)

// AccountRepository is a mock implementation of repositories.AccountRepository
type AccountRepository struct {
	EmailExistsFunc            func(ctx context.Context, email string) (bool, error)
	CreateVerificationFunc     func(ctx context.Context, v *models.EmailVerification) error
	GetVerificationByTokenFunc func(ctx context.Context, token string) (*models.EmailVerification, error)
	MarkVerificationUsedFunc   func(ctx context.Context, token string) error
	CreateAccountFunc          func(ctx context.Context, email, username, passwordHash string) (int64, error)
	GetUserByEmailFunc         func(ctx context.Context, email string) (*models.User, error)
	CreateContentReviewFunc    func(ctx context.Context, review *models.ContentReview) error

	Calls map[string][]interface{}
}

// NewAccountRepository creates a new mock account repository
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		Calls: make(map[string][]interface{}),
	}
}

func (m *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	m.Calls["EmailExists"] = append(m.Calls["EmailExists"], email)
	if m.EmailExistsFunc != nil {
		return m.EmailExistsFunc(ctx, email)
	}
	return false, nil
}

func (m *AccountRepository) CreateVerification(ctx context.Context, v *models.EmailVerification) error {
	m.Calls["CreateVerification"] = append(m.Calls["CreateVerification"], v)
	if m.CreateVerificationFunc != nil {
		return m.CreateVerificationFunc(ctx, v)
	}
	return nil
}

func (m *AccountRepository) GetVerificationByToken(ctx context.Context, token string) (*models.EmailVerification, error) {
	m.Calls["GetVerificationByToken"] = append(m.Calls["GetVerificationByToken"], token)
	if m.GetVerificationByTokenFunc != nil {
		return m.GetVerificationByTokenFunc(ctx, token)
	}
	return nil, repositories.ErrNoRows
}

func (m *AccountRepository) MarkVerificationUsed(ctx context.Context, token string) error {
	m.Calls["MarkVerificationUsed"] = append(m.Calls["MarkVerificationUsed"], token)
	if m.MarkVerificationUsedFunc != nil {
		return m.MarkVerificationUsedFunc(ctx, token)
	}
	return nil
}

func (m *AccountRepository) CreateAccount(ctx context.Context, email, username, passwordHash string) (int64, error) {
	m.Calls["CreateAccount"] = append(m.Calls["CreateAccount"], email)
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, email, username, passwordHash)
	}
	return 1, nil
}

func (m *AccountRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.Calls["GetUserByEmail"] = append(m.Calls["GetUserByEmail"], email)
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	return nil, repositories.ErrNoRows
}

func (m *AccountRepository) CreateContentReview(ctx context.Context, review *models.ContentReview) error {
	m.Calls["CreateContentReview"] = append(m.Calls["CreateContentReview"], review)
	if m.CreateContentReviewFunc != nil {
		return m.CreateContentReviewFunc(ctx, review)
	}
	return nil
}

var _ repositories.AccountRepository = (*AccountRepository)(nil)
