package mock

import (
	"context"

	"github.com/axialy/axialy-server/src/models"
	"github.com/axialy/axialy-server/src/repositories"
)

// AdminRepository is a mock implementation of repositories.AdminRepository
type AdminRepository struct {
	// Function stubs that can be overridden in tests
	CreateUserFunc           func(ctx context.Context, user *models.AdminUser) error
	GetUserByUsernameFunc    func(ctx context.Context, username string) (*models.AdminUser, error)
	CountUsersFunc           func(ctx context.Context) (int, error)
	UpdateLastLoginFunc      func(ctx context.Context, userID int64) error
	ReplaceSessionFunc       func(ctx context.Context, session *models.AdminSession) error
	GetSessionByTokenFunc    func(ctx context.Context, token string) (*models.AdminSession, error)
	DeleteSessionByTokenFunc func(ctx context.Context, token string) error

	// Call tracking
	Calls map[string][]interface{}
}

// NewAdminRepository creates a new mock admin repository
func NewAdminRepository() *AdminRepository {
	return &AdminRepository{
		Calls: make(map[string][]interface{}),
	}
}

func (m *AdminRepository) CreateUser(ctx context.Context, user *models.AdminUser) error {
	m.Calls["CreateUser"] = append(m.Calls["CreateUser"], user)
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, user)
	}
	return nil
}

func (m *AdminRepository) GetUserByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	m.Calls["GetUserByUsername"] = append(m.Calls["GetUserByUsername"], username)
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(ctx, username)
	}
	return nil, repositories.ErrNoRows
}

func (m *AdminRepository) CountUsers(ctx context.Context) (int, error) {
	m.Calls["CountUsers"] = append(m.Calls["CountUsers"], nil)
	if m.CountUsersFunc != nil {
		return m.CountUsersFunc(ctx)
	}
	return 0, nil
}

func (m *AdminRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	m.Calls["UpdateLastLogin"] = append(m.Calls["UpdateLastLogin"], userID)
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, userID)
	}
	return nil
}

func (m *AdminRepository) ReplaceSession(ctx context.Context, session *models.AdminSession) error {
	m.Calls["ReplaceSession"] = append(m.Calls["ReplaceSession"], session)
	if m.ReplaceSessionFunc != nil {
		return m.ReplaceSessionFunc(ctx, session)
	}
	return nil
}

func (m *AdminRepository) GetSessionByToken(ctx context.Context, token string) (*models.AdminSession, error) {
	m.Calls["GetSessionByToken"] = append(m.Calls["GetSessionByToken"], token)
	if m.GetSessionByTokenFunc != nil {
		return m.GetSessionByTokenFunc(ctx, token)
	}
	return nil, repositories.ErrNoRows
}

func (m *AdminRepository) DeleteSessionByToken(ctx context.Context, token string) error {
	m.Calls["DeleteSessionByToken"] = append(m.Calls["DeleteSessionByToken"], token)
	if m.DeleteSessionByTokenFunc != nil {
		return m.DeleteSessionByTokenFunc(ctx, token)
	}
	return nil
}

// Ensure AdminRepository implements the interface
var _ repositories.AdminRepository = (*AdminRepository)(nil)
