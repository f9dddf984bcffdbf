package repositories

import (
	"context"

	"github.com/axialy/axialy-server/src/models"
)

// AdminRepository defines data access for admin users and their
// server-side sessions.
type AdminRepository interface {
	CreateUser(ctx context.Context, user *models.AdminUser) error
	GetUserByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	CountUsers(ctx context.Context) (int, error)
	UpdateLastLogin(ctx context.Context, userID int64) error

	// ReplaceSession deletes every prior session for the user and
	// inserts the new one (single active session per admin).
	ReplaceSession(ctx context.Context, session *models.AdminSession) error
	GetSessionByToken(ctx context.Context, token string) (*models.AdminSession, error)
	DeleteSessionByToken(ctx context.Context, token string) error
}

// AccountRepository defines data access for UI accounts and email
// verification tokens.
type AccountRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateVerification(ctx context.Context, v *models.EmailVerification) error
	GetVerificationByToken(ctx context.Context, token string) (*models.EmailVerification, error)
	MarkVerificationUsed(ctx context.Context, token string) error

	// CreateAccount creates the default organization, the user row and
	// marks the verification used inside a single transaction.
	CreateAccount(ctx context.Context, email, username, passwordHash string) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateContentReview(ctx context.Context, review *models.ContentReview) error
}

// DocumentRepository defines data access for documents and their
// versions.
type DocumentRepository interface {
	GetAll(ctx context.Context) ([]*models.Document, error)
	Create(ctx context.Context, docKey, docName string) (int64, error)
	GetByID(ctx context.Context, docID int64) (*models.Document, error)
	GetByKey(ctx context.Context, docKey string) (*models.Document, error)
	Update(ctx context.Context, docID int64, docKey, docName string) error
	Delete(ctx context.Context, docID int64) error

	CreateVersion(ctx context.Context, docID int64, content string, format models.ContentFormat) (int64, error)
	GetVersions(ctx context.Context, docID int64) ([]*models.DocumentVersion, error)
	GetVersionByID(ctx context.Context, versionID int64) (*models.DocumentVersion, error)
	SetActivePointer(ctx context.Context, docID, versionID int64) error
	ClearRenderedPayloads(ctx context.Context, versionID int64) error
	StoreRenderedPayloads(ctx context.Context, versionID int64, pdf, docx []byte) error
}
