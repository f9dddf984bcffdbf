package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/axialy/axialy-server/src/models"
)

// PostgresAccountRepository implements AccountRepository against the UI
// database pool.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountRepository creates an account repository
func NewPostgresAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

func (r *PostgresAccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ui_users WHERE user_email = $1`, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

func (r *PostgresAccountRepository) CreateVerification(ctx context.Context, v *models.EmailVerification) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO email_verifications (email, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, v.Email, v.Token, v.ExpiresAt).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepository) GetVerificationByToken(ctx context.Context, token string) (*models.EmailVerification, error) {
	query := `
		SELECT id, email, token, expires_at, used, created_at
		FROM email_verifications
		WHERE token = $1
		LIMIT 1
	`
	v := &models.EmailVerification{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&v.ID, &v.Email, &v.Token, &v.ExpiresAt, &v.Used, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}
	return v, nil
}

func (r *PostgresAccountRepository) MarkVerificationUsed(ctx context.Context, token string) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE email_verifications SET used = TRUE WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to mark verification used: %w", err)
	}
	return nil
}

// CreateAccount creates the default organization, the user row and
// marks the pending verification used. All-or-nothing: any failure
// rolls back and leaves no partial state.
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, email, username, passwordHash string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start account transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var orgID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO default_organizations (default_organization_name)
		VALUES ($1)
		RETURNING id
	`, email).Scan(&orgID)
	if err != nil {
		return 0, fmt.Errorf("failed to create default organization: %w", err)
	}

	var userID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO ui_users (username, password_hash, user_email, default_organization_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, username, passwordHash, email, orgID).Scan(&userID)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE email_verifications SET used = TRUE WHERE email = $1 AND used = FALSE`, email); err != nil {
		return 0, fmt.Errorf("failed to mark verification used: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit account transaction: %w", err)
	}
	return userID, nil
}

func (r *PostgresAccountRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, user_email, default_organization_id, created_at
		FROM ui_users
		WHERE user_email = $1
		LIMIT 1
	`
	user := &models.User{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email,
		&user.DefaultOrganizationID, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func (r *PostgresAccountRepository) CreateContentReview(ctx context.Context, review *models.ContentReview) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO content_reviews (package_id, email, token, feedback, completed)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, created_at
	`, review.PackageID, review.Email, review.Token, review.Feedback).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store content review: %w", err)
	}
	return nil
}

var _ AccountRepository = (*PostgresAccountRepository)(nil)
