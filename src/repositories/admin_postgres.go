package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/axialy/axialy-server/src/models"
)

// ErrNoRows is returned by lookups that find nothing.
var ErrNoRows = errors.New("no rows found")

// PostgresAdminRepository implements AdminRepository against the admin
// database pool.
type PostgresAdminRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAdminRepository creates an admin repository
func NewPostgresAdminRepository(pool *pgxpool.Pool) *PostgresAdminRepository {
	return &PostgresAdminRepository{pool: pool}
}

func (r *PostgresAdminRepository) CreateUser(ctx context.Context, user *models.AdminUser) error {
	query := `
		INSERT INTO admin_users (username, password_hash, email, is_active, is_sys_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.Username, user.PasswordHash, user.Email, user.IsActive, user.IsSysAdmin,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

func (r *PostgresAdminRepository) GetUserByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	query := `
		SELECT id, username, password_hash, email, is_active, is_sys_admin, last_login, created_at, updated_at
		FROM admin_users
		WHERE username = $1
		LIMIT 1
	`
	user := &models.AdminUser{}
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email,
		&user.IsActive, &user.IsSysAdmin, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}
	return user, nil
}

func (r *PostgresAdminRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}
	return count, nil
}

func (r *PostgresAdminRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE admin_users SET last_login = NOW(), updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to update last_login: %w", err)
	}
	return nil
}

// ReplaceSession removes any prior sessions for the user and inserts
// the new row in one transaction.
func (r *PostgresAdminRepository) ReplaceSession(ctx context.Context, session *models.AdminSession) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start session transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM admin_user_sessions WHERE admin_user_id = $1`, session.AdminUserID); err != nil {
		return fmt.Errorf("failed to delete prior sessions: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO admin_user_sessions (admin_user_id, session_token, created_at, expires_at)
		VALUES ($1, $2, NOW(), $3)
		RETURNING id, created_at
	`, session.AdminUserID, session.SessionToken, session.ExpiresAt).
		Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session transaction: %w", err)
	}
	return nil
}

func (r *PostgresAdminRepository) GetSessionByToken(ctx context.Context, token string) (*models.AdminSession, error) {
	query := `
		SELECT id, admin_user_id, session_token, created_at, expires_at
		FROM admin_user_sessions
		WHERE session_token = $1
		LIMIT 1
	`
	session := &models.AdminSession{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&session.ID, &session.AdminUserID, &session.SessionToken,
		&session.CreatedAt, &session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	return session, nil
}

func (r *PostgresAdminRepository) DeleteSessionByToken(ctx context.Context, token string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM admin_user_sessions WHERE session_token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ensure the implementation satisfies the interface
var _ AdminRepository = (*PostgresAdminRepository)(nil)
