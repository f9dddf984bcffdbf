package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// pgDuplicateColumn is the Postgres error code raised by
// ALTER TABLE ... ADD COLUMN when the column already exists.
const pgDuplicateColumn = "42701"

// Settings describe how to reach the database server. The same
// credentials are used for every logical database.
type Settings struct {
	Host     string
	Port     int
	User     string
	Password string
	AdminDB  string
	UIDB     string
}

// Provider hands out one connection pool per logical database name and
// reuses it for the process lifetime.
type Provider struct {
	settings Settings

	mu    sync.Mutex
	pools map[string]*pgxpool.Pool

	adminBootstrapped bool
}

// NewProvider creates a provider. No connections are opened until the
// first ConnectionFor call.
func NewProvider(settings Settings) *Provider {
	return &Provider{
		settings: settings,
		pools:    make(map[string]*pgxpool.Pool),
	}
}

// Admin returns the pool for the admin database, bootstrapping its
// schema on first use.
func (p *Provider) Admin(ctx context.Context) (*pgxpool.Pool, error) {
	return p.ConnectionFor(ctx, p.settings.AdminDB)
}

// UI returns the pool for the UI database.
func (p *Provider) UI(ctx context.Context) (*pgxpool.Pool, error) {
	return p.ConnectionFor(ctx, p.settings.UIDB)
}

// ConnectionFor returns a cached pool for the named database, creating
// it on first use. The first connection to the admin database runs the
// idempotent admin schema bootstrap.
func (p *Provider) ConnectionFor(ctx context.Context, dbName string) (*pgxpool.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pool, ok := p.pools[dbName]; ok {
		return pool, nil
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		p.settings.User, p.settings.Password, p.settings.Host, p.settings.Port, dbName)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config for %s: %w", dbName, err)
	}

	config.MaxConns = 25
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool for %s: %w", dbName, err)
	}

	if dbName == p.settings.AdminDB && !p.adminBootstrapped {
		if err := bootstrapAdminSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to bootstrap admin schema: %w", err)
		}
		p.adminBootstrapped = true
	}

	p.pools[dbName] = pool
	return pool, nil
}

// Close closes every pool the provider created.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, pool := range p.pools {
		pool.Close()
		delete(p.pools, name)
	}
}

// Health pings the admin database.
func (p *Provider) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := p.Admin(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// DatabaseHealth is the ping result for one logical database.
type DatabaseHealth struct {
	Name    string
	Latency time.Duration
	Err     error
}

// HealthAll pings the admin and UI databases individually so the health
// surface can report which of the two is down.
func (p *Provider) HealthAll(ctx context.Context) []DatabaseHealth {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	results := make([]DatabaseHealth, 0, 2)
	for _, name := range []string{p.settings.AdminDB, p.settings.UIDB} {
		start := time.Now()
		pool, err := p.ConnectionFor(ctx, name)
		if err == nil {
			err = pool.Ping(ctx)
		}
		results = append(results, DatabaseHealth{
			Name:    name,
			Latency: time.Since(start),
			Err:     err,
		})
	}
	return results
}

// bootstrapAdminSchema creates the admin tables if absent and then
// applies best-effort forward migrations. It is not a migration
// framework: there is no version tracking and no rollback.
func bootstrapAdminSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS admin_users (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			email         TEXT NOT NULL DEFAULT '',
			is_active     BOOLEAN NOT NULL DEFAULT TRUE,
			is_sys_admin  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS admin_user_sessions (
			id            BIGSERIAL PRIMARY KEY,
			admin_user_id BIGINT NOT NULL REFERENCES admin_users(id) ON DELETE CASCADE,
			session_token CHAR(64) NOT NULL UNIQUE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at    TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	// Forward-compatible columns for older deployments. Only the
	// duplicate-column error is swallowed; anything else propagates.
	alters := []string{
		`ALTER TABLE admin_users ADD COLUMN last_login TIMESTAMPTZ`,
		`ALTER TABLE admin_users ADD COLUMN is_sys_admin BOOLEAN NOT NULL DEFAULT FALSE`,
		`ALTER TABLE admin_user_sessions ADD COLUMN created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()`,
	}
	for _, stmt := range alters {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgDuplicateColumn {
				continue
			}
			return err
		}
	}

	log.Info().Msg("admin schema bootstrapped")
	return nil
}

// EnsureUISchema applies the UI-side schema idempotently. It runs once
// at startup rather than inside the connection path.
func EnsureUISchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS default_organizations (
			id                        BIGSERIAL PRIMARY KEY,
			default_organization_name TEXT NOT NULL,
			created_at                TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ui_users (
			id                      BIGSERIAL PRIMARY KEY,
			username                TEXT NOT NULL,
			password_hash           TEXT NOT NULL,
			user_email              TEXT NOT NULL UNIQUE,
			default_organization_id BIGINT REFERENCES default_organizations(id),
			created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS email_verifications (
			id         BIGSERIAL PRIMARY KEY,
			email      TEXT NOT NULL,
			token      CHAR(64) NOT NULL UNIQUE,
			expires_at TIMESTAMPTZ NOT NULL,
			used       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id                BIGSERIAL PRIMARY KEY,
			doc_key           TEXT NOT NULL UNIQUE,
			doc_name          TEXT NOT NULL,
			active_version_id BIGINT,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS document_versions (
			id                  BIGSERIAL PRIMARY KEY,
			documents_id        BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			version_number      INTEGER NOT NULL,
			file_content        TEXT NOT NULL DEFAULT '',
			file_content_format TEXT NOT NULL DEFAULT 'md',
			file_pdf_data       BYTEA,
			file_docx_data      BYTEA,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS content_reviews (
			id         BIGSERIAL PRIMARY KEY,
			package_id BIGINT NOT NULL,
			email      TEXT NOT NULL,
			token      CHAR(64) NOT NULL UNIQUE,
			feedback   TEXT NOT NULL DEFAULT '',
			completed  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure UI schema: %w", err)
		}
	}
	return nil
}
