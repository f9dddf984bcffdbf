package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/axialy/axialy-server/src/database"
	"github.com/axialy/axialy-server/src/models"
)

func createAdmin(t *testing.T, repo *PostgresAdminRepository, username string) *models.AdminUser {
	t.Helper()
	user := &models.AdminUser{
		Username:     username,
		PasswordHash: "$2a$04$notarealhashnotarealhashnotarealhash",
		Email:        username + "@axialy.ai",
		IsActive:     true,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

// TestAdminRepository_CreateAndLookup round-trips an admin user
func TestAdminRepository_CreateAndLookup(t *testing.T) {
	tdb := database.NewTestDB(t)
	repo := NewPostgresAdminRepository(tdb.Pool)
	ctx := context.Background()

	created := createAdmin(t, repo, "lookup_admin")
	if created.ID == 0 {
		t.Fatal("expected created admin to get an ID")
	}

	found, err := repo.GetUserByUsername(ctx, "lookup_admin")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("expected ID %d, got %d", created.ID, found.ID)
	}
	if !found.IsActive {
		t.Error("expected admin to be active")
	}
}

// TestAdminRepository_GetUserByUsername_Missing maps to ErrNoRows
func TestAdminRepository_GetUserByUsername_Missing(t *testing.T) {
	tdb := database.NewTestDB(t)
	repo := NewPostgresAdminRepository(tdb.Pool)

	_, err := repo.GetUserByUsername(context.Background(), "ghost")
	if !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

// TestAdminRepository_ReplaceSession leaves exactly one session row
// per admin no matter how many logins happen.
func TestAdminRepository_ReplaceSession(t *testing.T) {
	tdb := database.NewTestDB(t)
	repo := NewPostgresAdminRepository(tdb.Pool)
	ctx := context.Background()

	admin := createAdmin(t, repo, "session_admin")

	first := &models.AdminSession{
		AdminUserID:  admin.ID,
		SessionToken: strings.Repeat("a", 64),
		ExpiresAt:    time.Now().Add(4 * time.Hour),
	}
	if err := repo.ReplaceSession(ctx, first); err != nil {
		t.Fatalf("first ReplaceSession failed: %v", err)
	}

	second := &models.AdminSession{
		AdminUserID:  admin.ID,
		SessionToken: strings.Repeat("b", 64),
		ExpiresAt:    time.Now().Add(4 * time.Hour),
	}
	if err := repo.ReplaceSession(ctx, second); err != nil {
		t.Fatalf("second ReplaceSession failed: %v", err)
	}

	var count int
	err := tdb.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM admin_user_sessions WHERE admin_user_id = $1`, admin.ID).Scan(&count)
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one session row, got %d", count)
	}

	// The surviving row is the second token
	if _, err := repo.GetSessionByToken(ctx, first.SessionToken); !errors.Is(err, ErrNoRows) {
		t.Errorf("expected first session to be gone, got %v", err)
	}
	if _, err := repo.GetSessionByToken(ctx, second.SessionToken); err != nil {
		t.Errorf("expected second session to exist, got %v", err)
	}
}

// TestAdminRepository_DeleteSessionByToken removes the row
func TestAdminRepository_DeleteSessionByToken(t *testing.T) {
	tdb := database.NewTestDB(t)
	repo := NewPostgresAdminRepository(tdb.Pool)
	ctx := context.Background()

	admin := createAdmin(t, repo, "logout_admin")
	session := &models.AdminSession{
		AdminUserID:  admin.ID,
		SessionToken: strings.Repeat("c", 64),
		ExpiresAt:    time.Now().Add(4 * time.Hour),
	}
	if err := repo.ReplaceSession(ctx, session); err != nil {
		t.Fatalf("ReplaceSession failed: %v", err)
	}

	if err := repo.DeleteSessionByToken(ctx, session.SessionToken); err != nil {
		t.Fatalf("DeleteSessionByToken failed: %v", err)
	}
	if _, err := repo.GetSessionByToken(ctx, session.SessionToken); !errors.Is(err, ErrNoRows) {
		t.Errorf("expected session to be gone, got %v", err)
	}
}

// TestAdminRepository_CountUsers tracks inserts
func TestAdminRepository_CountUsers(t *testing.T) {
	tdb := database.NewTestDB(t)
	repo := NewPostgresAdminRepository(tdb.Pool)
	ctx := context.Background()

	before, err := repo.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}

	createAdmin(t, repo, "count_admin")

	after, err := repo.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	if after != before+1 {
		t.Errorf("expected count %d, got %d", before+1, after)
	}
}
