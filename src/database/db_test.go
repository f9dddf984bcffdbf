package database

import (
	"context"
	"testing"
)

// TestBootstrapAdminSchema_Idempotent can run any number of times. The
// forward migrations hit existing columns on every run after the first
// and must swallow only that.
func TestBootstrapAdminSchema_Idempotent(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()

	// NewTestDB already bootstrapped once; do it twice more
	if err := bootstrapAdminSchema(ctx, tdb.Pool); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	if err := bootstrapAdminSchema(ctx, tdb.Pool); err != nil {
		t.Fatalf("third bootstrap failed: %v", err)
	}

	// The migrated columns are present and usable
	var count int
	err := tdb.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM admin_users WHERE last_login IS NOT NULL`).Scan(&count)
	if err != nil {
		t.Fatalf("expected last_login column to exist: %v", err)
	}
}

// TestEnsureUISchema_Idempotent can run any number of times
func TestEnsureUISchema_Idempotent(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()

	if err := EnsureUISchema(ctx, tdb.Pool); err != nil {
		t.Fatalf("repeated EnsureUISchema failed: %v", err)
	}

	var count int
	if err := tdb.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("expected documents table to exist: %v", err)
	}
}
