package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/axialy/axialy-server/src/database"
	"github.com/axialy/axialy-server/src/models"
)

// TestDocumentRepository_VersionNumbering assigns sequential version
// numbers per document.
func TestDocumentRepository_VersionNumbering(t *testing.T) {
	tdb := database.NewTestDB(t)
	repo := NewPostgresDocumentRepository(tdb.Pool)
	ctx := context.Background()

	docID, err := repo.Create(ctx, "numbering", "Numbering")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for want := 1; want <= 3; want++ {
		versionID, err := repo.CreateVersion(ctx, docID, "content", models.FormatMarkdown)
		if err != nil {
			t.Fatalf("CreateVersion failed: %v", err)
		}
		v, err := repo.GetVersionByID(ctx, versionID)
		if err != nil {
			t.Fatalf("GetVersionByID failed: %v", err)
		}
		if v.VersionNumber != want {
			t.Errorf("expected version number %d, got %d", want, v.VersionNumber)
		}
	}

	// A second document starts over at 1
	otherID, err := repo.Create(ctx, "numbering_other", "Other")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	versionID, err := repo.CreateVersion(ctx, otherID, "content", models.FormatMarkdown)
	if err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}
	v, err := repo.GetVersionByID(ctx, versionID)
	if err != nil {
		t.Fatalf("GetVersionByID failed: %v", err)
	}
	if v.VersionNumber != 1 {
		t.Errorf("expected version number 1 for new document, got %d", v.VersionNumber)
	}
}

// TestDocumentRepository_ActivePointerAndPayloads walks the full
// activation cycle: store payloads on the active version, switch, and
// verify the old version's payloads are cleared.
func TestDocumentRepository_ActivePointerAndPayloads(t *testing.T) {
	tdb := database.NewTestDB(t)
	repo := NewPostgresDocumentRepository(tdb.Pool)
	ctx := context.Background()

	docID, err := repo.Create(ctx, "payloads", "Payloads")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	v1, err := repo.CreateVersion(ctx, docID, "v1", models.FormatMarkdown)
	if err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}
	v2, err := repo.CreateVersion(ctx, docID, "v2", models.FormatMarkdown)
	if err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}

	if err := repo.SetActivePointer(ctx, docID, v1); err != nil {
		t.Fatalf("SetActivePointer failed: %v", err)
	}
	if err := repo.StoreRenderedPayloads(ctx, v1, []byte("pdf-bytes"), []byte("docx-bytes")); err != nil {
		t.Fatalf("StoreRenderedPayloads failed: %v", err)
	}

	doc, err := repo.GetByID(ctx, docID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if doc.ActiveVersionID == nil || *doc.ActiveVersionID != v1 {
		t.Fatalf("expected active version %d, got %v", v1, doc.ActiveVersionID)
	}

	// Switch to v2 and clear v1's payloads, as the service layer does
	if err := repo.SetActivePointer(ctx, docID, v2); err != nil {
		t.Fatalf("SetActivePointer failed: %v", err)
	}
	if err := repo.ClearRenderedPayloads(ctx, v1); err != nil {
		t.Fatalf("ClearRenderedPayloads failed: %v", err)
	}

	var pdf, docx []byte
	err = tdb.Pool.QueryRow(ctx,
		`SELECT file_pdf_data, file_docx_data FROM document_versions WHERE id = $1`, v1).Scan(&pdf, &docx)
	if err != nil {
		t.Fatalf("payload query failed: %v", err)
	}
	if pdf != nil || docx != nil {
		t.Errorf("expected cleared payloads on old version, got pdf=%v docx=%v", pdf, docx)
	}
}

// TestDocumentRepository_DeleteCascades removes versions with the
// document.
func TestDocumentRepository_DeleteCascades(t *testing.T) {
	tdb := database.NewTestDB(t)
	repo := NewPostgresDocumentRepository(tdb.Pool)
	ctx := context.Background()

	docID, err := repo.Create(ctx, "cascade", "Cascade")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	versionID, err := repo.CreateVersion(ctx, docID, "v1", models.FormatMarkdown)
	if err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}

	if err := repo.Delete(ctx, docID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := repo.GetByID(ctx, docID); !errors.Is(err, ErrNoRows) {
		t.Errorf("expected document to be gone, got %v", err)
	}
	if _, err := repo.GetVersionByID(ctx, versionID); !errors.Is(err, ErrNoRows) {
		t.Errorf("expected version to cascade away, got %v", err)
	}
}

// TestDocumentRepository_GetByKey_Missing maps to ErrNoRows
func TestDocumentRepository_GetByKey_Missing(t *testing.T) {
	tdb := database.NewTestDB(t)
	repo := NewPostgresDocumentRepository(tdb.Pool)

	_, err := repo.GetByKey(context.Background(), "missing")
	if !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}
