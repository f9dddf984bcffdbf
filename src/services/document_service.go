package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/axialy/axialy-server/src/models"
	"github.com/axialy/axialy-server/src/repositories"
)

// DocumentService manages documents and their versions. A document has
// at most one active version, and only the active version may carry
// rendered PDF/DOCX payloads.
type DocumentService struct {
	repo repositories.DocumentRepository
}

// NewDocumentService creates a document service backed by the UI database
func NewDocumentService(pool *pgxpool.Pool) *DocumentService {
	return &DocumentService{repo: repositories.NewPostgresDocumentRepository(pool)}
}

// NewDocumentServiceWithRepo creates a document service with an
// explicit repository (for testing)
func NewDocumentServiceWithRepo(repo repositories.DocumentRepository) *DocumentService {
	return &DocumentService{repo: repo}
}

// GetAllDocuments lists documents with their active version numbers
func (s *DocumentService) GetAllDocuments(ctx context.Context) ([]*models.Document, error) {
	return s.repo.GetAll(ctx)
}

// CreateDocument creates a new document entry with no versions
func (s *DocumentService) CreateDocument(ctx context.Context, docKey, docName string) (int64, error) {
	return s.repo.Create(ctx, docKey, docName)
}

// GetDocumentByID fetches a single document
func (s *DocumentService) GetDocumentByID(ctx context.Context, docID int64) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// GetDocumentByKey fetches a document by its key
func (s *DocumentService) GetDocumentByKey(ctx context.Context, docKey string) (*models.Document, error) {
	doc, err := s.repo.GetByKey(ctx, docKey)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// UpdateDocument changes a document's key or name; versions are untouched
func (s *DocumentService) UpdateDocument(ctx context.Context, docID int64, docKey, docName string) error {
	err := s.repo.Update(ctx, docID, docKey, docName)
	if errors.Is(err, repositories.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// DeleteDocument removes a document and, by cascade, all its versions
func (s *DocumentService) DeleteDocument(ctx context.Context, docID int64) error {
	err := s.repo.Delete(ctx, docID)
	if errors.Is(err, repositories.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CreateVersion adds the next version for a document without making it
// active.
func (s *DocumentService) CreateVersion(ctx context.Context, docID int64, content string, format models.ContentFormat) (int64, error) {
	if _, err := s.GetDocumentByID(ctx, docID); err != nil {
		return 0, err
	}
	return s.repo.CreateVersion(ctx, docID, content, format)
}

// GetVersions lists a document's versions, newest first
func (s *DocumentService) GetVersions(ctx context.Context, docID int64) ([]*models.DocumentVersion, error) {
	return s.repo.GetVersions(ctx, docID)
}

// GetVersionByID fetches a single version
func (s *DocumentService) GetVersionByID(ctx context.Context, versionID int64) (*models.DocumentVersion, error) {
	v, err := s.repo.GetVersionByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// SetActiveVersion points the document at the given version. When the
// previous active version differs, its rendered PDF/DOCX payloads are
// cleared so only the active version ever holds them.
func (s *DocumentService) SetActiveVersion(ctx context.Context, docID, versionID int64) error {
	doc, err := s.GetDocumentByID(ctx, docID)
	if err != nil {
		return err
	}

	version, err := s.GetVersionByID(ctx, versionID)
	if err != nil {
		return err
	}
	if version.DocumentID != docID {
		return ErrNotFound
	}

	oldActiveID := doc.ActiveVersionID

	if err := s.repo.SetActivePointer(ctx, docID, versionID); err != nil {
		return err
	}

	if oldActiveID != nil && *oldActiveID != versionID {
		if err := s.repo.ClearRenderedPayloads(ctx, *oldActiveID); err != nil {
			return err
		}
	}
	return nil
}

// StoreRenderedPayload writes rendered PDF/DOCX data for a version,
// refusing unless the version is its document's current active version.
func (s *DocumentService) StoreRenderedPayload(ctx context.Context, versionID int64, pdf, docx []byte) error {
	version, err := s.GetVersionByID(ctx, versionID)
	if err != nil {
		return err
	}

	doc, err := s.GetDocumentByID(ctx, version.DocumentID)
	if err != nil {
		return err
	}
	if doc.ActiveVersionID == nil || *doc.ActiveVersionID != versionID {
		return ErrVersionNotActive
	}

	return s.repo.StoreRenderedPayloads(ctx, versionID, pdf, docx)
}
