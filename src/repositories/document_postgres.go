package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/axialy/axialy-server/src/models"
)

// PostgresDocumentRepository implements DocumentRepository against the
// UI database pool.
type PostgresDocumentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDocumentRepository creates a document repository
func NewPostgresDocumentRepository(pool *pgxpool.Pool) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{pool: pool}
}

const documentColumns = `id, doc_key, doc_name, active_version_id, created_at, updated_at`

func scanDocument(row pgx.Row) (*models.Document, error) {
	doc := &models.Document{}
	err := row.Scan(&doc.ID, &doc.DocKey, &doc.DocName, &doc.ActiveVersionID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return doc, nil
}

func (r *PostgresDocumentRepository) GetAll(ctx context.Context) ([]*models.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.doc_key, d.doc_name, d.active_version_id, d.created_at, d.updated_at,
		       dv.version_number AS active_version_number
		FROM documents d
		LEFT JOIN document_versions dv ON dv.id = d.active_version_id
		ORDER BY d.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		if err := rows.Scan(&doc.ID, &doc.DocKey, &doc.DocName, &doc.ActiveVersionID,
			&doc.CreatedAt, &doc.UpdatedAt, &doc.ActiveVersionNumber); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *PostgresDocumentRepository) Create(ctx context.Context, docKey, docName string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO documents (doc_key, doc_name)
		VALUES ($1, $2)
		RETURNING id
	`, docKey, docName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create document: %w", err)
	}
	return id, nil
}

func (r *PostgresDocumentRepository) GetByID(ctx context.Context, docID int64) (*models.Document, error) {
	return scanDocument(r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, docID))
}

func (r *PostgresDocumentRepository) GetByKey(ctx context.Context, docKey string) (*models.Document, error) {
	return scanDocument(r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE doc_key = $1 LIMIT 1`, docKey))
}

func (r *PostgresDocumentRepository) Update(ctx context.Context, docID int64, docKey, docName string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents SET doc_key = $1, doc_name = $2, updated_at = NOW() WHERE id = $3
	`, docKey, docName, docID)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

// Delete removes the document; versions go with it via ON DELETE CASCADE.
func (r *PostgresDocumentRepository) Delete(ctx context.Context, docID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, docID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

// CreateVersion inserts the next version for a document. Creating a
// version does not make it active.
func (r *PostgresDocumentRepository) CreateVersion(ctx context.Context, docID int64, content string, format models.ContentFormat) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO document_versions (documents_id, version_number, file_content, file_content_format)
		VALUES ($1,
		        (SELECT COALESCE(MAX(version_number), 0) + 1 FROM document_versions WHERE documents_id = $1),
		        $2, $3)
		RETURNING id
	`, docID, content, string(format)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create document version: %w", err)
	}
	return id, nil
}

const versionColumns = `id, documents_id, version_number, file_content, file_content_format,
	file_pdf_data, file_docx_data, created_at, updated_at`

func scanVersion(row pgx.Row) (*models.DocumentVersion, error) {
	v := &models.DocumentVersion{}
	var format string
	err := row.Scan(&v.ID, &v.DocumentID, &v.VersionNumber, &v.Content, &format,
		&v.PDFData, &v.DOCXData, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan document version: %w", err)
	}
	v.ContentFormat = models.ContentFormat(format)
	return v, nil
}

func (r *PostgresDocumentRepository) GetVersions(ctx context.Context, docID int64) ([]*models.DocumentVersion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+versionColumns+`
		FROM document_versions
		WHERE documents_id = $1
		ORDER BY created_at DESC
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.DocumentVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *PostgresDocumentRepository) GetVersionByID(ctx context.Context, versionID int64) (*models.DocumentVersion, error) {
	return scanVersion(r.pool.QueryRow(ctx,
		`SELECT `+versionColumns+` FROM document_versions WHERE id = $1`, versionID))
}

func (r *PostgresDocumentRepository) SetActivePointer(ctx context.Context, docID, versionID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents SET active_version_id = $1, updated_at = NOW() WHERE id = $2
	`, versionID, docID)
	if err != nil {
		return fmt.Errorf("failed to set active version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *PostgresDocumentRepository) ClearRenderedPayloads(ctx context.Context, versionID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE document_versions
		SET file_pdf_data = NULL, file_docx_data = NULL, updated_at = NOW()
		WHERE id = $1
	`, versionID)
	if err != nil {
		return fmt.Errorf("failed to clear rendered payloads: %w", err)
	}
	return nil
}

func (r *PostgresDocumentRepository) StoreRenderedPayloads(ctx context.Context, versionID int64, pdf, docx []byte) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE document_versions
		SET file_pdf_data = $1, file_docx_data = $2, updated_at = NOW()
		WHERE id = $3
	`, pdf, docx, versionID)
	if err != nil {
		return fmt.Errorf("failed to store rendered payloads: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

var _ DocumentRepository = (*PostgresDocumentRepository)(nil)
