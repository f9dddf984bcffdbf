package mock

import (
	"context"

	"github.com/axialy/axialy-server/src/models"
	"github.com/axialy/axialy-server/src/repositories"
)

// DocumentRepository is a mock implementation of repositories.DocumentRepository
type DocumentRepository struct {
	GetAllFunc                func(ctx context.Context) ([]*models.Document, error)
	CreateFunc                func(ctx context.Context, docKey, docName string) (int64, error)
	GetByIDFunc               func(ctx context.Context, docID int64) (*models.Document, error)
	GetByKeyFunc              func(ctx context.Context, docKey string) (*models.Document, error)
	UpdateFunc                func(ctx context.Context, docID int64, docKey, docName string) error
	DeleteFunc                func(ctx context.Context, docID int64) error
	CreateVersionFunc         func(ctx context.Context, docID int64, content string, format models.ContentFormat) (int64, error)
	GetVersionsFunc           func(ctx context.Context, docID int64) ([]*models.DocumentVersion, error)
	GetVersionByIDFunc        func(ctx context.Context, versionID int64) (*models.DocumentVersion, error)
	SetActivePointerFunc      func(ctx context.Context, docID, versionID int64) error
	ClearRenderedPayloadsFunc func(ctx context.Context, versionID int64) error
	StoreRenderedPayloadsFunc func(ctx context.Context, versionID int64, pdf, docx []byte) error

	Calls map[string][]interface{}
}

// NewDocumentRepository creates a new mock document repository
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		Calls: make(map[string][]interface{}),
	}
}

func (m *DocumentRepository) GetAll(ctx context.Context) ([]*models.Document, error) {
	m.Calls["GetAll"] = append(m.Calls["GetAll"], nil)
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}
	return nil, nil
}

func (m *DocumentRepository) Create(ctx context.Context, docKey, docName string) (int64, error) {
	m.Calls["Create"] = append(m.Calls["Create"], docKey)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, docKey, docName)
	}
	return 1, nil
}

func (m *DocumentRepository) GetByID(ctx context.Context, docID int64) (*models.Document, error) {
	m.Calls["GetByID"] = append(m.Calls["GetByID"], docID)
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, docID)
	}
	return nil, repositories.ErrNoRows
}

func (m *DocumentRepository) GetByKey(ctx context.Context, docKey string) (*models.Document, error) {
	m.Calls["GetByKey"] = append(m.Calls["GetByKey"], docKey)
	if m.GetByKeyFunc != nil {
		return m.GetByKeyFunc(ctx, docKey)
	}
	return nil, repositories.ErrNoRows
}

func (m *DocumentRepository) Update(ctx context.Context, docID int64, docKey, docName string) error {
	m.Calls["Update"] = append(m.Calls["Update"], docID)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, docID, docKey, docName)
	}
	return nil
}

func (m *DocumentRepository) Delete(ctx context.Context, docID int64) error {
	m.Calls["Delete"] = append(m.Calls["Delete"], docID)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, docID)
	}
	return nil
}

func (m *DocumentRepository) CreateVersion(ctx context.Context, docID int64, content string, format models.ContentFormat) (int64, error) {
	m.Calls["CreateVersion"] = append(m.Calls["CreateVersion"], docID)
	if m.CreateVersionFunc != nil {
		return m.CreateVersionFunc(ctx, docID, content, format)
	}
	return 1, nil
}

func (m *DocumentRepository) GetVersions(ctx context.Context, docID int64) ([]*models.DocumentVersion, error) {
	m.Calls["GetVersions"] = append(m.Calls["GetVersions"], docID)
	if m.GetVersionsFunc != nil {
		return m.GetVersionsFunc(ctx, docID)
	}
	return nil, nil
}

func (m *DocumentRepository) GetVersionByID(ctx context.Context, versionID int64) (*models.DocumentVersion, error) {
	m.Calls["GetVersionByID"] = append(m.Calls["GetVersionByID"], versionID)
	if m.GetVersionByIDFunc != nil {
		return m.GetVersionByIDFunc(ctx, versionID)
	}
	return nil, repositories.ErrNoRows
}

func (m *DocumentRepository) SetActivePointer(ctx context.Context, docID, versionID int64) error {
	m.Calls["SetActivePointer"] = append(m.Calls["SetActivePointer"], versionID)
	if m.SetActivePointerFunc != nil {
		return m.SetActivePointerFunc(ctx, docID, versionID)
	}
	return nil
}

func (m *DocumentRepository) ClearRenderedPayloads(ctx context.Context, versionID int64) error {
	m.Calls["ClearRenderedPayloads"] = append(m.Calls["ClearRenderedPayloads"], versionID)
	if m.ClearRenderedPayloadsFunc != nil {
		return m.ClearRenderedPayloadsFunc(ctx, versionID)
	}
	return nil
}

func (m *DocumentRepository) StoreRenderedPayloads(ctx context.Context, versionID int64, pdf, docx []byte) error {
	m.Calls["StoreRenderedPayloads"] = append(m.Calls["StoreRenderedPayloads"], versionID)
	if m.StoreRenderedPayloadsFunc != nil {
		return m.StoreRenderedPayloadsFunc(ctx, versionID, pdf, docx)
	}
	return nil
}

var _ repositories.DocumentRepository = (*DocumentRepository)(nil)
