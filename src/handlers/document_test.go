package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/axialy/axialy-server/src/models"
	"github.com/axialy/axialy-server/src/repositories/mock"
	"github.com/axialy/axialy-server/src/services"
)

func documentRouter(repo *mock.DocumentRepository) *gin.Engine {
	handler := NewDocumentHandler(services.NewDocumentServiceWithRepo(repo))
	router := gin.New()
	router.GET("/view/:doc_key", handler.HandleView)
	router.POST("/documents/:id/active", handler.HandleSetActive)
	router.PUT("/versions/:version_id/rendered", handler.HandleStoreRendered)
	return router
}

func repoWithActiveDoc(format models.ContentFormat, content string) *mock.DocumentRepository {
	active := int64(5)
	repo := mock.NewDocumentRepository()
	repo.GetByKeyFunc = func(ctx context.Context, docKey string) (*models.Document, error) {
		return &models.Document{ID: 1, DocKey: docKey, DocName: "Terms", ActiveVersionID: &active}, nil
	}
	repo.GetVersionByIDFunc = func(ctx context.Context, versionID int64) (*models.DocumentVersion, error) {
		return &models.DocumentVersion{
			ID:            versionID,
			DocumentID:    1,
			Content:       content,
			ContentFormat: format,
		}, nil
	}
	return repo
}

// TestHandleView_HTML serves HTML content verbatim
func TestHandleView_HTML(t *testing.T) {
	router := documentRouter(repoWithActiveDoc(models.FormatHTML, "<h1>Terms</h1>"))

	req := httptest.NewRequest(http.MethodGet, "/view/terms", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertStatusCode(t, w, http.StatusOK)
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("expected text/html, got %s", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != "<h1>Terms</h1>" {
		t.Errorf("expected verbatim HTML, got %q", w.Body.String())
	}
}

// TestHandleView_Markdown escapes and wraps markdown in a pre block
func TestHandleView_Markdown(t *testing.T) {
	router := documentRouter(repoWithActiveDoc(models.FormatMarkdown, "# Terms <&>"))

	req := httptest.NewRequest(http.MethodGet, "/view/terms", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertStatusCode(t, w, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "<pre>") {
		t.Errorf("expected preformatted body, got %q", body)
	}
	if !strings.Contains(body, "# Terms &lt;&amp;&gt;") {
		t.Errorf("expected escaped content, got %q", body)
	}
}

// TestHandleView_JSON serves the JSON content type
func TestHandleView_JSON(t *testing.T) {
	router := documentRouter(repoWithActiveDoc(models.FormatJSON, `{"a":1}`))

	req := httptest.NewRequest(http.MethodGet, "/view/config", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertStatusCode(t, w, http.StatusOK)
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected application/json, got %s", w.Header().Get("Content-Type"))
	}
}

// TestHandleView_NoActiveVersion is a 404
func TestHandleView_NoActiveVersion(t *testing.T) {
	repo := mock.NewDocumentRepository()
	repo.GetByKeyFunc = func(ctx context.Context, docKey string) (*models.Document, error) {
		return &models.Document{ID: 1, DocKey: docKey, DocName: "Draft"}, nil
	}
	router := documentRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/view/draft", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertStatusCode(t, w, http.StatusNotFound)
}

// TestHandleView_UnknownKey is a 404
func TestHandleView_UnknownKey(t *testing.T) {
	router := documentRouter(mock.NewDocumentRepository())

	req := httptest.NewRequest(http.MethodGet, "/view/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertStatusCode(t, w, http.StatusNotFound)
}

// TestHandleStoreRendered_NotActive maps the domain error to 409
func TestHandleStoreRendered_NotActive(t *testing.T) {
	active := int64(5)
	repo := mock.NewDocumentRepository()
	repo.GetVersionByIDFunc = func(ctx context.Context, versionID int64) (*models.DocumentVersion, error) {
		return &models.DocumentVersion{ID: versionID, DocumentID: 1}, nil
	}
	repo.GetByIDFunc = func(ctx context.Context, docID int64) (*models.Document, error) {
		return &models.Document{ID: docID, ActiveVersionID: &active}, nil
	}
	router := documentRouter(repo)

	req := httptest.NewRequest(http.MethodPut, "/versions/6/rendered",
		strings.NewReader(`{"file_pdf_data":"cGRm"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertStatusCode(t, w, http.StatusConflict)
	assertJSONMessage(t, w, "Rendered payloads may only be stored on the active version.")
}

// TestHandleSetActive_BadID validates the path parameter
func TestHandleSetActive_BadID(t *testing.T) {
	router := documentRouter(mock.NewDocumentRepository())

	w := postJSON(router, "/documents/abc/active", `{"version_id":5}`)
	assertStatusCode(t, w, http.StatusBadRequest)
}
