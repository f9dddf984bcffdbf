package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/axialy/axialy-server/src/database"
)

func unreachableProvider() *database.Provider {
	// Port 1 refuses connections immediately.
	return database.NewProvider(database.Settings{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "nobody",
		Password: "nothing",
		AdminDB:  "axialy_admin",
		UIDB:     "axialy_ui",
	})
}

// TestHandleHealth_Unreachable reports each logical database by name
// when nothing answers.
func TestHandleHealth_Unreachable(t *testing.T) {
	handler := NewHealthHandler(unreachableProvider())
	router := gin.New()
	router.GET("/health", handler.HandleHealth)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assertStatusCode(t, w, http.StatusServiceUnavailable)
	body := w.Body.String()
	if !strings.Contains(body, "axialy_admin") || !strings.Contains(body, "axialy_ui") {
		t.Errorf("expected both databases in the report: %s", body)
	}
	if !strings.Contains(body, `"status":"unhealthy"`) {
		t.Errorf("expected unhealthy status: %s", body)
	}
}

// TestHandleReady_Unreachable reports not ready
func TestHandleReady_Unreachable(t *testing.T) {
	handler := NewHealthHandler(unreachableProvider())
	router := gin.New()
	router.GET("/ready", handler.HandleReady)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assertStatusCode(t, w, http.StatusServiceUnavailable)
	if !strings.Contains(w.Body.String(), `"ready":false`) {
		t.Errorf("expected ready false: %s", w.Body.String())
	}
}
