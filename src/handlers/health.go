package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/axialy/axialy-server/src/database"
)

var startTime = time.Now()

// HealthHandler reports the status of the two logical databases
type HealthHandler struct {
	db *database.Provider
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.Provider) *HealthHandler {
	return &HealthHandler{
		db: db,
	}
}

// HandleHealth pings the admin and UI databases and reports each one
func (hh *HealthHandler) HandleHealth(c *gin.Context) {
	checks := hh.db.HealthAll(c.Request.Context())

	databases := gin.H{}
	healthy := true
	for _, check := range checks {
		if check.Err != nil {
			healthy = false
			databases[check.Name] = gin.H{
				"status": "disconnected",
				"error":  check.Err.Error(),
			}
			continue
		}
		databases[check.Name] = gin.H{
			"status":  "connected",
			"latency": check.Latency.String(),
		}
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"databases": databases,
		"uptime":    time.Since(startTime).String(),
	})
}

// HandleInfo returns service information
func (hh *HealthHandler) HandleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "axialy-server",
		"version": "1.0.0",
		"status":  "running",
		"uptime":  time.Since(startTime).String(),
	})
}

// HandleReady reports readiness only when both databases answer
func (hh *HealthHandler) HandleReady(c *gin.Context) {
	for _, check := range hh.db.HealthAll(c.Request.Context()) {
		if check.Err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready": false,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"ready": true,
	})
}
