package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/axialy/axialy-server/src/services"
)

// AdvisoryHandler forwards advisory API calls upstream. The upstream
// payload is returned verbatim.
type AdvisoryHandler struct {
	advisoryService *services.AdvisoryService
}

// NewAdvisoryHandler creates a new advisory proxy handler
func NewAdvisoryHandler(advisoryService *services.AdvisoryService) *AdvisoryHandler {
	return &AdvisoryHandler{advisoryService: advisoryService}
}

// HandleForward handles POST /api/advisory/*path
func (h *AdvisoryHandler) HandleForward(c *gin.Context) {
	if h.advisoryService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Advisory service is not configured.",
		})
		return
	}

	resp, err := h.advisoryService.Forward(c.Request.Context(), c.Param("path"), c.Request.Body)
	if err != nil {
		log.Error().Err(err).Str("path", c.Param("path")).Msg("advisory forward failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"status":  "error",
			"message": "An error occurred. Please try again.",
		})
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}
