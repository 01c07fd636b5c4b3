package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/statement-extraction-service/internal/model"
)

// Version is the service version reported by the health endpoint.
const Version = "1.0.0"

// ModelServiceStatus reports whether the model dependency is usable without
// performing a completion call.
type ModelServiceStatus interface {
	Configured() bool
	Model() string
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	modelService ModelServiceStatus
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(modelService ModelServiceStatus) *HealthHandler {
	return &HealthHandler{modelService: modelService}
}

// Health handles the GET /health endpoint
// @Summary Liveness check
// @Description Report process status and dependency configuration
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	modelStatus := "configured"
	if !h.modelService.Configured() {
		modelStatus = "missing_credential"
	}

	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Dependencies: map[string]string{
			"model_service": modelStatus,
			"model":         h.modelService.Model(),
		},
	})
}
