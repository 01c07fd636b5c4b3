package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/statement-extraction-service/internal/extract"
	"github.com/docuflow/statement-extraction-service/internal/model"
)

// Common error messages
const (
	ErrInternalServer = "Internal server error"
	ErrFileRequired   = "A file upload is required"
	ErrFileTooLarge   = "Uploaded file exceeds the maximum allowed size"
)

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, detail, errorCode string) {
	c.JSON(statusCode, model.ErrorResponse{
		Detail:    detail,
		ErrorCode: errorCode,
		Timestamp: time.Now().UTC(),
	})
}

// respondPipelineError maps a pipeline failure to its HTTP status and stable
// error code. Anything outside the known taxonomy becomes a generic internal
// error so internal state never leaks to the caller.
func respondPipelineError(c *gin.Context, err error) {
	var pe *extract.Error
	if !errors.As(err, &pe) {
		respondWithError(c, http.StatusInternalServerError, ErrInternalServer, "")
		return
	}
	respondWithError(c, statusForKind(pe.Kind), pe.Error(), string(pe.Kind))
}

func statusForKind(kind extract.Kind) int {
	switch kind {
	case extract.KindUnsupportedFileType:
		return http.StatusBadRequest
	case extract.KindInvalidDocument, extract.KindEmptyDocument,
		extract.KindNoStructuredContent, extract.KindMalformedJSON,
		extract.KindSchemaViolation:
		return http.StatusUnprocessableEntity
	case extract.KindUpstreamUnavailable, extract.KindUpstreamRejected:
		return http.StatusBadGateway
	case extract.KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
