package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/docuflow/statement-extraction-service/internal/domain"
	"github.com/docuflow/statement-extraction-service/internal/model"
)

// StatementExtractor runs the extraction pipeline for one upload.
type StatementExtractor interface {
	Process(ctx context.Context, pdf []byte, filename string) (*domain.BankStatementData, error)
}

// ExtractHandler handles HTTP requests for statement extraction.
type ExtractHandler struct {
	extractor     StatementExtractor
	maxUploadSize int64
	log           zerolog.Logger
}

// NewExtractHandler creates a new extraction handler.
func NewExtractHandler(extractor StatementExtractor, maxUploadSize int64, logger zerolog.Logger) *ExtractHandler {
	return &ExtractHandler{extractor: extractor, maxUploadSize: maxUploadSize, log: logger}
}

// Extract handles the POST /api/v1/extract endpoint
// @Summary Extract structured data from a PDF bank statement
// @Description Upload a PDF bank statement and receive its structured financial content
// @Tags extraction
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF bank statement"
// @Success 200 {object} model.ExtractionResponse "Successfully extracted statement data"
// @Failure 400 {object} model.ErrorResponse "Unsupported file type"
// @Failure 413 {object} model.ErrorResponse "Upload too large"
// @Failure 422 {object} model.ErrorResponse "Document or model output could not be processed"
// @Failure 502 {object} model.ErrorResponse "Model service unavailable"
// @Failure 504 {object} model.ErrorResponse "Model service timeout"
// @Router /api/v1/extract [post]
func (h *ExtractHandler) Extract(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondWithError(c, http.StatusBadRequest, ErrFileRequired, "")
		return
	}
	defer file.Close()

	// Size gate before rasterization starts.
	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		h.log.Warn().
			Str("filename", header.Filename).
			Int64("size", header.Size).
			Int64("limit", h.maxUploadSize).
			Msg("rejected oversized upload")
		respondWithError(c, http.StatusRequestEntityTooLarge, ErrFileTooLarge, "")
		return
	}

	reader := io.Reader(file)
	if h.maxUploadSize > 0 {
		reader = io.LimitReader(file, h.maxUploadSize+1)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("failed to read upload")
		respondWithError(c, http.StatusInternalServerError, ErrInternalServer, "")
		return
	}
	if h.maxUploadSize > 0 && int64(len(pdf)) > h.maxUploadSize {
		respondWithError(c, http.StatusRequestEntityTooLarge, ErrFileTooLarge, "")
		return
	}

	data, err := h.extractor.Process(c.Request.Context(), pdf, header.Filename)
	if err != nil {
		h.log.Error().Err(err).
			Str("filename", header.Filename).
			Int("bytes", len(pdf)).
			Msg("statement extraction failed")
		respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ExtractionResponse{Status: "success", Data: data})
}
