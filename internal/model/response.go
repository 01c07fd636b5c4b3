package model

import (
	"time"

	"github.com/docuflow/statement-extraction-service/internal/domain"
)

// ExtractionResponse is the success envelope for POST /api/v1/extract.
type ExtractionResponse struct {
	Status string                    `json:"status"`
	Data   *domain.BankStatementData `json:"data"`
}

// ErrorResponse is the failure envelope for every endpoint.
type ErrorResponse struct {
	Detail    string    `json:"detail"`
	ErrorCode string    `json:"error_code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse reports process liveness and dependency status.
type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies"`
}
