package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/statement-extraction-service/internal/model"
)

type fakeModelStatus struct {
	configured bool
	model      string
}

func (f *fakeModelStatus) Configured() bool { return f.configured }
func (f *fakeModelStatus) Model() string    { return f.model }

func newHealthRouter(status ModelServiceStatus) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewHealthHandler(status).Health)
	return r
}

func TestHealthReportsConfiguredModel(t *testing.T) {
	router := newHealthRouter(&fakeModelStatus{configured: true, model: "gpt-4o"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, Version, resp.Version)
	assert.Equal(t, "configured", resp.Dependencies["model_service"])
	assert.Equal(t, "gpt-4o", resp.Dependencies["model"])
	assert.False(t, resp.Timestamp.IsZero())
}

func TestHealthReportsMissingCredential(t *testing.T) {
	router := newHealthRouter(&fakeModelStatus{configured: false, model: "gpt-4o"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	// Missing credentials degrade the dependency report, not process health.
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "missing_credential", resp.Dependencies["model_service"])
}
