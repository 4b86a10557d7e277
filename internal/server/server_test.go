package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achievemate/gradeflow/internal/curriculum"
	"github.com/achievemate/gradeflow/internal/guard"
	"github.com/achievemate/gradeflow/internal/submission"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() *gin.Engine {
	matcher := curriculum.NewMatcher(0.3, 3)
	dupGuard := guard.New(nil, guard.Policy{FailOpen: true})
	orch := submission.NewOrchestrator(nil, matcher, dupGuard, nil, nil)
	return New(orch).Router()
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	newTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestExtractEndpoint(t *testing.T) {
	body := `{"text": "COURSE_CODE|COURSE_TITLE|UNITS|GRADE|SECTION|INSTRUCTOR\nIT 201|Data Structures|3|1.50|IT-1A|Dr. Smith\nSUMMARY:\nGeneral Weighted Average (GWA) 1.50"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	newTestRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"IT 201"`)
	assert.Contains(t, w.Body.String(), `"grade_source":"primary"`)
	assert.Contains(t, w.Body.String(), `"gwa":1.5`)
}

func TestExtractEndpointRequiresText(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	newTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitUnknownUpload(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/submit", strings.NewReader(`{"upload_id": "missing"}`))
	req.Header.Set("Content-Type", "application/json")

	newTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
