package lead

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/function"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc, _, _ := setupService(t, nil)
	h := NewHandler(svc, zap.NewNop())

	r := gin.New()
	h.RegisterFunctions(r.Group("/functions/v1", function.CORS()))
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCaptureLead_Success(t *testing.T) {
	r := setupRouter(t)

	w := post(r, "/functions/v1/capture-lead", `{"email":"hello@acme.io"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var resp struct {
		Data struct {
			Email  string `json:"email"`
			Source string `json:"source"`
		} `json:"data"`
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "hello@acme.io", resp.Data.Email)
	assert.Equal(t, "capture_form", resp.Data.Source)
}

func TestCaptureLead_MissingEmail(t *testing.T) {
	r := setupRouter(t)

	w := post(r, "/functions/v1/capture-lead", `{"source":"website"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"message":"Email is required"}}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCaptureLead_SaveFailed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := setupFailingService(t)
	r := gin.New()
	NewHandler(svc, zap.NewNop()).RegisterFunctions(r.Group("/functions/v1", function.CORS()))

	w := post(r, "/functions/v1/capture-lead", `{"email":"hello@acme.io"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t,
		`{"error":{"message":"Failed to save lead: duplicate key value violates unique constraint \"leads_email_key\": Key (email)=(hello@acme.io) already exists."}}`,
		w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCaptureLead_MalformedBody(t *testing.T) {
	r := setupRouter(t)

	w := post(r, "/functions/v1/capture-lead", `{`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCaptureLead_Options(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/capture-lead", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestAuditAndList(t *testing.T) {
	r := setupRouter(t)

	w := post(r, "/api/v1/leads/audit", `{"email":"ops@acme.io","linkedin":"acme","twitter":"@acme"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Source   string            `json:"source"`
			Metadata map[string]string `json:"metadata"`
		} `json:"data"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "maintenance-audit", resp.Data[0].Source)
	assert.Equal(t, "@acme", resp.Data[0].Metadata["twitter"])
}

func TestAudit_MissingEmail(t *testing.T) {
	r := setupRouter(t)

	w := post(r, "/api/v1/leads/audit", `{"linkedin":"acme"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "EMAIL_REQUIRED")
}
