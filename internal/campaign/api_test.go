package campaign

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/cache"
	"github.com/houzhh15/autopilot/pkg/auth"
)

type apiFixture struct {
	router *gin.Engine
	token  string
}

func setupAPI(t *testing.T) *apiFixture {
	gin.SetMode(gin.TestMode)

	svc, _, _ := setupService(t)
	ws := NewWizardService(NewSessionStore(cache.NewMemoryStore(), time.Hour), svc, zap.NewNop())
	handler := NewHandler(svc, ws, zap.NewNop())

	manager := auth.NewTokenManager(auth.DefaultTokenConfig([]byte("test-secret")))
	token, err := manager.GenerateToken("user-1", "owner@acme.io", auth.RoleUser)
	require.NoError(t, err)

	router := gin.New()
	api := router.Group("/api/v1", auth.Middleware(manager))
	handler.RegisterRoutes(api)

	return &apiFixture{router: router, token: token}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+f.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func dataOf(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}

func TestAPI_CampaignCRUD(t *testing.T) {
	f := setupAPI(t)

	w, resp := f.do(t, http.MethodPost, "/api/v1/campaigns", Form{Name: "Launch", Objective: "leads"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := dataOf(t, resp)["id"].(string)

	w, resp = f.do(t, http.MethodGet, "/api/v1/campaigns/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Launch", dataOf(t, resp)["name"])

	w, resp = f.do(t, http.MethodPost, "/api/v1/campaigns/"+id+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Launch (Copy)", dataOf(t, resp)["name"])
	assert.Equal(t, "paused", dataOf(t, resp)["status"])

	w, resp = f.do(t, http.MethodPost, "/api/v1/campaigns/"+id+"/toggle-status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paused", dataOf(t, resp)["status"])

	w, resp = f.do(t, http.MethodGet, "/api/v1/campaigns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["count"])

	w, _ = f.do(t, http.MethodDelete, "/api/v1/campaigns/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = f.do(t, http.MethodGet, "/api/v1/campaigns/"+id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	want := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    "CAMPAIGN_NOT_FOUND",
			"message": "Campaign not found",
		},
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("error envelope mismatch (-want +got):\n%s", diff)
	}
}

func TestAPI_InvalidID(t *testing.T) {
	f := setupAPI(t)

	w, resp := f.do(t, http.MethodGet, "/api/v1/campaigns/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", resp["error"].(map[string]interface{})["code"])
}

func TestAPI_CreateMissingFields(t *testing.T) {
	f := setupAPI(t)

	w, resp := f.do(t, http.MethodPost, "/api/v1/campaigns", Form{Name: "No objective"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FIELDS", resp["error"].(map[string]interface{})["code"])
}

func TestAPI_Onboarding(t *testing.T) {
	f := setupAPI(t)

	w, resp := f.do(t, http.MethodPost, "/api/v1/onboarding", OnboardingRequest{Goal: "authority"})
	require.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, resp)
	assert.Equal(t, "owner", data["tenant"].(map[string]interface{})["brand_name"])
	assert.Equal(t, "authority", data["campaign"].(map[string]interface{})["objective"])

	w, _ = f.do(t, http.MethodPost, "/api/v1/onboarding", OnboardingRequest{Goal: "fame"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_WizardFlow(t *testing.T) {
	f := setupAPI(t)

	w, resp := f.do(t, http.MethodGet, "/api/v1/campaign-wizard/options", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataOf(t, resp)["platforms"], len(Platforms))

	w, resp = f.do(t, http.MethodPost, "/api/v1/campaign-wizard", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	sid := dataOf(t, resp)["id"].(string)
	base := "/api/v1/campaign-wizard/" + sid

	w, _ = f.do(t, http.MethodPost, base+"/next", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, resp = f.do(t, http.MethodPatch, base, map[string]string{"name": "Wizard", "objective": "sales"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, dataOf(t, resp)["can_advance"])

	w, _ = f.do(t, http.MethodPost, base+"/toggle", ToggleRequest{Field: "platforms", Value: "TikTok"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, resp = f.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, resp)
	assert.Equal(t, float64(StepPlatforms), data["step"])
	assert.Equal(t, true, data["can_submit"])
	assert.NotNil(t, data["summary"])

	w, resp = f.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Wizard", dataOf(t, resp)["name"])

	w, _ = f.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_RequiresAuth(t *testing.T) {
	f := setupAPI(t)
	f.token = "bogus"

	w, _ := f.do(t, http.MethodGet, "/api/v1/campaigns", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
