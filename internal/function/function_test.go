package function

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fn := r.Group("/functions/v1", CORS())
	Register(fn, "/echo", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "ok"})
	})
	return r
}

func TestCORS_Preflight(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/echo", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, AllowHeaders, w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, AllowMethods, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_PostCarriesHeaders(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/echo", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"data":"ok"}`, w.Body.String())
}
