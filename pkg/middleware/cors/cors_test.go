package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(allowed []string, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(allowed))
	r.GET("/plans", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/plans", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowListed(t *testing.T) {
	w := serve([]string{"https://advisor.test/"}, http.MethodGet, "https://advisor.test")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://advisor.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSRejectsUnknownPreflight(t *testing.T) {
	w := serve([]string{"https://advisor.test"}, http.MethodOptions, "https://evil.test")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowAll(t *testing.T) {
	w := serve(nil, http.MethodOptions, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
