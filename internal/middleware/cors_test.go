package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsEngine(origenes []string) *gin.Engine {
	r := gin.New()
	r.Use(CORS(origenes))
	r.GET("/api/comandas/list", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func corsRequest(r http.Handler, method, origen string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/comandas/list", nil)
	if origen != "" {
		req.Header.Set("Origin", origen)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	permitidos := []string{"https://barra.local"}
	tests := []struct {
		name     string
		origenes []string
		method   string
		origen   string
		status   int
		allow    string
	}{
		{"sin lista, cualquier origen", nil, http.MethodGet, "https://otro.local", http.StatusOK, "*"},
		{"sin lista, preflight", nil, http.MethodOptions, "https://otro.local", http.StatusNoContent, "*"},
		{"origen permitido", permitidos, http.MethodGet, "https://barra.local", http.StatusOK, "https://barra.local"},
		{"preflight permitido", permitidos, http.MethodOptions, "https://barra.local", http.StatusNoContent, "https://barra.local"},
		{"origen ajeno", permitidos, http.MethodGet, "https://otro.local", http.StatusOK, ""},
		{"preflight ajeno", permitidos, http.MethodOptions, "https://otro.local", http.StatusForbidden, ""},
		{"sin origen", permitidos, http.MethodGet, "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := corsRequest(corsEngine(tt.origenes), tt.method, tt.origen)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.allow, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
