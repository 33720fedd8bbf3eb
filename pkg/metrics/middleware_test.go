package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/categories", "/categories"},
		{"/products/9b2f7c1e-3d4a-4b5c-8d6e-7f8091a2b3c4", "/products/:id"},
		{"/products/42", "/products/:id"},
		{"/contexts/Product", "/contexts/Product"},
		{"/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.path))
		})
	}
}

func TestNormalizePath_Truncates(t *testing.T) {
	long := "/products/" + strings.Repeat("a", 200)

	assert.Len(t, normalizePath(long), 100)
}

func TestGinPrometheusMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinPrometheusMiddleware("metrics-test"))
	r.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("metrics-test", "GET", "/products/:id", "200"))

	for _, path := range []string{"/products/1", "/products/2", "/health"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	after := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("metrics-test", "GET", "/products/:id", "200"))
	assert.Equal(t, before+2, after)

	// Неизвестный маршрут нормализуется вручную
	unknown := HttpRequestsTotal.WithLabelValues("metrics-test", "GET", "/categories/:id", "404")
	before = testutil.ToFloat64(unknown)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/categories/9b2f7c1e-3d4a-4b5c-8d6e-7f8091a2b3c4", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(unknown))
}
