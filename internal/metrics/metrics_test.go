package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"logistics_manager/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverCounters(t *testing.T) {
	m := New()

	m.FreightCalculated("freight", pricing.Standard, 41.5)
	m.FreightCalculated("freight", pricing.Standard, 60)
	m.RateFallback("overnight")
	m.ShipmentTransition("delivered", "delivered_final")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.calculations.WithLabelValues("freight", "standard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("overnight")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("delivered", "delivered_final")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/clients/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/clients/7", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/clients/:id", "GET", "204")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
