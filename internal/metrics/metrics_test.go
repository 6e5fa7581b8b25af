package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCheckout(t *testing.T) {
	m := New()

	m.ObserveCheckout("success", 20*time.Millisecond)
	m.ObserveCheckout("success", 30*time.Millisecond)
	m.ObserveCheckout("insufficient_stock", 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkoutTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkoutTotal.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.checkoutDuration))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/products/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", m.Handler())

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "/products/:id", "200")))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "storefront_http_requests_total"))
	assert.True(t, strings.Contains(body, `route="/products/:id"`))
}
