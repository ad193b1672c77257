package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.IsolationViolation("leads")
	m.FetchRetry("leads")
	m.FetchExhausted("leads")
	m.TenantSwitch(true)
	m.CacheLookup(false)
	m.StaleResponse()
	m.QualityScore("acme", 80)
}

func TestIsolationViolationCounter(t *testing.T) {
	m := New()
	m.IsolationViolation("ad_spend")
	m.IsolationViolation("ad_spend")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `dashboard_isolation_violations_total{table="ad_spend"} 2`) {
		t.Fatal("expected two ad_spend isolation violations to be exported")
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	m.StaleResponse()

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{"dashboard_stale_responses_total 1", `route="/ping"`} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
