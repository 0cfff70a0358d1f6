package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncEvent("search", ResultSuccess)
	pr.IncEvent("search", ResultSuccess)
	pr.IncEvent("search", ResultFailure)
	pr.IncProfileWrite("set_once", ResultSuccess)
	pr.IncThemeTransition("dark")
	pr.IncOrganizationLookup(ResultSkipped)

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.events.WithLabelValues("search", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.events.WithLabelValues("search", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.themeTransitions.WithLabelValues("dark")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 4)
}

func TestPrometheusRecorder_Nil(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncEvent("search", ResultSuccess)
		pr.IncOrganizationLookup(ResultFailure)
	})
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncThemeTransition("light")

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `phenhance_theme_transitions_total{theme="light"} 1`)
}

func TestResult(t *testing.T) {
	assert.Equal(t, ResultSuccess, Result(true))
	assert.Equal(t, ResultFailure, Result(false))
}
