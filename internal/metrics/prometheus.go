package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	events             *prom.CounterVec
	profileWrites      *prom.CounterVec
	themeTransitions   *prom.CounterVec
	organizationLookup *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		events: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "phenhance",
			Name:      "events_total",
			Help:      "Events forwarded to the analytics client by name and outcome",
		}, []string{"event", "result"}),
		profileWrites: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "phenhance",
			Name:      "profile_writes_total",
			Help:      "Person profile writes by kind (set, set_once) and outcome",
		}, []string{"kind", "result"}),
		themeTransitions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "phenhance",
			Name:      "theme_transitions_total",
			Help:      "Distinct color-scheme transitions observed",
		}, []string{"theme"}),
		organizationLookup: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "phenhance",
			Name:      "organization_lookups_total",
			Help:      "Organization lookups by outcome",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.events, pr.profileWrites, pr.themeTransitions, pr.organizationLookup)
	return pr
}

func (p *PrometheusRecorder) IncEvent(event string, result ResultLabel) {
	if p == nil {
		return
	}
	p.events.WithLabelValues(event, string(result)).Inc()
}

func (p *PrometheusRecorder) IncProfileWrite(kind string, result ResultLabel) {
	if p == nil {
		return
	}
	p.profileWrites.WithLabelValues(kind, string(result)).Inc()
}

func (p *PrometheusRecorder) IncThemeTransition(theme string) {
	if p == nil {
		return
	}
	p.themeTransitions.WithLabelValues(theme).Inc()
}

func (p *PrometheusRecorder) IncOrganizationLookup(result ResultLabel) {
	if p == nil {
		return
	}
	p.organizationLookup.WithLabelValues(string(result)).Inc()
}

// HTTPHandler returns an http.Handler that serves the metrics in reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
