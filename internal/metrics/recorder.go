// Package metrics records tracking outcomes. Components hold a Recorder and
// default to NoopRecorder; the run command swaps in a PrometheusRecorder when
// a metrics listen address is configured.
package metrics

// ResultLabel is the outcome label of a counted operation.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailure ResultLabel = "failure"
	ResultSkipped ResultLabel = "skipped"
)

// Result maps a boolean outcome to a label.
func Result(ok bool) ResultLabel {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}

// Recorder receives tracking metrics.
type Recorder interface {
	IncEvent(event string, result ResultLabel)
	IncProfileWrite(kind string, result ResultLabel)
	IncThemeTransition(theme string)
	IncOrganizationLookup(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncEvent(string, ResultLabel)        {}
func (NoopRecorder) IncProfileWrite(string, ResultLabel) {}
func (NoopRecorder) IncThemeTransition(string)           {}
func (NoopRecorder) IncOrganizationLookup(ResultLabel)   {}
