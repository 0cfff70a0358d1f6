package output

import (
	"fmt"
	"strings"
	"time"
)

// ThemeReport describes the detected color-scheme source.
type ThemeReport struct {
	Source      string `json:"source" yaml:"source"`
	Scheme      string `json:"scheme" yaml:"scheme"`
	Theme       string `json:"theme" yaml:"theme"`
	PrefersDark bool   `json:"prefers_dark_mode" yaml:"prefers_dark_mode"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Text implements Report.
func (r ThemeReport) Text() string {
	if r.Error != "" {
		return fmt.Sprintf("source: %s\nerror:  %s", r.Source, r.Error)
	}
	return fmt.Sprintf("source: %s\nscheme: %s\ntheme:  %s", r.Source, r.Scheme, r.Theme)
}

// StatusReport describes the local installation state.
type StatusReport struct {
	DistinctID  string    `json:"distinct_id" yaml:"distinct_id"`
	FirstSeenAt time.Time `json:"first_seen_at" yaml:"first_seen_at"`
	LastRunAt   time.Time `json:"last_run_at,omitzero" yaml:"last_run_at,omitempty"`
	ConfigPath  string    `json:"config_path" yaml:"config_path"`
	StatePath   string    `json:"state_path" yaml:"state_path"`
	Analytics   string    `json:"analytics" yaml:"analytics"`
}

// Text implements Report.
func (r StatusReport) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "distinct id: %s\n", r.DistinctID)
	fmt.Fprintf(&sb, "first seen:  %s\n", relativeTime(r.FirstSeenAt))
	fmt.Fprintf(&sb, "last run:    %s\n", relativeTime(r.LastRunAt))
	fmt.Fprintf(&sb, "analytics:   %s\n", r.Analytics)
	fmt.Fprintf(&sb, "config:      %s\n", r.ConfigPath)
	fmt.Fprintf(&sb, "state:       %s", r.StatePath)
	return sb.String()
}
