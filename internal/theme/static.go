package theme

import (
	"context"

	"github.com/charmbracelet/lipgloss"
)

// StaticSource reports a fixed scheme and never notifies.
type StaticSource struct {
	name   string
	scheme Scheme
}

// NewStaticSource returns a source pinned to scheme.
func NewStaticSource(scheme Scheme) *StaticSource {
	return &StaticSource{name: "static", scheme: scheme}
}

// NewTerminalSource derives the scheme from the terminal background color.
// The terminal is queried once, on construction.
func NewTerminalSource() *StaticSource {
	scheme := SchemeLight
	if lipgloss.HasDarkBackground() {
		scheme = SchemeDark
	}
	return &StaticSource{name: "terminal", scheme: scheme}
}

// Name implements Source.
func (s *StaticSource) Name() string {
	return s.name
}

// Scheme implements Source.
func (s *StaticSource) Scheme(context.Context) (Scheme, error) {
	return s.scheme, nil
}

// Subscribe implements Source. The callback is never invoked.
func (s *StaticSource) Subscribe(func()) (Subscription, error) {
	return subscriptionFunc(func() error { return nil }), nil
}
