package theme

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Scheme is a color-scheme preference. Values match the portal's
// org.freedesktop.appearance color-scheme setting.
type Scheme uint32

const (
	SchemeNoPreference Scheme = 0
	SchemeDark         Scheme = 1
	SchemeLight        Scheme = 2
)

// ErrUnavailable is returned when no color-scheme signal can be found.
var ErrUnavailable = errors.New("color scheme source unavailable")

// String returns the name of the scheme.
func (s Scheme) String() string {
	switch s {
	case SchemeDark:
		return "dark"
	case SchemeLight:
		return "light"
	case SchemeNoPreference:
		return "no-preference"
	default:
		return "unknown"
	}
}

// IsDark reports whether the scheme is an explicit dark preference.
// No preference resolves to light, like prefers-color-scheme in a browser.
func (s Scheme) IsDark() bool {
	return s == SchemeDark
}

// ParseScheme parses "dark", "light" or "no-preference".
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark":
		return SchemeDark, nil
	case "light":
		return SchemeLight, nil
	case "", "no-preference", "default":
		return SchemeNoPreference, nil
	}
	return SchemeNoPreference, fmt.Errorf("invalid color scheme %q", s)
}

// Source is a live handle on the system color-scheme preference.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Scheme returns the current preference.
	Scheme(ctx context.Context) (Scheme, error)
	// Subscribe calls fn on every change notification from the source.
	// Notifications may arrive for changes that do not alter the scheme.
	Subscribe(fn func()) (Subscription, error)
}

// Subscription is a registered change callback.
type Subscription interface {
	Close() error
}

// subscriptionFunc adapts a function to Subscription.
type subscriptionFunc func() error

func (f subscriptionFunc) Close() error {
	return f()
}
