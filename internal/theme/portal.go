package theme

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/phenhance/internal/dbus"
)

// settingsPortal is the part of dbus.SettingsPortal used by PortalSource.
type settingsPortal interface {
	ReadUint32(ctx context.Context, namespace, key string) (uint32, error)
	Subscribe(handler dbus.SettingHandler) (func(), error)
}

// PortalSource reads color-scheme from the freedesktop Settings portal.
type PortalSource struct {
	portal settingsPortal
	logger *slog.Logger
}

// NewPortalSource wraps a connected settings portal.
func NewPortalSource(portal settingsPortal, logger *slog.Logger) *PortalSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortalSource{portal: portal, logger: logger}
}

// Name implements Source.
func (s *PortalSource) Name() string {
	return "portal"
}

// Scheme implements Source.
func (s *PortalSource) Scheme(ctx context.Context) (Scheme, error) {
	v, err := s.portal.ReadUint32(ctx, dbus.AppearanceNamespace, dbus.ColorSchemeKey)
	if err != nil {
		return SchemeNoPreference, err
	}
	scheme := Scheme(v)
	if scheme > SchemeLight {
		return SchemeNoPreference, fmt.Errorf("unknown color-scheme value %d", v)
	}
	return scheme, nil
}

// Subscribe implements Source. Only appearance color-scheme changes are delivered.
func (s *PortalSource) Subscribe(fn func()) (Subscription, error) {
	remove, err := s.portal.Subscribe(func(change dbus.SettingChange) {
		if change.Namespace != dbus.AppearanceNamespace || change.Key != dbus.ColorSchemeKey {
			return
		}
		fn()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to portal: %w", err)
	}

	var once sync.Once
	return subscriptionFunc(func() error {
		once.Do(remove)
		return nil
	}), nil
}

// Close releases the portal signal subscription, if the portal supports it.
func (s *PortalSource) Close() error {
	if c, ok := s.portal.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
