package theme

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/phenhance/internal/dbus"
)

// Detection modes accepted by Detect.
const (
	ModeSystem   = "system"
	ModeTerminal = "terminal"
	ModeLight    = "light"
	ModeDark     = "dark"
)

// Detect chooses a Source once. In system mode it tries the Settings
// portal, then GTK settings.ini, and returns ErrUnavailable when neither
// is present. Terminal mode probes the terminal background. Light and dark
// pin the scheme.
func Detect(ctx context.Context, mode string, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch mode {
	case ModeLight:
		return NewStaticSource(SchemeLight), nil
	case ModeDark:
		return NewStaticSource(SchemeDark), nil
	case ModeTerminal:
		return NewTerminalSource(), nil
	case ModeSystem, "":
	default:
		return nil, fmt.Errorf("unknown color scheme mode %q", mode)
	}

	src, err := detectPortal(ctx, logger)
	if err == nil {
		logger.Debug("using portal color scheme source")
		return src, nil
	}
	logger.Debug("desktop portal unavailable", "error", err)

	gtk := NewGTKSettingsSource(nil, logger)
	if gtk.Available() {
		logger.Debug("using GTK settings color scheme source")
		return gtk, nil
	}

	return nil, ErrUnavailable
}

func detectPortal(ctx context.Context, logger *slog.Logger) (*PortalSource, error) {
	portal := dbus.NewSettingsPortal(logger)
	if err := portal.Connect(); err != nil {
		return nil, err
	}

	src := NewPortalSource(portal, logger)
	if _, err := src.Scheme(ctx); err != nil {
		_ = portal.Close()
		return nil, err
	}
	return src, nil
}
