package theme

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const (
	gtkSettingsSection  = "Settings"
	gtkPreferDarkKey    = "gtk-application-prefer-dark-theme"
	gtkThemeNameKey     = "gtk-theme-name"
	gtkSettingsFileName = "settings.ini"
)

// GTKSettingsSource reads the dark-theme preference from GTK settings.ini
// files and watches them with fsnotify. It serves sessions without a
// desktop portal.
type GTKSettingsSource struct {
	paths  []string
	logger *slog.Logger
}

// DefaultGTKSettingsPaths returns the settings.ini candidates in priority order.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func DefaultGTKSettingsPaths() []string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		configHome = filepath.Join(home, ".config")
	}
	return []string{
		filepath.Join(configHome, "gtk-4.0", gtkSettingsFileName),
		filepath.Join(configHome, "gtk-3.0", gtkSettingsFileName),
	}
}

// NewGTKSettingsSource creates a source over the given settings.ini paths.
// If paths is empty, DefaultGTKSettingsPaths is used.
func NewGTKSettingsSource(paths []string, logger *slog.Logger) *GTKSettingsSource {
	if logger == nil {
		logger = slog.Default()
	}
	if len(paths) == 0 {
		paths = DefaultGTKSettingsPaths()
	}
	return &GTKSettingsSource{paths: paths, logger: logger}
}

// Name implements Source.
func (s *GTKSettingsSource) Name() string {
	return "gtk-settings"
}

// Available reports whether any settings file exists.
func (s *GTKSettingsSource) Available() bool {
	for _, path := range s.paths {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}

// Scheme implements Source. The first existing file wins.
func (s *GTKSettingsSource) Scheme(context.Context) (Scheme, error) {
	for _, path := range s.paths {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return SchemeNoPreference, fmt.Errorf("failed to open %s: %w", path, err)
		}
		scheme, err := parseGTKSettings(f)
		f.Close()
		if err != nil {
			return SchemeNoPreference, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return scheme, nil
	}
	return SchemeNoPreference, ErrUnavailable
}

// parseGTKSettings reads the [Settings] section of a GTK settings.ini.
// An explicit prefer-dark flag wins; otherwise a theme name ending in
// "-dark" (e.g. Adwaita-dark) counts as dark.
func parseGTKSettings(r io.Reader) (Scheme, error) {
	var (
		section    string
		preferDark *bool
		themeName  string
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		if section != gtkSettingsSection {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch key {
		case gtkPreferDarkKey:
			b := parseGTKBool(value)
			preferDark = &b
		case gtkThemeNameKey:
			themeName = value
		}
	}
	if err := scanner.Err(); err != nil {
		return SchemeNoPreference, err
	}

	if preferDark != nil && *preferDark {
		return SchemeDark, nil
	}
	if strings.HasSuffix(strings.ToLower(themeName), "-dark") {
		return SchemeDark, nil
	}
	return SchemeLight, nil
}

func parseGTKBool(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Subscribe implements Source. Each subscription owns an fsnotify watcher on
// the directories holding the settings files.
func (s *GTKSettingsSource) Subscribe(fn func()) (Subscription, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	watched := make(map[string]bool, len(s.paths))
	for _, path := range s.paths {
		watched[filepath.Clean(path)] = true

		// Watch the directory containing the file (more reliable for writes)
		dir := filepath.Dir(path)
		if err := watcher.Add(dir); err != nil {
			s.logger.Debug("not watching settings directory", "dir", dir, "error", err)
		}
	}
	if len(watcher.WatchList()) == 0 {
		watcher.Close()
		return nil, fmt.Errorf("no GTK settings directory to watch: %w", ErrUnavailable)
	}

	sub := &gtkSubscription{
		watcher: watcher,
		done:    make(chan struct{}),
	}
	go sub.watch(watched, fn, s.logger)
	return sub, nil
}

type gtkSubscription struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// watch is the main watch loop.
func (g *gtkSubscription) watch(watched map[string]bool, fn func(), logger *slog.Logger) {
	for {
		select {
		case event, ok := <-g.watcher.Events:
			if !ok {
				return
			}

			if !watched[filepath.Clean(event.Name)] {
				continue
			}

			// Editors and gsettings daemons usually replace the file
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				logger.Debug("GTK settings changed", "file", event.Name, "op", event.Op.String())
				fn()
			}

		case err, ok := <-g.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("GTK settings watcher error", "error", err)

		case <-g.done:
			return
		}
	}
}

// Close stops the watcher. Safe to call more than once.
func (g *gtkSubscription) Close() error {
	var err error
	g.once.Do(func() {
		close(g.done)
		err = g.watcher.Close()
	})
	return err
}
