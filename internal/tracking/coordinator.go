package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jmylchreest/phenhance/internal/analytics"
	"github.com/jmylchreest/phenhance/internal/metrics"
	"github.com/jmylchreest/phenhance/internal/theme"
)

// schemeTimeout bounds a single color-scheme read.
const schemeTimeout = 2 * time.Second

// Options are the per-session initialize options.
type Options struct {
	// AuthKey authorizes the organization lookup. Empty disables it.
	AuthKey string
}

// Coordinator tracks theme preference and orchestrates session lifecycle.
type Coordinator struct {
	source   theme.Source
	client   analytics.Client
	logger   *slog.Logger
	recorder metrics.Recorder

	httpClient *http.Client
	baseURL    string
	referrer   string

	// checkMu orders theme checks so a slow read cannot overwrite a newer one.
	checkMu sync.Mutex

	mu        sync.Mutex
	lastTheme Theme
	listener  theme.Subscription
	lookup    *Lookup
}

// New creates a Coordinator. A nil source means no color-scheme signal is
// available (e.g. a headless session); a nil client means no analytics SDK.
// Either makes every operation a no-op that reports failure.
func New(source theme.Source, client analytics.Client, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		source:     source,
		client:     client,
		logger:     logger,
		recorder:   metrics.NoopRecorder{},
		httpClient: http.DefaultClient,
	}
}

// SetRecorder sets the metrics recorder.
func (c *Coordinator) SetRecorder(r metrics.Recorder) {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	c.recorder = r
}

// SetHTTPClient sets the client used for the organization lookup.
func (c *Coordinator) SetHTTPClient(client *http.Client) {
	if client == nil {
		client = http.DefaultClient
	}
	c.httpClient = client
}

// SetBaseURL sets the site hosting the organization endpoint.
func (c *Coordinator) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetReferrer sets the value recorded once as initial_referrer.
func (c *Coordinator) SetReferrer(referrer string) {
	c.referrer = referrer
}

func (c *Coordinator) available() bool {
	return c.source != nil && c.client != nil
}

// recoverLogged converts a panic in the calling operation into a log entry.
func (c *Coordinator) recoverLogged(msg string) {
	if r := recover(); r != nil {
		c.logger.Error(msg, "panic", r)
	}
}

// TrackEvent forwards an event to the analytics client. It reports whether
// the forwarding call was made without failing.
func (c *Coordinator) TrackEvent(name string, properties map[string]any) (ok bool) {
	if name == "" || !c.available() {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("tracking error", "event", name, "panic", r)
			ok = false
		}
		c.recorder.IncEvent(eventLabel(name), metrics.Result(ok))
	}()

	if properties == nil {
		properties = analytics.Properties{}
	}
	if err := c.client.Capture(name, properties); err != nil {
		c.logger.Error("tracking error", "event", name, "error", err)
		return false
	}
	return true
}

// peopleSet writes profile attributes and records the outcome.
func (c *Coordinator) peopleSet(attrs analytics.Properties) error {
	err := c.client.PeopleSet(attrs)
	c.recorder.IncProfileWrite("set", metrics.Result(err == nil))
	return err
}

// TrackThemePreference emits a theme_preference event when the resolved
// theme differs from the last one emitted. Repeated calls with no change
// emit nothing.
func (c *Coordinator) TrackThemePreference() {
	defer c.recoverLogged("error tracking theme preference")

	if !c.available() {
		return
	}

	c.checkMu.Lock()
	defer c.checkMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), schemeTimeout)
	defer cancel()

	scheme, err := c.source.Scheme(ctx)
	if err != nil {
		c.logger.Error("error tracking theme preference", "source", c.source.Name(), "error", err)
		return
	}

	prefersDark := scheme.IsDark()
	current := ThemeLight
	if prefersDark {
		current = ThemeDark
	}

	c.mu.Lock()
	if current == c.lastTheme {
		c.mu.Unlock()
		return
	}
	c.lastTheme = current
	c.mu.Unlock()

	c.logger.Debug("theme preference changed", "theme", current, "source", c.source.Name())
	c.recorder.IncThemeTransition(string(current))

	c.TrackEvent(EventThemePreference, analytics.Properties{
		PropTheme:           string(current),
		PropPrefersDarkMode: prefersDark,
	})

	if err := c.peopleSet(analytics.Properties{PropPrefersDarkMode: prefersDark}); err != nil {
		c.logger.Error("error tracking theme preference", "error", err)
	}
}

// AddThemeChangeListener subscribes TrackThemePreference to source changes.
// Calling it twice without RemoveThemeChangeListener replaces the stored
// subscription and leaves the earlier one active.
func (c *Coordinator) AddThemeChangeListener() {
	defer c.recoverLogged("error adding theme listener")

	if c.source == nil {
		return
	}

	sub, err := c.source.Subscribe(c.TrackThemePreference)
	if err != nil {
		c.logger.Error("error adding theme listener", "source", c.source.Name(), "error", err)
		return
	}

	c.mu.Lock()
	c.listener = sub
	c.mu.Unlock()
}

// RemoveThemeChangeListener closes the stored subscription, if any. The
// handle is cleared even when closing fails.
func (c *Coordinator) RemoveThemeChangeListener() {
	defer c.recoverLogged("error removing theme listener")

	c.mu.Lock()
	sub := c.listener
	c.listener = nil
	c.mu.Unlock()

	if sub == nil {
		return
	}
	if err := sub.Close(); err != nil {
		c.logger.Error("error removing theme listener", "error", err)
	}
}

// Initialize starts tracking for a session. In order it records the
// referrer once, emits the current theme, registers the change listener and
// starts the organization lookup in the background. The result covers only
// the synchronous steps; use PendingLookup to await the lookup.
func (c *Coordinator) Initialize(ctx context.Context, opts Options) (ok bool) {
	if !c.available() {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("error initializing tracking", "panic", r)
			ok = false
		}
	}()

	err := c.client.PeopleSetOnce(analytics.Properties{PropInitialReferrer: c.referrer})
	c.recorder.IncProfileWrite("set_once", metrics.Result(err == nil))
	if err != nil {
		c.logger.Error("error initializing tracking", "error", err)
		return false
	}

	c.TrackThemePreference()
	c.AddThemeChangeListener()
	c.startLookup(ctx, opts.AuthKey)

	c.logger.Debug("tracking initialized", "source", c.source.Name())
	return true
}

// startLookup runs TrackOrganization detached from ctx's cancellation.
func (c *Coordinator) startLookup(ctx context.Context, authKey string) {
	l := newLookup()

	c.mu.Lock()
	c.lookup = l
	c.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	go func() {
		ok := false
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("failed to track organization during initialization", "panic", fmt.Sprint(r))
			}
			l.finish(ok)
		}()
		ok = c.TrackOrganization(ctx, authKey)
	}()
}

// PendingLookup returns the organization lookup started by the most recent
// Initialize, or nil if Initialize has not started one.
func (c *Coordinator) PendingLookup() *Lookup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup
}

// TrackSearch emits a search event.
func (c *Coordinator) TrackSearch(data SearchData) {
	c.TrackEvent(EventSearch, data.properties())
}

// Teardown removes the change listener and forgets the last theme. It is
// safe to call repeatedly or without Initialize. An in-flight organization
// lookup keeps running.
func (c *Coordinator) Teardown() {
	c.RemoveThemeChangeListener()

	c.mu.Lock()
	c.lastTheme = ThemeUnset
	c.mu.Unlock()
}

// LastTheme returns the last emitted theme, or ThemeUnset.
func (c *Coordinator) LastTheme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTheme
}
