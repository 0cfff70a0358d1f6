package analytics

import (
	"log/slog"
	"sync/atomic"
)

// LogClient writes every call to a logger instead of sending it.
// Used when no API key is configured.
type LogClient struct {
	logger *slog.Logger
	closed atomic.Bool
}

// NewLogClient creates a LogClient.
func NewLogClient(logger *slog.Logger) *LogClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogClient{logger: logger}
}

// Capture implements Client.
func (c *LogClient) Capture(event string, properties Properties) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.logger.Info("capture", "event", event, "properties", properties)
	return nil
}

// PeopleSet implements Client.
func (c *LogClient) PeopleSet(attributes Properties) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.logger.Info("people set", "attributes", attributes)
	return nil
}

// PeopleSetOnce implements Client.
func (c *LogClient) PeopleSetOnce(attributes Properties) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.logger.Info("people set once", "attributes", attributes)
	return nil
}

// Close implements Client.
func (c *LogClient) Close() error {
	c.closed.Store(true)
	return nil
}
