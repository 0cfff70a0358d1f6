package analytics

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
)

// DefaultPostHogEndpoint is the PostHog cloud ingestion host.
const DefaultPostHogEndpoint = "https://us.i.posthog.com"

// PostHogConfig configures a PostHog client.
type PostHogConfig struct {
	APIKey     string
	Endpoint   string
	DistinctID string
	Interval   time.Duration
	BatchSize  int
}

// PostHog sends events to PostHog for a single distinct id.
type PostHog struct {
	client     posthog.Client
	distinctID string
	logger     *slog.Logger
	closed     atomic.Bool
}

// NewPostHog creates a PostHog client.
func NewPostHog(cfg PostHogConfig, logger *slog.Logger) (*PostHog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, errors.New("posthog API key is required")
	}
	if cfg.DistinctID == "" {
		return nil, errors.New("distinct id is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultPostHogEndpoint
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint:  cfg.Endpoint,
		Interval:  cfg.Interval,
		BatchSize: cfg.BatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create posthog client: %w", err)
	}

	logger.Debug("posthog client ready", "endpoint", cfg.Endpoint, "distinct_id", cfg.DistinctID)
	return &PostHog{client: client, distinctID: cfg.DistinctID, logger: logger}, nil
}

// Capture implements Client.
func (p *PostHog) Capture(event string, properties Properties) error {
	if p.closed.Load() {
		return ErrClosed
	}
	return p.client.Enqueue(posthog.Capture{
		Uuid:       uuid.NewString(),
		DistinctId: p.distinctID,
		Event:      event,
		Properties: posthog.Properties(properties),
	})
}

// PeopleSet implements Client using an identify call, which PostHog
// applies as $set.
func (p *PostHog) PeopleSet(attributes Properties) error {
	if p.closed.Load() {
		return ErrClosed
	}
	return p.client.Enqueue(posthog.Identify{
		DistinctId: p.distinctID,
		Properties: posthog.Properties(attributes),
	})
}

// PeopleSetOnce implements Client with a $set event carrying $set_once.
func (p *PostHog) PeopleSetOnce(attributes Properties) error {
	if p.closed.Load() {
		return ErrClosed
	}
	return p.client.Enqueue(posthog.Capture{
		Uuid:       uuid.NewString(),
		DistinctId: p.distinctID,
		Event:      "$set",
		Properties: posthog.NewProperties().Set("$set_once", attributes),
	})
}

// Close flushes queued messages.
func (p *PostHog) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.client.Close()
}
