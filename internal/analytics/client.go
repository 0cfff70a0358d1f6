// Package analytics adapts product-analytics SDKs to the small surface
// phenhance needs: event capture and person-profile writes.
package analytics

import "errors"

// Properties is an event or profile property mapping.
type Properties = map[string]any

// ErrClosed is returned by clients used after Close.
var ErrClosed = errors.New("analytics client closed")

// Client is an analytics SDK. Implementations queue or send the data;
// delivery guarantees are theirs.
type Client interface {
	// Capture records a named event.
	Capture(event string, properties Properties) error
	// PeopleSet merges attributes into the person profile, overwriting.
	PeopleSet(attributes Properties) error
	// PeopleSetOnce merges attributes that are not already set.
	PeopleSetOnce(attributes Properties) error
	// Close flushes pending data.
	Close() error
}
