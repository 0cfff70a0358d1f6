package tracking

import (
	"context"
	"errors"
	"sync"

	"github.com/jmylchreest/phenhance/internal/analytics"
	"github.com/jmylchreest/phenhance/internal/theme"
)

// fakeSource is an in-memory color-scheme source.
type fakeSource struct {
	mu           sync.Mutex
	scheme       theme.Scheme
	schemeErr    error
	subscribeErr error
	closeErr     error
	subs         map[int]func()
	next         int
	reads        int
}

func newFakeSource(scheme theme.Scheme) *fakeSource {
	return &fakeSource{scheme: scheme, subs: make(map[int]func())}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Scheme(context.Context) (theme.Scheme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.scheme, f.schemeErr
}

func (f *fakeSource) Subscribe(fn func()) (theme.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.next++
	id := f.next
	f.subs[id] = fn
	return &fakeSubscription{source: f, id: id}, nil
}

// set changes the scheme and notifies every subscriber.
func (f *fakeSource) set(scheme theme.Scheme) {
	f.mu.Lock()
	f.scheme = scheme
	f.mu.Unlock()
	f.notify()
}

// notify fires subscribers without changing the scheme.
func (f *fakeSource) notify() {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (f *fakeSource) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type fakeSubscription struct {
	source *fakeSource
	id     int
}

func (s *fakeSubscription) Close() error {
	s.source.mu.Lock()
	defer s.source.mu.Unlock()
	delete(s.source.subs, s.id)
	return s.source.closeErr
}

type capturedEvent struct {
	Name       string
	Properties analytics.Properties
}

// fakeClient records analytics calls.
type fakeClient struct {
	mu         sync.Mutex
	events     []capturedEvent
	sets       []analytics.Properties
	setOnces   []analytics.Properties
	captureErr error
	setErr     error
	setOnceErr error
	panicMsg   string
}

func (f *fakeClient) Capture(event string, properties analytics.Properties) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.captureErr != nil {
		return f.captureErr
	}
	f.events = append(f.events, capturedEvent{Name: event, Properties: properties})
	return nil
}

func (f *fakeClient) PeopleSet(attributes analytics.Properties) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, attributes)
	return nil
}

func (f *fakeClient) PeopleSetOnce(attributes analytics.Properties) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setOnceErr != nil {
		return f.setOnceErr
	}
	f.setOnces = append(f.setOnces, attributes)
	return nil
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) eventsNamed(name string) []capturedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []capturedEvent
	for _, e := range f.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeClient) setsWith(key string) []analytics.Properties {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []analytics.Properties
	for _, s := range f.sets {
		if _, ok := s[key]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events) + len(f.sets) + len(f.setOnces)
}

var errBoom = errors.New("boom")
