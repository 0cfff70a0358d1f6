package tracking

import "context"

// Lookup is the handle of a background organization lookup.
// Teardown does not cancel it.
type Lookup struct {
	done chan struct{}
	ok   bool
}

func newLookup() *Lookup {
	return &Lookup{done: make(chan struct{})}
}

func (l *Lookup) finish(ok bool) {
	l.ok = ok
	close(l.done)
}

// Done is closed once the lookup has settled.
func (l *Lookup) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the lookup settles or ctx ends and returns its result.
func (l *Lookup) Wait(ctx context.Context) (bool, error) {
	select {
	case <-l.done:
		return l.ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
