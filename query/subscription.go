package query

// subscribeOptions carries per-subscription settings.
type subscribeOptions struct {
	enabled bool
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeOptions)

// Disabled creates the subscription in a paused state: no fetch is issued
// and no updates are delivered until SetEnabled(true) flips it on. Views use
// this for queries gated on a precondition, e.g. a detail query waiting for
// a selected row.
func Disabled() SubscribeOption {
	return func(o *subscribeOptions) { o.enabled = false }
}

// Subscription is one view's handle on a cache entry. It delivers snapshot
// transitions through Updates and detaches cleanly on Close: an in-flight
// fetch is allowed to finish and populate the cache, but nothing is
// delivered to a closed subscription.
type Subscription struct {
	cache *Cache
	entry *entry
	ch    chan Snapshot

	// guarded by entry.mu
	enabled bool
	closed  bool
}

// Snapshot returns the entry's current observable state.
func (s *Subscription) Snapshot() Snapshot {
	s.entry.mu.Lock()
	defer s.entry.mu.Unlock()
	return s.cache.snapshotLocked(s.entry)
}

// Updates delivers snapshot transitions. The channel coalesces: a slow
// consumer observes the latest state, not every intermediate one.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

// Refetch forces a fresh fetch immediately, even while another request for
// the same key is still in flight. The newest issued request wins; the
// older response is discarded when it lands.
func (s *Subscription) Refetch() {
	s.entry.mu.Lock()
	closed := s.closed
	s.entry.mu.Unlock()
	if closed {
		return
	}
	s.cache.startFetch(s.entry, true)
}

// SetEnabled pauses or resumes the subscription. Flipping to enabled
// refetches when the entry is stale or was never loaded.
func (s *Subscription) SetEnabled(enabled bool) {
	e := s.entry
	e.mu.Lock()
	if s.closed || s.enabled == enabled {
		e.mu.Unlock()
		return
	}
	s.enabled = enabled
	needFetch := enabled && e.flights == 0 && (e.status != StatusSuccess || e.stale)
	e.mu.Unlock()

	if needFetch {
		s.cache.startFetch(e, false)
	}
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	e := s.entry
	e.mu.Lock()
	if s.closed {
		e.mu.Unlock()
		return
	}
	s.closed = true
	s.enabled = false
	delete(e.subs, s)
	close(s.ch)
	empty := len(e.subs) == 0
	e.mu.Unlock()

	if empty {
		s.cache.release(e)
	}
}

// push delivers a snapshot, replacing an undelivered older one. Called with
// entry.mu held.
func (s *Subscription) push(snap Snapshot) {
	select {
	case s.ch <- snap:
	default:
		select {
		case <-s.ch:
		default:
		}
		s.ch <- snap
	}
}
