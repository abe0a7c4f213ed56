package query

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/dokumatek/erpkit/client"
	"github.com/dokumatek/erpkit/internal/cachestore"
	"github.com/dokumatek/erpkit/internal/metrics"
)

// ErrNoFetcher is returned when a subscription omits its fetcher and the
// cache has no client bound to derive a default one from the key path.
var ErrNoFetcher = errors.New("query: no fetcher supplied and no client bound")

// ErrInvalidResultType is returned when cached data cannot be converted to
// the type requested by a typed read.
var ErrInvalidResultType = errors.New("query: cached data does not match requested type")

// Fetcher loads the current value for a key from the source of truth.
type Fetcher func(ctx context.Context) (any, error)

// Status describes where a cache entry is in its lifecycle.
type Status uint8

// Entry lifecycle states.
const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is the observable state of a cache entry at one point in time.
// Data survives failed refetches: Err may be non-nil while Data still holds
// the last successful payload.
type Snapshot struct {
	Data          any
	Err           error
	Loading       bool
	Status        Status
	LastFetchedAt time.Time
}

// entry is the bookkeeping record for one cache key. The payload itself
// lives in the bounded store; everything here is lifecycle state.
type entry struct {
	mu   sync.Mutex
	key  Key
	skey string

	status        Status
	err           error
	lastFetchedAt time.Time
	stale         bool

	fetcher Fetcher
	flights int    // fetches currently in the air
	issued  uint64 // generation of the newest issued fetch
	pending bool   // an invalidation arrived mid-flight; refetch once after

	subs map[*Subscription]struct{}
}

func (e *entry) activeSubsLocked() int {
	n := 0
	for s := range e.subs {
		if s.enabled {
			n++
		}
	}
	return n
}

// Cache is the process-wide query cache. Views subscribe to keys, mutations
// invalidate key prefixes, and the cache keeps every subscriber observing
// the same server-backed data. Construct one per process and inject it;
// tests construct their own throwaway instance.
type Cache struct {
	store     *cachestore.Store
	client    *client.Client
	log       *slog.Logger
	metrics   *metrics.Metrics
	retention time.Duration

	entries *xsync.MapOf[string, *entry]
}

// Option configures a Cache.
type Option func(*Cache)

// WithClient binds an HTTP client used to derive default fetchers from key
// paths when a subscription does not supply its own.
func WithClient(c *client.Client) Option {
	return func(q *Cache) { q.client = c }
}

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(q *Cache) { q.log = log }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *Cache) { q.metrics = m }
}

// New builds a Cache on top of a bounded store sized by cfg.
func New(cfg Config, opts ...Option) (*Cache, error) {
	store, err := cachestore.New(cfg.toStore())
	if err != nil {
		return nil, err
	}

	c := &Cache{
		store:     store,
		log:       slog.Default(),
		metrics:   metrics.Nop(),
		retention: cfg.Retention,
		entries:   xsync.NewMapOf[string, *entry](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Subscribe registers an observer for key. The returned subscription sees
// the current snapshot immediately and every subsequent transition through
// Updates. Subscriptions to structurally equal keys share one entry and one
// in-flight fetch. Close the subscription when the owning view goes away.
func (c *Cache) Subscribe(key Key, fetcher Fetcher, opts ...SubscribeOption) (*Subscription, error) {
	var so subscribeOptions
	so.enabled = true
	for _, opt := range opts {
		opt(&so)
	}

	if fetcher == nil {
		if c.client == nil {
			return nil, ErrNoFetcher
		}
		fetcher = c.defaultFetcher(key)
	}

	e := c.entryFor(key)

	e.mu.Lock()
	e.fetcher = fetcher
	s := &Subscription{
		cache:   c,
		entry:   e,
		ch:      make(chan Snapshot, 1),
		enabled: so.enabled,
	}
	e.subs[s] = struct{}{}
	needFetch := s.enabled && e.flights == 0 && (e.status != StatusSuccess || e.stale)
	served := e.status == StatusSuccess && !e.stale
	e.mu.Unlock()

	if needFetch {
		c.metrics.CacheMisses.Inc()
		c.startFetch(e, false)
	} else if served {
		c.metrics.CacheHits.Inc()
	}
	return s, nil
}

// Invalidate marks every entry whose key starts with prefix as stale.
// Entries with at least one active subscriber refetch immediately; idle
// entries are refetched on their next subscription. Invalidating while a
// fetch is in flight coalesces into a single follow-up fetch rather than a
// request storm. Invalidation is idempotent.
func (c *Cache) Invalidate(prefix Key) {
	c.entries.Range(func(_ string, e *entry) bool {
		if !e.key.HasPrefix(prefix) {
			return true
		}

		e.mu.Lock()
		e.stale = true
		switch {
		case e.flights > 0:
			e.pending = true
			e.mu.Unlock()
		case e.activeSubsLocked() > 0:
			e.mu.Unlock()
			c.startFetch(e, false)
		default:
			e.mu.Unlock()
		}

		c.metrics.Invalidations.Inc()
		c.log.Debug("invalidated cache entry", "key", e.skey)
		return true
	})
}

// InvalidateKeys invalidates several key prefixes in order.
func (c *Cache) InvalidateKeys(prefixes []Key) {
	for _, prefix := range prefixes {
		c.Invalidate(prefix)
	}
}

// Fetch is a one-shot typed read-through: it serves fresh cached data when
// available and otherwise joins (or starts) a fetch and waits for it. Meant
// for lookup tables that views resolve labels from without subscribing.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetcher Fetcher) (T, error) {
	var zero T

	e := c.entryFor(key)
	e.mu.Lock()
	if e.status == StatusSuccess && !e.stale {
		if data, ok := c.store.Get(e.skey); ok {
			e.mu.Unlock()
			c.metrics.CacheHits.Inc()
			return convert[T](data)
		}
	}
	e.mu.Unlock()

	sub, err := c.Subscribe(key, fetcher)
	if err != nil {
		return zero, err
	}
	defer sub.Close()

	snap := sub.Snapshot()
	for snap.Loading || snap.Status == StatusIdle {
		select {
		case snap = <-sub.Updates():
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	if snap.Err != nil && snap.Data == nil {
		return zero, snap.Err
	}
	return convert[T](snap.Data)
}

func convert[T any](data any) (T, error) {
	var zero T
	if data == nil {
		return zero, nil
	}
	typed, ok := data.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}

// entryFor returns the entry for key, creating it on first use.
func (c *Cache) entryFor(key Key) *entry {
	skey := key.Serialize()
	e, _ := c.entries.LoadOrCompute(skey, func() *entry {
		return &entry{
			key:  append(Key(nil), key...),
			skey: skey,
			subs: make(map[*Subscription]struct{}),
		}
	})
	return e
}

// startFetch issues a new fetch for e. Without force, an in-flight fetch
// absorbs the request into a single follow-up; with force a fresh request
// is issued immediately and any still-flying older response is discarded
// when it lands (last issued request wins).
func (c *Cache) startFetch(e *entry, force bool) {
	e.mu.Lock()
	if e.flights > 0 && !force {
		e.pending = true
		e.mu.Unlock()
		return
	}
	e.issued++
	gen := e.issued
	e.flights++
	e.status = StatusLoading
	e.stale = false
	fetcher := e.fetcher
	e.mu.Unlock()

	c.broadcast(e)

	go func() {
		data, err := fetcher(context.Background())
		c.apply(e, gen, data, err)
	}()
}

// apply lands a fetch result. Responses from superseded requests are
// dropped so an older, slower response can never overwrite newer data. A
// dropped response can still be the last flight down: subscribers must see
// the entry settle, and an invalidation that arrived while only the loser
// was flying still owes its follow-up fetch.
func (c *Cache) apply(e *entry, gen uint64, data any, err error) {
	e.mu.Lock()
	e.flights--

	if gen != e.issued {
		settled := e.flights == 0
		pending := settled && e.pending
		if pending {
			e.pending = false
		}
		e.mu.Unlock()
		c.metrics.Fetches.WithLabelValues(metrics.OutcomeDiscarded).Inc()
		c.log.Debug("discarded superseded response", "key", e.skey)
		if settled {
			c.broadcast(e)
		}
		if pending {
			c.startFetch(e, false)
		}
		return
	}

	if err != nil {
		// Keep the last good payload in the store; only the error state
		// changes. A first-ever failure simply has no payload to keep.
		e.err = err
		e.status = StatusError
	} else {
		c.store.Set(e.skey, data)
		e.err = nil
		e.status = StatusSuccess
		e.lastFetchedAt = time.Now()
	}
	pending := e.pending
	e.pending = false
	e.mu.Unlock()

	if err != nil {
		c.metrics.Fetches.WithLabelValues(metrics.OutcomeError).Inc()
		c.log.Warn("fetch failed", "key", e.skey, "error", err)
	} else {
		c.metrics.Fetches.WithLabelValues(metrics.OutcomeSuccess).Inc()
	}

	c.broadcast(e)

	if pending {
		c.startFetch(e, false)
	}
}

// broadcast pushes the current snapshot to every enabled subscriber.
func (c *Cache) broadcast(e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := c.snapshotLocked(e)
	for s := range e.subs {
		if s.enabled && !s.closed {
			s.push(snap)
		}
	}
}

// snapshotLocked assembles the observable state of e. Callers hold e.mu.
func (c *Cache) snapshotLocked(e *entry) Snapshot {
	var data any
	if d, ok := c.store.Get(e.skey); ok {
		data = d
	}
	return Snapshot{
		Data:          data,
		Err:           e.err,
		Loading:       e.flights > 0,
		Status:        e.status,
		LastFetchedAt: e.lastFetchedAt,
	}
}

// release detaches a closed subscription and schedules entry eviction once
// the retention window elapses with no subscriber coming back.
func (c *Cache) release(e *entry) {
	time.AfterFunc(c.retention, func() {
		e.mu.Lock()
		evict := len(e.subs) == 0 && e.flights == 0
		e.mu.Unlock()
		if evict {
			c.entries.Delete(e.skey)
			c.store.Delete(e.skey)
		}
	})
}

// defaultFetcher derives a GET fetcher from the key's leading path element.
func (c *Cache) defaultFetcher(key Key) Fetcher {
	return func(ctx context.Context) (any, error) {
		if len(key) == 0 {
			return nil, ErrNoFetcher
		}
		path, ok := key[0].(string)
		if !ok {
			return nil, ErrNoFetcher
		}
		var out any
		if err := c.client.JSON(ctx, "GET", path, nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}
