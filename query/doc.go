// Package query implements the process-wide query cache that keeps every
// view observing the same server-backed data.
//
// # Overview
//
// Reads are addressed by a Key: an ordered tuple, typically a resource path
// plus narrowing arguments. Keys compare structurally, so two views asking
// for Key{"/api/master/users"} share one cache entry and one in-flight
// request. Payloads live in a bounded, sharded store (see
// internal/cachestore); the entry records around them track lifecycle:
//
//	idle → loading → success | error
//
// with refetches re-entering loading. Entries are created on first
// subscription and evicted once the last subscriber is gone and the
// retention window has elapsed.
//
// # Subscriptions
//
// Subscribe returns a handle that serves the current snapshot immediately
// and delivers transitions through a coalescing channel. A failed refetch
// never clears previously good data: the snapshot carries both the stale
// payload and the error, and the view decides how to degrade.
//
// # Invalidation
//
// Invalidate marks every entry whose key starts with the given prefix as
// stale. Subscribed entries refetch at once; idle entries refetch lazily on
// the next subscription. Invalidations arriving while a fetch is in flight
// coalesce into exactly one follow-up request.
//
// # Ordering
//
// Each issued request carries a generation tag. When responses land out of
// order, only the newest issued request may write; older responses are
// discarded, so a slow stale response can never overwrite fresh data.
//
// # Usage
//
//	cache, _ := query.New(query.DefaultConfig(), query.WithClient(api))
//	sub, _ := cache.Subscribe(query.Key{"/api/master/fabrics"}, nil)
//	defer sub.Close()
//	for snap := range sub.Updates() {
//	    render(snap)
//	}
package query
