// Package mutation wraps entity writes with the invalidate-and-notify flow
// every page otherwise re-implements by hand: execute the write, and only
// on success invalidate the declared cache keys and raise a success toast;
// on failure raise an error toast and leave the cache untouched.
package mutation

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/dokumatek/erpkit/client"
	"github.com/dokumatek/erpkit/notify"
	"github.com/dokumatek/erpkit/query"
)

// Descriptor declares one mutation type: how to execute it and what must
// happen after. Instantiate once per mutation type so the invalidation list
// is declared in a single place rather than re-typed at every call site.
type Descriptor[I, R any] struct {
	// Name identifies the mutation in logs and default notifications.
	Name string

	// Execute performs the write, typically a client call.
	Execute func(ctx context.Context, input I) (R, error)

	// Invalidates lists the cache key prefixes refreshed after success.
	Invalidates []query.Key

	// SuccessTitle and SuccessMessage form the success notification.
	SuccessTitle   string
	SuccessMessage string

	// ErrorTitle heads the failure notification; the description comes
	// from the underlying error.
	ErrorTitle string
}

// Mutation executes a Descriptor against a cache and a notifier.
type Mutation[I, R any] struct {
	desc     Descriptor[I, R]
	cache    *query.Cache
	notifier notify.Notifier
	pending  atomic.Bool
}

// New builds a Mutation. The orchestrator does not deduplicate concurrent
// calls; the view disables its trigger control while IsPending is true.
func New[I, R any](desc Descriptor[I, R], cache *query.Cache, notifier notify.Notifier) *Mutation[I, R] {
	return &Mutation[I, R]{desc: desc, cache: cache, notifier: notifier}
}

// Mutate runs the write. On success every declared key prefix is
// invalidated, strictly after the response arrived, and a success
// notification is emitted. On failure nothing is invalidated and an error
// notification carries the underlying message. The returned error has
// already been surfaced to the user; callers branch on it but must not
// re-raise it.
func (m *Mutation[I, R]) Mutate(ctx context.Context, input I) (R, error) {
	m.pending.Store(true)
	defer m.pending.Store(false)

	result, err := m.desc.Execute(ctx, input)
	if err != nil {
		m.notifier.Notify(ctx, notify.KindError, m.errorTitle(), userMessage(err))
		var zero R
		return zero, err
	}

	m.cache.InvalidateKeys(m.desc.Invalidates)
	m.notifier.Notify(ctx, notify.KindSuccess, m.successTitle(), m.desc.SuccessMessage)
	return result, nil
}

// IsPending reports whether a Mutate call is currently running.
func (m *Mutation[I, R]) IsPending() bool {
	return m.pending.Load()
}

func (m *Mutation[I, R]) successTitle() string {
	if m.desc.SuccessTitle != "" {
		return m.desc.SuccessTitle
	}
	return m.desc.Name
}

func (m *Mutation[I, R]) errorTitle() string {
	if m.desc.ErrorTitle != "" {
		return m.desc.ErrorTitle
	}
	return m.desc.Name + " failed"
}

// userMessage extracts the most useful description from a write failure:
// the server's own message for rejected requests, a transport hint when no
// response arrived, the plain error text otherwise.
func userMessage(err error) string {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return "the server could not be reached"
	}
	return err.Error()
}
