// Package query provides the generic data-fetching primitive binding a
// collaborator call to a session-scoped cache entry.
package query

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	domainErrors "github.com/courseforge/commerce/internal/domain/errors"
	"github.com/courseforge/commerce/internal/session"
)

// Fetcher performs the underlying collaborator call.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Options configures a query.
type Options struct {
	// StaleAfter bounds how long a cached value is served without refetching.
	StaleAfter time.Duration
	// SessionScoped queries resolve the identity first and never issue the
	// underlying call for an anonymous session.
	SessionScoped bool
}

// Result is a snapshot of the query state handed to the caller.
type Result[T any] struct {
	Data T
	Err  error
	// Fetching is true while a fetch or refetch is in flight.
	Fetching bool
	// IsPending is true while no value was ever fetched, which is distinct
	// from "fetched and empty".
	IsPending bool
}

// Query wraps one resource kind. Concurrent reads of the same query are
// serialized so an invalidation is never outrun by a stale refetch.
type Query[T any] struct {
	kind  string
	cache *session.Cache
	fetch Fetcher[T]
	opts  Options

	mu       sync.Mutex
	fetching atomic.Bool
}

// New builds a query for a resource kind.
func New[T any](cache *session.Cache, kind string, fetch Fetcher[T], opts Options) *Query[T] {
	return &Query[T]{kind: kind, cache: cache, fetch: fetch, opts: opts}
}

// Get returns the cached value, fetching it first when the entry is missing
// or stale. An authorization failure hands recovery to the session cache and
// surfaces the error; any other failure is stored alongside stale data.
func (q *Query[T]) Get(ctx context.Context) Result[T] {
	if q.opts.SessionScoped {
		id, err := q.cache.ResolveIdentity(ctx)
		if err != nil {
			return Result[T]{Err: err, IsPending: true}
		}
		if id.IsAnonymous() {
			return Result[T]{IsPending: true}
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	key := q.cache.ScopedKey(q.kind)
	if entry, ok := q.cache.Lookup(key); ok {
		if data, ok := decode[T](entry); ok && !q.stale(entry.FetchedAt) {
			return Result[T]{Data: data, Err: entry.Err}
		}
	}
	return q.refetch(ctx, key)
}

// Peek returns the current state without triggering a fetch.
func (q *Query[T]) Peek() Result[T] {
	key := q.cache.ScopedKey(q.kind)
	entry, ok := q.cache.Lookup(key)
	if !ok {
		return Result[T]{IsPending: true, Fetching: q.fetching.Load()}
	}
	data, decoded := decode[T](entry)
	return Result[T]{
		Data:      data,
		Err:       entry.Err,
		Fetching:  q.fetching.Load(),
		IsPending: !decoded,
	}
}

// Prefetch warms the cache, discarding the result.
func (q *Query[T]) Prefetch(ctx context.Context) {
	_ = q.Get(ctx)
}

// Invalidate removes the cached entry; the next read refetches.
func (q *Query[T]) Invalidate() {
	q.cache.InvalidateEntry(q.cache.ScopedKey(q.kind))
}

func (q *Query[T]) stale(fetchedAt time.Time) bool {
	return q.opts.StaleAfter > 0 && time.Since(fetchedAt) >= q.opts.StaleAfter
}

// refetch runs the fetcher with q.mu held.
func (q *Query[T]) refetch(ctx context.Context, key string) Result[T] {
	q.fetching.Store(true)
	defer q.fetching.Store(false)

	data, err := q.fetch(ctx)
	if err != nil {
		if domainErrors.IsAuthorization(err) {
			// Recovery is owned by the session cache; concurrent failing
			// queries coalesce into one re-resolution.
			_, _ = q.cache.RefreshIdentity(ctx)
		}
		q.cache.StoreError(key, err)
		entry, ok := q.cache.Lookup(key)
		if !ok {
			return Result[T]{Err: err, IsPending: true}
		}
		stale, decoded := decode[T](entry)
		return Result[T]{Data: stale, Err: err, IsPending: !decoded}
	}

	q.cache.StoreEntry(key, data, time.Now())
	return Result[T]{Data: data}
}

// decode extracts a typed value from a cache entry. Entries restored from the
// persisted store hold raw JSON and are decoded lazily.
func decode[T any](entry session.Entry) (T, bool) {
	var zero T
	if entry.Data == nil {
		return zero, false
	}
	if v, ok := entry.Data.(T); ok {
		return v, true
	}
	if raw, ok := entry.Data.(json.RawMessage); ok {
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, true
		}
	}
	return zero, false
}
