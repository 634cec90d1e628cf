package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/courseforge/commerce/internal/adapter/api"
	domainErrors "github.com/courseforge/commerce/internal/domain/errors"
	"github.com/courseforge/commerce/internal/domain/model"
)

// storageKey is the single namespaced key under which the cache persists.
const storageKey = "commerce.session-cache"

// identityFlightKey coalesces concurrent identity resolutions.
const identityFlightKey = "identity"

// Entry is one cached, identity-scoped query result. A stored error does not
// evict previously fetched data.
type Entry struct {
	Data      any
	Err       error
	FetchedAt time.Time
}

// Cache is the process-wide session cache: the current identity plus every
// identity-scoped query entry. It is the only shared mutable resource of the
// subsystem and is mutated exclusively through its methods.
type Cache struct {
	store  Store
	auth   api.AuthenticationAPI
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	identity model.Identity
	queries  map[string]*Entry

	flight singleflight.Group
}

// NewCache builds the cache and restores previously persisted state. A nil
// auth collaborator is allowed; the cache then degrades to always-anonymous.
func NewCache(store Store, auth api.AuthenticationAPI, ttl time.Duration, logger *slog.Logger) *Cache {
	c := &Cache{
		store:   store,
		auth:    auth,
		ttl:     ttl,
		logger:  logger,
		queries: make(map[string]*Entry),
	}
	c.restore()
	return c
}

type persistedEntry struct {
	Data      json.RawMessage `json:"data"`
	FetchedAt time.Time       `json:"fetched_at"`
}

type persistedCache struct {
	Identity model.Identity            `json:"identity"`
	Queries  map[string]persistedEntry `json:"queries"`
}

func (c *Cache) restore() {
	raw, ok := c.store.Get(storageKey)
	if !ok {
		return
	}
	var p persistedCache
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("discarding unreadable session cache", slog.String("error", err.Error()))
		c.store.Delete(storageKey)
		return
	}
	c.identity = p.Identity
	for key, e := range p.Queries {
		c.queries[key] = &Entry{Data: e.Data, FetchedAt: e.FetchedAt}
	}
}

// persistLocked writes identity and data-bearing entries through to the
// store. Errors are in-memory only.
func (c *Cache) persistLocked() {
	if c.identity.IsUnknown() {
		c.store.Delete(storageKey)
		return
	}
	p := persistedCache{Identity: c.identity, Queries: make(map[string]persistedEntry, len(c.queries))}
	for key, e := range c.queries {
		if e.Data == nil {
			continue
		}
		raw, err := json.Marshal(e.Data)
		if err != nil {
			continue
		}
		p.Queries[key] = persistedEntry{Data: raw, FetchedAt: e.FetchedAt}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("session cache not persistable", slog.String("error", err.Error()))
		return
	}
	c.store.Set(storageKey, raw, time.Now().Add(c.ttl))
}

// Identity returns the current tri-state identity without resolving it.
func (c *Cache) Identity() model.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// SetIdentity records the result of an authentication check. Moving between
// two different concrete identities drops every cached query; setting the
// unknown identity clears the persisted state.
func (c *Cache) SetIdentity(id model.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.identity
	c.identity = id

	if prev.Resolved && id.Resolved && !prev.Same(id) {
		c.invalidateQueriesLocked()
	}
	c.persistLocked()
}

// InvalidateResourceQueries drops every cached query entry, keeping identity.
func (c *Cache) InvalidateResourceQueries() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateQueriesLocked()
	c.persistLocked()
}

func (c *Cache) invalidateQueriesLocked() {
	c.queries = make(map[string]*Entry)
}

// QueryCount reports the number of cached query entries.
func (c *Cache) QueryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queries)
}

// ResolveIdentity returns the identity, performing at most one concurrent
// authentication check. Callers arriving during an in-flight resolution
// observe its result instead of issuing their own.
func (c *Cache) ResolveIdentity(ctx context.Context) (model.Identity, error) {
	if id := c.Identity(); !id.IsUnknown() {
		return id, nil
	}
	return c.resolve(ctx)
}

// RefreshIdentity discards the current identity and re-resolves it. Used when
// a resource call reports an authorization failure; concurrent refreshes
// coalesce into a single check.
func (c *Cache) RefreshIdentity(ctx context.Context) (model.Identity, error) {
	c.mu.Lock()
	c.identity = model.UnknownIdentity()
	c.mu.Unlock()
	return c.resolve(ctx)
}

func (c *Cache) resolve(ctx context.Context) (model.Identity, error) {
	v, err, _ := c.flight.Do(identityFlightKey, func() (any, error) {
		if c.auth == nil {
			id := model.AnonymousIdentity()
			c.SetIdentity(id)
			return id, nil
		}
		user, err := c.auth.Me(ctx)
		if err != nil {
			if domainErrors.IsAuthorization(err) {
				id := model.AnonymousIdentity()
				c.SetIdentity(id)
				return id, nil
			}
			return model.UnknownIdentity(), err
		}
		id := model.ResolvedIdentity(user)
		c.SetIdentity(id)
		return id, nil
	})
	if err != nil {
		return model.UnknownIdentity(), err
	}
	return v.(model.Identity), nil
}

// Login clears cached per-user data pre-emptively and delegates to the
// authentication collaborator.
func (c *Cache) Login(ctx context.Context) error {
	if c.auth == nil {
		return domainErrors.ConfigurationError{Component: "authentication API"}
	}
	c.clearBeforeAuthChange()
	return c.auth.Login(ctx)
}

// Register clears cached per-user data pre-emptively and delegates to the
// authentication collaborator.
func (c *Cache) Register(ctx context.Context) error {
	if c.auth == nil {
		return domainErrors.ConfigurationError{Component: "authentication API"}
	}
	c.clearBeforeAuthChange()
	return c.auth.Register(ctx)
}

// Logout clears cached per-user data, delegates to the collaborator, and
// settles on the anonymous identity.
func (c *Cache) Logout(ctx context.Context) error {
	if c.auth == nil {
		return domainErrors.ConfigurationError{Component: "authentication API"}
	}
	c.clearBeforeAuthChange()
	if err := c.auth.Logout(ctx); err != nil {
		return err
	}
	c.SetIdentity(model.AnonymousIdentity())
	return nil
}

// clearBeforeAuthChange wipes cached queries and the persisted identity
// before the collaborator redirects, so stale per-user data is never shown
// to the next identity.
func (c *Cache) clearBeforeAuthChange() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateQueriesLocked()
	c.identity = model.UnknownIdentity()
	c.persistLocked()
}

// ScopedKey derives the cache key for a resource kind under the current
// identity, so entries from different identities never collide.
func (c *Cache) ScopedKey(kind string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return kind + ":" + c.identity.Key()
}

// Lookup returns a copy of the cached entry for key.
func (c *Cache) Lookup(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.queries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// StoreEntry records fetched data for key and clears any stored error.
func (c *Cache) StoreEntry(key string, data any, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries[key] = &Entry{Data: data, FetchedAt: fetchedAt}
	c.persistLocked()
}

// StoreError records a fetch error for key, keeping previously fetched data
// available alongside it.
func (c *Cache) StoreError(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.queries[key]
	if !ok {
		e = &Entry{}
		c.queries[key] = e
	}
	e.Err = err
}

// InvalidateEntry removes the entry for key.
func (c *Cache) InvalidateEntry(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.queries, key)
	c.persistLocked()
}

// Dispose flushes the cache to the store. Registered as the fx OnStop hook.
func (c *Cache) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persistLocked()
}
