// Package query fetches pages of rows from the remote API: per-key
// caching, stale-while-revalidate, pagination-aware filter changes and
// out-of-order response sequencing live here.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ispconsole/backoffice/internal/pkg/logger"
	"github.com/ispconsole/backoffice/internal/port"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "query_cache_hits_total",
		Help: "List requests served from the page cache.",
	}, []string{"entity"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "query_cache_misses_total",
		Help: "List requests that went to the backend.",
	}, []string{"entity"})

	staleDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "query_stale_responses_dropped_total",
		Help: "Responses discarded because a newer request was issued for the same key.",
	}, []string{"entity"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "query_fetch_failures_total",
		Help: "List fetches that ended in an error or a failed envelope.",
	}, []string{"entity"})
)

// Key identifies one cached page.
type Key struct {
	Entity  string
	Page    int
	PerPage int
	Filter  string
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%d|%d|%s", k.Entity, k.Page, k.PerPage, k.Filter)
}

// Prefix is the invalidation prefix covering every page of an entity.
func Prefix(entity string) string { return entity + "|" }

// Options tunes an Engine.
type Options struct {
	ReadRetries int
	CacheTTL    time.Duration
}

// Engine coordinates cached list fetches across all mounted views. It
// owns the per-key sequence counters used to drop out-of-order
// responses and the invalidation fan-out.
type Engine struct {
	backend port.Backend
	cache   port.Cache
	pub     port.InvalidationPublisher
	opts    Options

	mu           sync.Mutex
	seq          map[string]uint64
	onInvalidate []func(entity string)
}

// NewEngine builds a query engine. pub may be nil when no event bus is
// configured.
func NewEngine(backend port.Backend, cache port.Cache, pub port.InvalidationPublisher, opts Options) *Engine {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	return &Engine{
		backend: backend,
		cache:   cache,
		pub:     pub,
		opts:    opts,
		seq:     map[string]uint64{},
	}
}

// OnInvalidate registers a local observer (the websocket hub) called
// on every invalidation, local or peer-published.
func (e *Engine) OnInvalidate(fn func(entity string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onInvalidate = append(e.onInvalidate, fn)
}

// Invalidate evicts every cached page of an entity, publishes the
// notice to peers and notifies local observers. Called by mutations on
// success; no optimistic updates exist anywhere.
func (e *Engine) Invalidate(ctx context.Context, entity string) {
	if err := e.cache.DeletePrefix(ctx, Prefix(entity)); err != nil {
		logger.From(ctx).Warn("cache invalidation failed", "entity", entity, "err", err)
	}
	if e.pub != nil {
		if err := e.pub.PublishInvalidation(ctx, entity); err != nil {
			logger.From(ctx).Warn("invalidation publish failed", "entity", entity, "err", err)
		}
	}
	e.notifyLocal(entity)
}

// InvalidateLocal evicts the local cache only; used when the notice
// came from a peer over the bus.
func (e *Engine) InvalidateLocal(ctx context.Context, entity string) {
	if err := e.cache.DeletePrefix(ctx, Prefix(entity)); err != nil {
		logger.From(ctx).Warn("cache invalidation failed", "entity", entity, "err", err)
	}
	e.notifyLocal(entity)
}

func (e *Engine) notifyLocal(entity string) {
	e.mu.Lock()
	observers := make([]func(string), len(e.onInvalidate))
	copy(observers, e.onInvalidate)
	e.mu.Unlock()
	for _, fn := range observers {
		fn(entity)
	}
}

// issue reserves the next sequence number for a key.
func (e *Engine) issue(key string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq[key]++
	return e.seq[key]
}

// current returns the latest issued sequence for a key.
func (e *Engine) current(key string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq[key]
}

// fetch loads one page, consulting the cache unless force is set.
// stale reports that the response lost the sequence race and must not
// be committed.
func (e *Engine) fetch(ctx context.Context, key Key, force bool) (page port.ListPage, cached bool, stale bool, err error) {
	ck := key.String()

	if !force {
		if raw, ok, cerr := e.cache.Get(ctx, ck); cerr == nil && ok {
			if jerr := json.Unmarshal(raw, &page); jerr == nil {
				cacheHits.WithLabelValues(key.Entity).Inc()
				return page, true, false, nil
			}
			// Unreadable entry: drop it and refetch.
			_ = e.cache.Delete(ctx, ck)
		}
	}
	cacheMisses.WithLabelValues(key.Entity).Inc()

	seq := e.issue(ck)
	page, err = e.listWithRetry(ctx, key)

	if e.current(ck) != seq {
		staleDrops.WithLabelValues(key.Entity).Inc()
		return port.ListPage{}, false, true, nil
	}
	if err != nil {
		fetchFailures.WithLabelValues(key.Entity).Inc()
		return port.ListPage{}, false, false, err
	}

	if raw, jerr := json.Marshal(page); jerr == nil {
		if cerr := e.cache.Set(ctx, ck, raw, e.opts.CacheTTL); cerr != nil {
			logger.From(ctx).Warn("cache set failed", "key", ck, "err", cerr)
		}
	}
	return page, false, false, nil
}

// listWithRetry retries transport failures on reads. Envelope refusals
// ({success:false}) are the API's answer and are not retried.
func (e *Engine) listWithRetry(ctx context.Context, key Key) (port.ListPage, error) {
	var lastErr error
	attempts := e.opts.ReadRetries + 1
	for i := 0; i < attempts; i++ {
		page, err := e.backend.List(ctx, key.Entity, key.Page, key.PerPage, key.Filter)
		if err == nil {
			return page, nil
		}
		var envErr *port.EnvelopeError
		if errors.As(err, &envErr) {
			return port.ListPage{}, err
		}
		lastErr = err
	}
	return port.ListPage{}, lastErr
}
