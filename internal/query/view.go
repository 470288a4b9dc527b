package query

import (
	"context"
	"sync"

	"github.com/ispconsole/backoffice/internal/filter"
	"github.com/ispconsole/backoffice/internal/port"
	"github.com/ispconsole/backoffice/internal/table"
)

// DefaultPerPage is used until the page-size selector picks another
// value.
const DefaultPerPage = 10

// View is one mounted table's query state: current page, filter,
// loaded rows. Previous rows stay visible while a new page loads
// (stale-while-revalidate); a failed envelope renders as an empty
// result plus one notification.
type View struct {
	eng    *Engine
	notify port.Notifier
	entity string

	mu         sync.Mutex
	page       int
	perPage    int
	filterQ    string
	rows       []map[string]any
	pagination table.Pagination
	loaded     bool
	fetching   bool
}

// NewView builds a view over one entity. notify may be nil.
func (e *Engine) NewView(entity string, notify port.Notifier) *View {
	return &View{
		eng:     e,
		notify:  notify,
		entity:  entity,
		page:    1,
		perPage: DefaultPerPage,
	}
}

// Init restores table state (typically from URL query params) without
// issuing a fetch. Call before the first Load; it has no effect on a
// view that already loaded.
func (v *View) Init(page, perPage int, filterQ string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loaded || v.fetching {
		return
	}
	if page >= 1 {
		v.page = page
	}
	if perPage >= 1 {
		v.perPage = perPage
	}
	v.filterQ = filterQ
}

// Rows returns the currently visible rows.
func (v *View) Rows() []map[string]any {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rows
}

// Pagination returns the last loaded paging block.
func (v *View) Pagination() table.Pagination {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pagination
}

// Loading reports the first-load state (nothing ever loaded).
func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.loaded && v.fetching
}

// Fetching reports any in-flight fetch, including background
// refetches over visible rows.
func (v *View) Fetching() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetching
}

// Load fetches the current page, serving from cache when possible.
func (v *View) Load(ctx context.Context) error {
	return v.load(ctx, false)
}

// Refresh forces a refetch of the current page, bypassing the cache.
func (v *View) Refresh(ctx context.Context) error {
	return v.load(ctx, true)
}

// SetPage navigates to page n, clamped to the server-reported range.
func (v *View) SetPage(ctx context.Context, n int) error {
	v.mu.Lock()
	n = v.pagination.Clamp(n)
	if v.loaded && n == v.page {
		v.mu.Unlock()
		return nil
	}
	v.page = n
	v.mu.Unlock()
	return v.load(ctx, false)
}

// SetPerPage changes the requested page size and resets to page 1.
func (v *View) SetPerPage(ctx context.Context, perPage int) error {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	v.mu.Lock()
	if perPage == v.perPage {
		v.mu.Unlock()
		return nil
	}
	v.perPage = perPage
	v.page = 1
	v.mu.Unlock()
	return v.load(ctx, false)
}

// ApplyFilter installs a new filter query. The page resets to 1 and a
// forced refetch is issued, unless the change explicitly asks to keep
// the current page.
func (v *View) ApplyFilter(ctx context.Context, ch filter.Change) error {
	v.mu.Lock()
	changed := ch.Query != v.filterQ
	v.filterQ = ch.Query
	if changed && ch.ResetPage {
		v.page = 1
	}
	v.mu.Unlock()
	if !changed {
		return nil
	}
	return v.load(ctx, ch.ResetPage)
}

func (v *View) key() Key {
	return Key{Entity: v.entity, Page: v.page, PerPage: v.perPage, Filter: v.filterQ}
}

func (v *View) load(ctx context.Context, force bool) error {
	v.mu.Lock()
	key := v.key()
	v.fetching = true
	v.mu.Unlock()

	page, _, stale, err := v.eng.fetch(ctx, key, force)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.fetching = false

	if stale {
		// A newer request owns this key; keep whatever it committed.
		return nil
	}
	if err != nil {
		// Rows clear, loading terminates, the user gets one toast.
		v.rows = nil
		v.loaded = true
		if v.notify != nil {
			v.notify.Error(ctx, err.Error())
		}
		return nil
	}
	v.rows = page.Rows
	v.pagination = page.Pagination
	v.loaded = true
	return nil
}
