package query

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/ispconsole/backoffice/internal/adapter/cache/memory"
	"github.com/ispconsole/backoffice/internal/filter"
	"github.com/ispconsole/backoffice/internal/port"
	"github.com/ispconsole/backoffice/internal/table"
)

type listCall struct {
	page    int
	perPage int
	filter  string
}

// fakeBackend serves deterministic pages and records every call. A
// non-nil respond hook lets tests fail specific calls or block for
// ordering scenarios.
type fakeBackend struct {
	mu      sync.Mutex
	calls   []listCall
	respond func(n int, call listCall) (port.ListPage, error)
}

func (f *fakeBackend) List(_ context.Context, entity string, page, perPage int, filterQuery string) (port.ListPage, error) {
	f.mu.Lock()
	call := listCall{page: page, perPage: perPage, filter: filterQuery}
	f.calls = append(f.calls, call)
	n := len(f.calls)
	respond := f.respond
	f.mu.Unlock()

	if respond != nil {
		return respond(n, call)
	}
	return port.ListPage{
		Rows: []map[string]any{{"id": fmt.Sprintf("%s-%d", entity, page)}},
		Pagination: table.Pagination{
			Count: 1, CurrentPage: page, PerPage: perPage, Total: 100, TotalPages: 10,
		},
	}, nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) lastCall() listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeBackend) Get(context.Context, string, string) (map[string]any, error) {
	return nil, nil
}
func (f *fakeBackend) Create(context.Context, string, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (f *fakeBackend) Update(context.Context, string, string, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (f *fakeBackend) Delete(context.Context, string, string) error { return nil }
func (f *fakeBackend) Options(context.Context, string) ([]map[string]any, error) {
	return nil, nil
}
func (f *fakeBackend) Login(context.Context, string, string, string) (port.Identity, error) {
	return port.Identity{}, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	errors []string
}

func (n *fakeNotifier) Success(context.Context, string) {}
func (n *fakeNotifier) Error(_ context.Context, msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

func newTestEngine(backend port.Backend) *Engine {
	return NewEngine(backend, memory.New(), nil, Options{ReadRetries: 2})
}

func TestView_RepeatPageIsCacheHit(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	v := newTestEngine(backend).NewView("staffs", nil)
	ctx := context.Background()

	if err := v.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := v.SetPage(ctx, 2); err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if backend.callCount() != 2 {
		t.Fatalf("expected 2 backend calls, got %d", backend.callCount())
	}

	// Back to page 1 and again to page 2: both cached now.
	if err := v.SetPage(ctx, 1); err != nil {
		t.Fatalf("back to 1: %v", err)
	}
	if err := v.SetPage(ctx, 2); err != nil {
		t.Fatalf("back to 2: %v", err)
	}
	if backend.callCount() != 2 {
		t.Fatalf("repeat pages must hit the cache, got %d calls", backend.callCount())
	}
}

func TestView_FilterChangeResetsToPageOne(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	v := newTestEngine(backend).NewView("clients", nil)
	ctx := context.Background()

	_ = v.Load(ctx)
	_ = v.SetPage(ctx, 4)

	if err := v.ApplyFilter(ctx, filter.Change{Query: "name=john", ResetPage: true}); err != nil {
		t.Fatalf("filter: %v", err)
	}
	last := backend.lastCall()
	if last.page != 1 {
		t.Fatalf("filter change must reset to page 1, requested page %d", last.page)
	}
	if last.filter != "name=john" {
		t.Fatalf("filter query not forwarded verbatim: %q", last.filter)
	}
}

func TestView_FilterChangeMayKeepPage(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	v := newTestEngine(backend).NewView("clients", nil)
	ctx := context.Background()

	_ = v.Load(ctx)
	_ = v.SetPage(ctx, 4)

	if err := v.ApplyFilter(ctx, filter.Change{Query: "zone=north", ResetPage: false}); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if last := backend.lastCall(); last.page != 4 {
		t.Fatalf("ResetPage:false must keep page 4, requested %d", last.page)
	}
}

func TestView_HashMarkerCompat(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	v := newTestEngine(backend).NewView("clients", nil)
	ctx := context.Background()

	_ = v.Load(ctx)
	_ = v.SetPage(ctx, 3)

	_ = v.ApplyFilter(ctx, filter.ChangeFromQuery("zone=north&#keep"))
	if last := backend.lastCall(); last.page != 3 {
		t.Fatalf("'#' marker must suppress the page reset, requested %d", last.page)
	}

	_ = v.ApplyFilter(ctx, filter.ChangeFromQuery("zone=south"))
	if last := backend.lastCall(); last.page != 1 {
		t.Fatalf("plain filter change must reset to page 1, requested %d", last.page)
	}
}

func TestView_UnchangedFilterIsNoop(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	v := newTestEngine(backend).NewView("clients", nil)
	ctx := context.Background()

	_ = v.ApplyFilter(ctx, filter.Change{Query: "name=john", ResetPage: true})
	n := backend.callCount()
	_ = v.ApplyFilter(ctx, filter.Change{Query: "name=john", ResetPage: true})
	if backend.callCount() != n {
		t.Fatalf("identical filter must not refetch")
	}
}

func TestView_EnvelopeFailureRendersEmpty(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{
		respond: func(int, listCall) (port.ListPage, error) {
			return port.ListPage{}, &port.EnvelopeError{Message: "backend said no"}
		},
	}
	notify := &fakeNotifier{}
	v := newTestEngine(backend).NewView("staffs", notify)
	ctx := context.Background()

	if err := v.Load(ctx); err != nil {
		t.Fatalf("envelope failures must be swallowed, got %v", err)
	}
	if len(v.Rows()) != 0 {
		t.Fatalf("failed envelope must render zero rows")
	}
	if v.Loading() || v.Fetching() {
		t.Fatalf("loading must terminate after a failed fetch")
	}
	if len(notify.errors) != 1 || notify.errors[0] != "backend said no" {
		t.Fatalf("expected exactly one toast, got %v", notify.errors)
	}
	// Envelope refusals must not burn read retries.
	if backend.callCount() != 1 {
		t.Fatalf("envelope failure retried: %d calls", backend.callCount())
	}
}

func TestView_TransportErrorsRetryTwice(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{
		respond: func(n int, call listCall) (port.ListPage, error) {
			if n < 3 {
				return port.ListPage{}, fmt.Errorf("connection reset")
			}
			return port.ListPage{
				Rows:       []map[string]any{{"id": "ok"}},
				Pagination: table.Pagination{CurrentPage: 1, TotalPages: 1, Total: 1},
			}, nil
		},
	}
	v := newTestEngine(backend).NewView("staffs", nil)

	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if backend.callCount() != 3 {
		t.Fatalf("expected 2 retries (3 calls), got %d", backend.callCount())
	}
	if len(v.Rows()) != 1 {
		t.Fatalf("third attempt should have succeeded")
	}
}

func TestView_StaleWhileRevalidate(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	backend := &fakeBackend{
		respond: func(n int, call listCall) (port.ListPage, error) {
			if n == 2 {
				<-release
			}
			return port.ListPage{
				Rows:       []map[string]any{{"page": call.page}},
				Pagination: table.Pagination{CurrentPage: call.page, TotalPages: 10, Total: 100},
			}, nil
		},
	}
	v := newTestEngine(backend).NewView("staffs", nil)
	ctx := context.Background()

	_ = v.Load(ctx)

	done := make(chan struct{})
	go func() {
		_ = v.SetPage(ctx, 2)
		close(done)
	}()

	// The page-2 fetch is in flight; page-1 rows must stay visible.
	for backend.callCount() < 2 {
	}
	if len(v.Rows()) != 1 || v.Rows()[0]["page"] != 1 {
		t.Fatalf("previous page must remain visible during refetch, got %v", v.Rows())
	}
	if !v.Fetching() {
		t.Fatalf("Fetching must report the in-flight request")
	}
	if v.Loading() {
		t.Fatalf("a view with rows is never in first-load state")
	}

	close(release)
	<-done
	if v.Rows()[0]["page"] != 2 {
		t.Fatalf("page 2 should be committed after resolve")
	}
}

func TestEngine_OutOfOrderResponseDropped(t *testing.T) {
	t.Parallel()

	slow := make(chan struct{})
	backend := &fakeBackend{
		respond: func(n int, call listCall) (port.ListPage, error) {
			if n == 1 {
				<-slow // first request resolves last
			}
			return port.ListPage{
				Rows:       []map[string]any{{"attempt": n}},
				Pagination: table.Pagination{CurrentPage: call.page, TotalPages: 10},
			}, nil
		},
	}
	eng := newTestEngine(backend)
	key := Key{Entity: "staffs", Page: 1, PerPage: 10}
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstStale bool
	go func() {
		defer wg.Done()
		_, _, stale, _ := eng.fetch(ctx, key, true)
		firstStale = stale
	}()

	// Wait until the slow request has been issued, then race a second
	// one for the same key.
	for backend.callCount() < 1 {
	}
	page, _, stale, err := eng.fetch(ctx, key, true)
	if err != nil || stale {
		t.Fatalf("latest request must win: stale=%v err=%v", stale, err)
	}
	if page.Rows[0]["attempt"] != 2 {
		t.Fatalf("unexpected winner: %v", page.Rows)
	}

	close(slow)
	wg.Wait()
	if !firstStale {
		t.Fatalf("the superseded response must be discarded")
	}
}

func TestEngine_InvalidateEvictsAllPages(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	eng := newTestEngine(backend)
	v := eng.NewView("staffs", nil)
	ctx := context.Background()

	_ = v.Load(ctx)
	_ = v.SetPage(ctx, 2)
	calls := backend.callCount()

	var notified []string
	eng.OnInvalidate(func(entity string) { notified = append(notified, entity) })
	eng.Invalidate(ctx, "staffs")

	if len(notified) != 1 || notified[0] != "staffs" {
		t.Fatalf("local observers not notified: %v", notified)
	}

	_ = v.Refresh(ctx)
	if backend.callCount() != calls+1 {
		t.Fatalf("refresh after invalidation must refetch")
	}
	_ = v.SetPage(ctx, 1)
	if backend.callCount() != calls+2 {
		t.Fatalf("other pages must be evicted too")
	}
}
