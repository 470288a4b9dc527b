package filter

import (
	"sync"
	"time"

	"github.com/ispconsole/backoffice/internal/schema"
)

// Options tunes live-filter behavior. The two upstream dashboards
// disagreed on threshold and debounce; both are configuration now.
type Options struct {
	Debounce time.Duration
	MinChars int
}

// DefaultOptions matches the production dashboard: 400ms debounce,
// 3-character live threshold.
func DefaultOptions() Options {
	return Options{Debounce: 400 * time.Millisecond, MinChars: 3}
}

// Bar owns the state of one filter bar. Fields flagged WatchForFilter
// auto-submit after the debounce window once their value reaches
// MinChars or becomes empty; everything else waits for an explicit
// Submit.
type Bar struct {
	mu      sync.Mutex
	fields  map[string]schema.FieldConfig
	values  map[string]any
	opts    Options
	deflt   string
	onsub   func(Change)
	timer   *time.Timer
	afterFn func(time.Duration, func()) *time.Timer
}

// NewBar builds a filter bar over the given fields. onSubmit receives
// every produced Change.
func NewBar(fields []schema.FieldConfig, defaultFilter string, opts Options, onSubmit func(Change)) *Bar {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultOptions().MinChars
	}
	fm := make(map[string]schema.FieldConfig, len(fields))
	for _, f := range fields {
		fm[f.Name] = f
	}
	return &Bar{
		fields:  fm,
		values:  map[string]any{},
		opts:    opts,
		deflt:   defaultFilter,
		onsub:   onSubmit,
		afterFn: time.AfterFunc,
	}
}

// Set records a field value. Live fields schedule a debounced submit
// when the value qualifies: empty (clearing the filter) or at least
// MinChars long.
func (b *Bar) Set(name string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.values[name] = value

	f, ok := b.fields[name]
	if !ok || !f.WatchFilter {
		return
	}
	if s, isStr := value.(string); isStr {
		if len(s) != 0 && len(s) < b.opts.MinChars {
			// Back below the threshold: a debounce scheduled for the
			// longer value must not fire with this one.
			if b.timer != nil {
				b.timer.Stop()
				b.timer = nil
			}
			return
		}
	}
	b.schedule()
}

// Submit cancels any pending debounce and emits the current query.
func (b *Bar) Submit() {
	b.mu.Lock()
	ch := b.flushLocked()
	b.mu.Unlock()
	b.onsub(ch)
}

// Clear resets one field and immediately re-submits.
func (b *Bar) Clear(name string) {
	b.mu.Lock()
	delete(b.values, name)
	ch := b.flushLocked()
	b.mu.Unlock()
	b.onsub(ch)
}

// Query returns the query string for the current values without
// submitting.
func (b *Bar) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Build(b.values, b.deflt)
}

func (b *Bar) schedule() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = b.afterFn(b.opts.Debounce, func() {
		b.mu.Lock()
		ch := b.flushLocked()
		b.mu.Unlock()
		b.onsub(ch)
	})
}

func (b *Bar) flushLocked() Change {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	return Change{Query: Build(b.values, b.deflt), ResetPage: true}
}
