package filter

import (
	"sync"
	"testing"
	"time"

	"github.com/ispconsole/backoffice/internal/schema"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	got := Build(map[string]any{
		"name":    "john",
		"zone":    []string{"north", "east"},
		"empty":   "",
		"missing": nil,
		"active":  true,
	}, "")
	want := "active=true&name=john&zone=[north,east]"
	if got != want {
		t.Fatalf("Build = %q, want %q", got, want)
	}
}

func TestBuild_DefaultFilterAlwaysAppended(t *testing.T) {
	t.Parallel()

	if got := Build(nil, "status=active"); got != "status=active" {
		t.Fatalf("got %q", got)
	}
	if got := Build(map[string]any{"name": "jo"}, "status=active"); got != "name=jo&status=active" {
		t.Fatalf("got %q", got)
	}
}

func TestChangeFromQuery(t *testing.T) {
	t.Parallel()

	if ch := ChangeFromQuery("name=john"); !ch.ResetPage {
		t.Fatalf("plain query must reset the page")
	}
	if ch := ChangeFromQuery("name=john&#keep"); ch.ResetPage {
		t.Fatalf("marker query must not reset the page")
	}
}

type capture struct {
	mu      sync.Mutex
	changes []Change
}

func (c *capture) submit(ch Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, ch)
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.changes)
}

func (c *capture) last() Change {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changes[len(c.changes)-1]
}

func liveField(name string) schema.FieldConfig {
	return schema.FieldConfig{Type: schema.FieldText, Name: name, WatchFilter: true}
}

func TestBar_DebounceThreshold(t *testing.T) {
	t.Parallel()

	var got capture
	b := NewBar([]schema.FieldConfig{liveField("name")}, "", Options{Debounce: 20 * time.Millisecond, MinChars: 3}, got.submit)

	// Two characters: below the live threshold, nothing may fire.
	b.Set("name", "jo")
	time.Sleep(60 * time.Millisecond)
	if got.count() != 0 {
		t.Fatalf("2-char value must not auto-submit, got %d submits", got.count())
	}

	// Third character schedules a submit after the window.
	b.Set("name", "joh")
	if got.count() != 0 {
		t.Fatalf("submit fired before debounce elapsed")
	}
	time.Sleep(60 * time.Millisecond)
	if got.count() != 1 {
		t.Fatalf("expected 1 submit after debounce, got %d", got.count())
	}
	if got.last().Query != "name=joh" {
		t.Fatalf("got query %q", got.last().Query)
	}
	if !got.last().ResetPage {
		t.Fatalf("filter submit must reset the page")
	}
}

func TestBar_BackspaceBelowThresholdCancelsPending(t *testing.T) {
	t.Parallel()

	var got capture
	b := NewBar([]schema.FieldConfig{liveField("name")}, "", Options{Debounce: 30 * time.Millisecond, MinChars: 3}, got.submit)

	// Reaching the threshold schedules a submit; backspacing below it
	// within the window must cancel that timer, not fire "name=jo".
	b.Set("name", "joh")
	time.Sleep(5 * time.Millisecond)
	b.Set("name", "jo")
	time.Sleep(90 * time.Millisecond)

	if got.count() != 0 {
		t.Fatalf("sub-threshold value auto-submitted %q", got.last().Query)
	}
}

func TestBar_EmptyValueSubmitsClear(t *testing.T) {
	t.Parallel()

	var got capture
	b := NewBar([]schema.FieldConfig{liveField("name")}, "", Options{Debounce: 10 * time.Millisecond, MinChars: 3}, got.submit)

	b.Set("name", "john")
	time.Sleep(40 * time.Millisecond)
	b.Set("name", "")
	time.Sleep(40 * time.Millisecond)

	if got.count() != 2 {
		t.Fatalf("expected clear to auto-submit, got %d submits", got.count())
	}
	if got.last().Query != "" {
		t.Fatalf("cleared bar should produce empty query, got %q", got.last().Query)
	}
}

func TestBar_RapidTypingCollapsesToOneSubmit(t *testing.T) {
	t.Parallel()

	var got capture
	b := NewBar([]schema.FieldConfig{liveField("name")}, "", Options{Debounce: 30 * time.Millisecond, MinChars: 3}, got.submit)

	b.Set("name", "joh")
	time.Sleep(5 * time.Millisecond)
	b.Set("name", "john")
	time.Sleep(5 * time.Millisecond)
	b.Set("name", "john d")
	time.Sleep(90 * time.Millisecond)

	if got.count() != 1 {
		t.Fatalf("expected a single debounced submit, got %d", got.count())
	}
	if got.last().Query != "name=john d" {
		t.Fatalf("got %q", got.last().Query)
	}
}

func TestBar_NonLiveFieldWaitsForSubmit(t *testing.T) {
	t.Parallel()

	var got capture
	fields := []schema.FieldConfig{
		liveField("name"),
		{Type: schema.FieldDropdown, Name: "zone", Dropdown: &schema.DropdownConfig{API: "/zones"}},
	}
	b := NewBar(fields, "status=active", Options{Debounce: 10 * time.Millisecond, MinChars: 3}, got.submit)

	b.Set("zone", "north")
	time.Sleep(40 * time.Millisecond)
	if got.count() != 0 {
		t.Fatalf("non-live field must not auto-submit")
	}

	b.Submit()
	if got.count() != 1 {
		t.Fatalf("explicit submit expected")
	}
	if got.last().Query != "zone=north&status=active" {
		t.Fatalf("got %q", got.last().Query)
	}
}

func TestBar_ClearResubmitsImmediately(t *testing.T) {
	t.Parallel()

	var got capture
	b := NewBar([]schema.FieldConfig{liveField("name")}, "", DefaultOptions(), got.submit)

	b.Set("name", "john")
	b.Clear("name")
	if got.count() != 1 {
		t.Fatalf("Clear must submit without waiting for debounce, got %d", got.count())
	}
	if got.last().Query != "" {
		t.Fatalf("got %q", got.last().Query)
	}
}
