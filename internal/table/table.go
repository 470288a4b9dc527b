// Package table models the generic data table: typed rows rendered
// through column definitions, client-side sorting and column
// visibility over the loaded page, server-side pagination and
// filtering everywhere else.
package table

import (
	"fmt"
	"sort"
	"strings"
)

// Column defines how one field of a row renders.
type Column[T any] struct {
	Key      string
	Title    string
	Accessor func(T) any
	Sortable bool
	Hideable bool
}

// SortDir is a client-side sort direction for the loaded page.
type SortDir int

const (
	SortNone SortDir = iota
	SortAsc
	SortDesc
)

// LayoutMode is the fixed/full toolbar toggle, persisted under the
// "tableLayoutMode" storage key.
type LayoutMode string

const (
	LayoutFixed LayoutMode = "fixed"
	LayoutFull  LayoutMode = "full"

	LayoutStorageKey = "tableLayoutMode"
)

// LayoutStore persists per-user UI preferences (the browser shell's
// local-storage analog).
type LayoutStore interface {
	Get(key string) string
	Set(key, value string)
}

// Model is the state of one mounted table.
type Model[T any] struct {
	Columns  []Column[T]
	Title    string
	hidden   map[string]bool
	selected map[int]bool
	sortKey  string
	sortDir  SortDir
	layout   LayoutMode
	store    LayoutStore
}

// New builds a table model, restoring the layout mode from store when
// present.
func New[T any](title string, cols []Column[T], store LayoutStore) *Model[T] {
	m := &Model[T]{
		Columns:  cols,
		Title:    title,
		hidden:   map[string]bool{},
		selected: map[int]bool{},
		layout:   LayoutFixed,
		store:    store,
	}
	if store != nil {
		if v := store.Get(LayoutStorageKey); v == string(LayoutFull) {
			m.layout = LayoutFull
		}
	}
	return m
}

// ShowSkeleton reports whether the loading skeleton renders: on first
// load, or on a background refetch with nothing to show. A refetch
// over existing rows keeps the rows visible.
func ShowSkeleton(isLoading, isFetching bool, rowCount int) bool {
	return isLoading || (isFetching && rowCount == 0)
}

// ToggleColumn flips visibility of a hideable column. Unknown or
// non-hideable keys are ignored.
func (m *Model[T]) ToggleColumn(key string) {
	for _, c := range m.Columns {
		if c.Key == key && c.Hideable {
			m.hidden[key] = !m.hidden[key]
			return
		}
	}
}

// Visible returns the columns currently shown, in definition order.
func (m *Model[T]) Visible() []Column[T] {
	out := make([]Column[T], 0, len(m.Columns))
	for _, c := range m.Columns {
		if !m.hidden[c.Key] {
			out = append(out, c)
		}
	}
	return out
}

// SetSort cycles none → asc → desc → none on a sortable column and
// resets when the key changes.
func (m *Model[T]) SetSort(key string) {
	var col *Column[T]
	for i := range m.Columns {
		if m.Columns[i].Key == key {
			col = &m.Columns[i]
			break
		}
	}
	if col == nil || !col.Sortable {
		return
	}
	if m.sortKey != key {
		m.sortKey, m.sortDir = key, SortAsc
		return
	}
	switch m.sortDir {
	case SortAsc:
		m.sortDir = SortDesc
	case SortDesc:
		m.sortKey, m.sortDir = "", SortNone
	default:
		m.sortDir = SortAsc
	}
}

// Sort returns the loaded page ordered by the active sort; with no
// sort active it returns rows unchanged.
func (m *Model[T]) Sort(rows []T) []T {
	if m.sortKey == "" || m.sortDir == SortNone {
		return rows
	}
	var acc func(T) any
	for _, c := range m.Columns {
		if c.Key == m.sortKey {
			acc = c.Accessor
			break
		}
	}
	if acc == nil {
		return rows
	}
	out := make([]T, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		less := compareValues(acc(out[i]), acc(out[j]))
		if m.sortDir == SortDesc {
			return !less && compareValues(acc(out[j]), acc(out[i]))
		}
		return less
	})
	return out
}

// ToggleSelect flips row selection on the loaded page.
func (m *Model[T]) ToggleSelect(index int) {
	m.selected[index] = !m.selected[index]
}

// Selected returns the selected row indexes in ascending order.
func (m *Model[T]) Selected() []int {
	out := make([]int, 0, len(m.selected))
	for i, on := range m.selected {
		if on {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// ClearSelection drops all selections; called on every page change.
func (m *Model[T]) ClearSelection() {
	m.selected = map[int]bool{}
}

// Layout returns the active layout mode.
func (m *Model[T]) Layout() LayoutMode { return m.layout }

// ToggleLayout flips fixed/full and persists the choice.
func (m *Model[T]) ToggleLayout() {
	if m.layout == LayoutFixed {
		m.layout = LayoutFull
	} else {
		m.layout = LayoutFixed
	}
	if m.store != nil {
		m.store.Set(LayoutStorageKey, string(m.layout))
	}
}

// Toolbar is the serializable header block of a table: title with
// total count, layout mode, and whether an add action renders.
type Toolbar struct {
	Title   string     `json:"title"`
	Total   int        `json:"total"`
	Layout  LayoutMode `json:"layout"`
	ShowAdd bool       `json:"showAdd"`
}

// Toolbar builds the toolbar state for the current pagination block.
func (m *Model[T]) Toolbar(p Pagination, showAdd bool) Toolbar {
	return Toolbar{Title: m.Title, Total: p.Total, Layout: m.layout, ShowAdd: showAdd}
}

func compareValues(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	return strings.ToLower(fmt.Sprintf("%v", a)) < strings.ToLower(fmt.Sprintf("%v", b))
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
