package table

import (
	"testing"
)

func TestPagination_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		current, total     int
		hasPrev, hasNext bool
	}{
		{1, 1, false, false},
		{1, 5, false, true},
		{3, 5, true, true},
		{5, 5, true, false},
	}
	for _, tc := range cases {
		p := Pagination{CurrentPage: tc.current, TotalPages: tc.total}
		if p.HasPrev() != tc.hasPrev {
			t.Errorf("page %d/%d: HasPrev = %v", tc.current, tc.total, p.HasPrev())
		}
		if p.HasNext() != tc.hasNext {
			t.Errorf("page %d/%d: HasNext = %v", tc.current, tc.total, p.HasNext())
		}
	}
}

func TestPagination_Clamp(t *testing.T) {
	t.Parallel()

	p := Pagination{CurrentPage: 2, TotalPages: 7}
	for _, tc := range []struct{ in, want int }{
		{0, 1}, {-3, 1}, {1, 1}, {7, 7}, {8, 7}, {100, 7}, {4, 4},
	} {
		if got := p.Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func buttonPages(buttons []PageButton) []int {
	var out []int
	for _, b := range buttons {
		if !b.Ellipsis {
			out = append(out, b.Page)
		}
	}
	return out
}

func TestPagination_ButtonsSmall(t *testing.T) {
	t.Parallel()

	p := Pagination{CurrentPage: 2, TotalPages: 4}
	got := p.Buttons()
	if len(got) != 4 {
		t.Fatalf("expected 4 buttons, got %d", len(got))
	}
	if !got[1].Active {
		t.Fatalf("page 2 should be active")
	}
}

func TestPagination_ButtonsWindowed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		current       int
		wantPages     []int
		leadEllipsis  bool
		trailEllipsis bool
	}{
		{1, []int{1, 2, 3, 4, 5}, false, true},
		{6, []int{4, 5, 6, 7, 8}, true, true},
		{12, []int{8, 9, 10, 11, 12}, true, false},
	}
	for _, tc := range cases {
		p := Pagination{CurrentPage: tc.current, TotalPages: 12}
		got := p.Buttons()
		pages := buttonPages(got)
		if len(pages) != len(tc.wantPages) {
			t.Fatalf("current=%d: pages %v, want %v", tc.current, pages, tc.wantPages)
		}
		for i := range pages {
			if pages[i] != tc.wantPages[i] {
				t.Fatalf("current=%d: pages %v, want %v", tc.current, pages, tc.wantPages)
			}
		}
		if (got[0].Ellipsis) != tc.leadEllipsis {
			t.Errorf("current=%d: leading ellipsis = %v", tc.current, got[0].Ellipsis)
		}
		if (got[len(got)-1].Ellipsis) != tc.trailEllipsis {
			t.Errorf("current=%d: trailing ellipsis = %v", tc.current, got[len(got)-1].Ellipsis)
		}
	}
}

func TestShowSkeleton(t *testing.T) {
	t.Parallel()

	if !ShowSkeleton(true, false, 10) {
		t.Fatalf("first load must show the skeleton")
	}
	if !ShowSkeleton(false, true, 0) {
		t.Fatalf("refetch with no rows must show the skeleton")
	}
	if ShowSkeleton(false, true, 10) {
		t.Fatalf("background refetch over rows must keep rows visible")
	}
	if ShowSkeleton(false, false, 0) {
		t.Fatalf("settled empty result is not a skeleton state")
	}
}

type row struct {
	Name    string
	Balance int
}

type memStore map[string]string

func (m memStore) Get(k string) string  { return m[k] }
func (m memStore) Set(k, v string)      { m[k] = v }

func testColumns() []Column[row] {
	return []Column[row]{
		{Key: "name", Title: "Name", Accessor: func(r row) any { return r.Name }, Sortable: true, Hideable: true},
		{Key: "balance", Title: "Balance", Accessor: func(r row) any { return r.Balance }, Sortable: true, Hideable: true},
	}
}

func TestModel_SortCycle(t *testing.T) {
	t.Parallel()

	m := New("Clients", testColumns(), nil)
	rows := []row{{"charlie", 30}, {"alice", 10}, {"bob", 20}}

	m.SetSort("name")
	sorted := m.Sort(rows)
	if sorted[0].Name != "alice" || sorted[2].Name != "charlie" {
		t.Fatalf("asc sort wrong: %v", sorted)
	}

	m.SetSort("name")
	sorted = m.Sort(rows)
	if sorted[0].Name != "charlie" {
		t.Fatalf("desc sort wrong: %v", sorted)
	}

	m.SetSort("name")
	sorted = m.Sort(rows)
	if sorted[0].Name != "charlie" || sorted[1].Name != "alice" {
		t.Fatalf("cleared sort must return rows unchanged: %v", sorted)
	}
}

func TestModel_NumericSort(t *testing.T) {
	t.Parallel()

	m := New("Clients", testColumns(), nil)
	m.SetSort("balance")
	sorted := m.Sort([]row{{"a", 100}, {"b", 9}, {"c", 50}})
	if sorted[0].Balance != 9 || sorted[2].Balance != 100 {
		t.Fatalf("numeric sort compared as strings: %v", sorted)
	}
}

func TestModel_ColumnVisibility(t *testing.T) {
	t.Parallel()

	m := New("Clients", testColumns(), nil)
	m.ToggleColumn("balance")
	vis := m.Visible()
	if len(vis) != 1 || vis[0].Key != "name" {
		t.Fatalf("expected only name visible, got %v", vis)
	}
	m.ToggleColumn("balance")
	if len(m.Visible()) != 2 {
		t.Fatalf("expected balance restored")
	}
}

func TestModel_LayoutPersistence(t *testing.T) {
	t.Parallel()

	store := memStore{}
	m := New("Clients", testColumns(), store)
	if m.Layout() != LayoutFixed {
		t.Fatalf("default layout must be fixed")
	}
	m.ToggleLayout()
	if store[LayoutStorageKey] != string(LayoutFull) {
		t.Fatalf("toggle must persist, store = %v", store)
	}

	m2 := New("Clients", testColumns(), store)
	if m2.Layout() != LayoutFull {
		t.Fatalf("new model must restore persisted layout")
	}
}

func TestModel_Selection(t *testing.T) {
	t.Parallel()

	m := New("Clients", testColumns(), nil)
	m.ToggleSelect(2)
	m.ToggleSelect(0)
	m.ToggleSelect(2)
	m.ToggleSelect(1)
	got := m.Selected()
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("selection = %v", got)
	}
	m.ClearSelection()
	if len(m.Selected()) != 0 {
		t.Fatalf("selection must clear on page change")
	}
}
