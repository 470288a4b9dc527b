package table

// Pagination mirrors the server-computed paging block of a list
// response. The client never computes totals; it only requests a page
// number and renders from this.
type Pagination struct {
	Count       int `json:"count"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

// HasPrev reports whether the previous-page control is enabled.
func (p Pagination) HasPrev() bool { return p.CurrentPage > 1 }

// HasNext reports whether the next-page control is enabled.
func (p Pagination) HasNext() bool { return p.CurrentPage < p.TotalPages }

// Clamp bounds a requested page number to [1, TotalPages]. With no
// pages loaded yet it clamps to 1.
func (p Pagination) Clamp(page int) int {
	if page < 1 {
		return 1
	}
	if p.TotalPages > 0 && page > p.TotalPages {
		return p.TotalPages
	}
	return page
}

// windowSize is the number of page buttons shown at once.
const windowSize = 5

// PageButton is one entry of the pagination control. Ellipsis entries
// have no page number.
type PageButton struct {
	Page     int  `json:"page,omitempty"`
	Active   bool `json:"active,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// Buttons computes the bounded page-number window with ellipsis
// markers on the truncated sides.
func (p Pagination) Buttons() []PageButton {
	if p.TotalPages <= 0 {
		return nil
	}
	if p.TotalPages <= windowSize {
		out := make([]PageButton, 0, p.TotalPages)
		for n := 1; n <= p.TotalPages; n++ {
			out = append(out, PageButton{Page: n, Active: n == p.CurrentPage})
		}
		return out
	}

	start := p.CurrentPage - windowSize/2
	if start < 1 {
		start = 1
	}
	if start > p.TotalPages-windowSize+1 {
		start = p.TotalPages - windowSize + 1
	}
	end := start + windowSize - 1

	out := make([]PageButton, 0, windowSize+2)
	if start > 1 {
		out = append(out, PageButton{Ellipsis: true})
	}
	for n := start; n <= end; n++ {
		out = append(out, PageButton{Page: n, Active: n == p.CurrentPage})
	}
	if end < p.TotalPages {
		out = append(out, PageButton{Ellipsis: true})
	}
	return out
}
