// Package pagination computes page bounds over an in-memory collection.
package pagination

import (
	"net/url"
	"strconv"
)

// DefaultPageSize is used whenever the requested size is missing or not positive.
const DefaultPageSize = 100

// WindowSize is the number of page links shown by Window.
const WindowSize = 5

// Page describes the half-open slice [Start, End) of a collection of Total
// items. Start and End always lie within [0, Total].
type Page struct {
	Start      int `json:"-"`
	End        int `json:"-"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"totalItems"`
}

// Paginate returns the bounds of page (1-based) for a collection of total
// items split into pages of pageSize. A page past the end yields an empty
// range at Total.
func Paginate(total, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if total < 0 {
		total = 0
	}

	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	p := Page{TotalPages: totalPages, Page: page, PageSize: pageSize, Total: total}

	// Checked before multiplying so huge page numbers cannot overflow.
	if page > totalPages {
		p.Start, p.End = total, total
		return p
	}

	p.Start = (page - 1) * pageSize
	p.End = p.Start + min(pageSize, total-p.Start)
	return p
}

// Slice returns the items of s that fall on page p. The result shares the
// backing array of s.
func Slice[T any](s []T, p Page) []T {
	if p.Start >= len(s) {
		return s[len(s):]
	}
	return s[p.Start:min(p.End, len(s))]
}

// Nav is the set of page links for a pager control. Prev and Next are 0
// when there is no such page.
type Nav struct {
	Pages []int `json:"pages"`
	Prev  int   `json:"prev,omitempty"`
	Next  int   `json:"next,omitempty"`
}

// Window returns up to WindowSize consecutive page numbers starting two
// before the current page, plus the previous and next page numbers.
func Window(page, totalPages int) Nav {
	var n Nav
	if totalPages < 1 {
		n.Pages = []int{}
		return n
	}
	if page < 1 {
		page = 1
	}

	first := max(1, page-2)
	last := min(totalPages, first+WindowSize-1)
	n.Pages = make([]int, 0, WindowSize)
	for i := first; i <= last; i++ {
		n.Pages = append(n.Pages, i)
	}

	if page > 1 {
		n.Prev = min(page-1, totalPages)
	}
	if page < totalPages {
		n.Next = page + 1
	}
	return n
}

// ParseQuery reads page and page_size from query parameters. pageSize is
// accepted as an alias of page_size. Missing or malformed values fall back
// to page 1 and DefaultPageSize.
func ParseQuery(q url.Values) (page, pageSize int) {
	page, pageSize = 1, DefaultPageSize

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}

	raw := q.Get("page_size")
	if raw == "" {
		raw = q.Get("pageSize")
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		pageSize = v
	}
	return page, pageSize
}
