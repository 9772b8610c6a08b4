package models

import "fmt"

// Pagination is the envelope pagination block of console list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// DefaultPageWindow is the number of page buttons shown around the current page.
const DefaultPageWindow = 5

// TotalPagesFor returns ceil(totalRecords / pageSize).
func TotalPagesFor(totalRecords, pageSize int) int {
	if totalRecords <= 0 {
		return 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return (totalRecords + pageSize - 1) / pageSize
}

// PageSummary is the "Showing x to y of z results" line.
type PageSummary struct {
	From         int    `json:"from"`
	To           int    `json:"to"`
	TotalRecords int    `json:"totalRecords"`
	Text         string `json:"text"`
}

// NewPageSummary computes the visible record range of a page. An empty result
// set reports 0 to 0.
func NewPageSummary(page, pageSize, totalRecords int) PageSummary {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	from := (page-1)*pageSize + 1
	to := page * pageSize
	if to > totalRecords {
		to = totalRecords
	}
	if totalRecords <= 0 {
		from, to, totalRecords = 0, 0, 0
	}
	return PageSummary{
		From:         from,
		To:           to,
		TotalRecords: totalRecords,
		Text:         fmt.Sprintf("Showing %d to %d of %d results", from, to, totalRecords),
	}
}

// PageWindow describes the pager: a run of at most maxVisible consecutive page
// numbers around the current page, plus first/last shortcuts and ellipses when
// the run does not reach the bounds.
type PageWindow struct {
	Current          int   `json:"current"`
	TotalPages       int   `json:"totalPages"`
	Pages            []int `json:"pages"`
	ShowFirst        bool  `json:"showFirst"`
	LeadingEllipsis  bool  `json:"leadingEllipsis"`
	ShowLast         bool  `json:"showLast"`
	TrailingEllipsis bool  `json:"trailingEllipsis"`
	HasPrevious      bool  `json:"hasPrevious"`
	HasNext          bool  `json:"hasNext"`
}

// NewPageWindow centres the window on current and clamps it to [1, totalPages].
func NewPageWindow(current, totalPages, maxVisible int) PageWindow {
	if maxVisible <= 0 {
		maxVisible = DefaultPageWindow
	}
	window := PageWindow{TotalPages: totalPages, Pages: []int{}}
	if totalPages <= 0 {
		window.Current = 1
		return window
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}
	window.Current = current

	start := current - maxVisible/2
	if start < 1 {
		start = 1
	}
	end := start + maxVisible - 1
	if end > totalPages {
		end = totalPages
	}
	if end-start+1 < maxVisible {
		start = end - maxVisible + 1
		if start < 1 {
			start = 1
		}
	}
	for p := start; p <= end; p++ {
		window.Pages = append(window.Pages, p)
	}

	window.ShowFirst = start > 1
	window.LeadingEllipsis = start > 2
	window.ShowLast = end < totalPages
	window.TrailingEllipsis = end < totalPages-1
	window.HasPrevious = current > 1
	window.HasNext = current < totalPages
	return window
}
