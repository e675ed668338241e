// Package paging computes the Previous/Next state of the history view.
package paging

import "github.com/fakeyudi/cropguard/internal/api"

// DefaultLimit is the page size of the history view.
const DefaultLimit = 10

// Pager is a 1-based page position over Total records.
type Pager struct {
	Page  int
	Limit int
	Total int
}

// New returns a pager at page with limit, clamped to what the backend
// accepts.
func New(page, limit int) Pager {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > api.MaxHistoryLimit {
		limit = api.MaxHistoryLimit
	}
	return Pager{Page: page, Limit: limit}
}

// WithTotal records the server's total count.
func (p Pager) WithTotal(total int) Pager {
	if total < 0 {
		total = 0
	}
	p.Total = total
	return p
}

// Range is the half-open record interval [start, end) the page covers.
func (p Pager) Range() (start, end int) {
	return (p.Page - 1) * p.Limit, p.Page * p.Limit
}

// HasPrev reports whether "Previous" is enabled.
func (p Pager) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether "Next" is enabled.
func (p Pager) HasNext() bool { return p.Page*p.Limit < p.Total }

// ShowControls reports whether pagination controls are rendered at all.
func (p Pager) ShowControls() bool { return p.Total > p.Limit }

// Next returns the following page, or p itself when there is none.
func (p Pager) Next() Pager {
	if !p.HasNext() {
		return p
	}
	p.Page++
	return p
}

// Prev returns the preceding page, or p itself when there is none.
func (p Pager) Prev() Pager {
	if !p.HasPrev() {
		return p
	}
	p.Page--
	return p
}

// Pages is the number of pages needed for Total, at least 1.
func (p Pager) Pages() int {
	if p.Total == 0 {
		return 1
	}
	return (p.Total + p.Limit - 1) / p.Limit
}
