// Package pagination slices ordered record sets into pages and reports
// page metadata. All inputs are clamped, never rejected.
package pagination

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Page describes one page of an ordered record set.
type Page struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// New clamps the requested page and page size and computes page metadata
// for the given total. Page is floored to 1, pageSize is clamped to
// [1, MaxPageSize] (0 selects DefaultPageSize), and TotalPages has a floor
// of 1 so an empty result set still reports page 1 of 1.
func New(total, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	return Page{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// Offset returns the record offset of the first item on the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of records on the page.
func (p Page) Limit() int {
	return p.PageSize
}
