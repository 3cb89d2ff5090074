package domain

// Page sizes for the trip list and a user's post list.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PaginationParams selects one page of trips or posts. Page counts from 1.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds PaginationParams from the optional ?page= and
// ?limit= query values. Missing or non-positive values use page 1 and
// DefaultPageLimit; a limit above MaxPageLimit is lowered to it.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page > 0 {
		p.Page = *page
	}
	if limit != nil && *limit > 0 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset is the number of rows to skip before this page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
