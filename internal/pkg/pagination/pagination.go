// internal/pkg/pagination/pagination.go
package pagination

// Allowed storefront page sizes
var storefrontPageSizes = map[int]bool{24: true, 36: true, 48: true}

const DefaultPerPage = 24

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// New calculates pagination info for a result set
func New(page, perPage int, total int64) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Page normalizes a requested page number
func Page(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// StorefrontPerPage accepts 24, 36 or 48 and falls back to 24
func StorefrontPerPage(perPage int) int {
	if storefrontPageSizes[perPage] {
		return perPage
	}
	return DefaultPerPage
}

// Limit bounds an admin page size to 1..100, default 20
func Limit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

// Offset returns the row offset of a page
func Offset(page, perPage int) int {
	return (Page(page) - 1) * perPage
}
