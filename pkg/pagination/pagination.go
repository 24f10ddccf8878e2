package pagination

const (
	// DefaultPageSize matches the catalog admin screen's page length.
	DefaultPageSize = 10
	// MaxPageSize caps how many rows any list query can request.
	MaxPageSize = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Normalize enforces the configured defaults and caps.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Page describes one page of results plus enough metadata for the client to
// render pagers.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPage assembles the page envelope from the normalized params and the
// total row count.
func NewPage[T any](items []T, params Params, total int64) Page[T] {
	n := params.Normalize()
	pages := int(total) / n.PageSize
	if int(total)%n.PageSize != 0 {
		pages++
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Page:       n.Page,
		PageSize:   n.PageSize,
		TotalItems: total,
		TotalPages: pages,
	}
}
