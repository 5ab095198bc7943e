package domain

// PageParams carries offset/limit values from the HTTP layer to the repo layer.
// Offset is zero-based. Limit is capped at MaxPageLimit by NewPageParams.
type PageParams struct {
	// Offset is the number of rows to skip.
	Offset int
	// Limit is the maximum number of items to return.
	Limit int
}

const (
	// DefaultPageLimit is used when the caller does not supply ?limit=.
	DefaultPageLimit = 10
	// MaxPageLimit caps ?limit= to prevent runaway queries.
	MaxPageLimit = 100
)

// NewPageParams builds a PageParams from optional HTTP query params.
// Nil pointers fall back to sane defaults (offset=0, limit=10).
// The limit is capped at MaxPageLimit.
func NewPageParams(offset, limit *int) PageParams {
	p := PageParams{Offset: 0, Limit: DefaultPageLimit}
	if offset != nil && *offset >= 0 {
		p.Offset = *offset
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Page is the pagination metadata returned alongside a list of stores.
type Page struct {
	Limit       int
	Offset      int
	Total       int64
	CurrentPage int
	TotalPages  int
}

// NewPage computes page metadata for total rows under params.
//
//	CurrentPage = Offset/Limit + 1
//	TotalPages  = ceil(Total/Limit), or 0 when Limit <= 0
func NewPage(total int64, p PageParams) Page {
	page := Page{Limit: p.Limit, Offset: p.Offset, Total: total}
	if p.Limit <= 0 {
		return page
	}
	page.CurrentPage = p.Offset/p.Limit + 1
	page.TotalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return page
}

// SinglePage is the fixed metadata for responses that always carry exactly
// one store.
func SinglePage() Page {
	return Page{Limit: 1, Offset: 0, Total: 1, CurrentPage: 1, TotalPages: 1}
}
