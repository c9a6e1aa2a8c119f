package domain

const MaxPageLimit = 100

// PageRequest is a 1-indexed page with a clamped limit.
type PageRequest struct {
	Page  int
	Limit int
}

func NewPageRequest(page, limit, defaultLimit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

type PageInfo struct {
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func NewPageInfo(p PageRequest, total int64) PageInfo {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PageInfo{
		CurrentPage: p.Page,
		Limit:       p.Limit,
		TotalPages:  pages,
		Total:       total,
		HasNextPage: int64(p.Page)*int64(p.Limit) < total,
		HasPrevPage: p.Page > 1,
	}
}
