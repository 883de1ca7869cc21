package domain

// ID is used across domain entities.
type ID int64

// Pagination carries paging params and computed totals.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Normalize clamps page/limit into usable values.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset returns the skip count derived from page/limit.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// SetTotal stores the total row count and derives total pages.
func (p *Pagination) SetTotal(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = (total + p.Limit - 1) / p.Limit
	}
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID ID     `json:"userId"`
	Role   string `json:"role"`
}
