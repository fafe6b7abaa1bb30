package core

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// PageQuery is the pagination input bound from query params on list endpoints.
type PageQuery struct {
	Page  int `query:"page" json:"page"`
	Limit int `query:"limit" json:"limit"`
}

// Clean clamps out-of-range values back to the defaults.
func (pq *PageQuery) Clean() {
	if pq.Page < 1 {
		pq.Page = 1
	}
	if pq.Limit < 1 || pq.Limit > maxPageLimit {
		pq.Limit = defaultPageLimit
	}
}

func (pq PageQuery) Offset() int {
	return (pq.Page - 1) * pq.Limit
}

// Pagination is the list-response metadata envelope.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func NewPagination(pq PageQuery, total int) Pagination {
	return Pagination{
		Page:  pq.Page,
		Limit: pq.Limit,
		Total: total,
		Pages: (total + pq.Limit - 1) / pq.Limit,
	}
}
