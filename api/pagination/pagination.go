package pagination

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Query is the paging parameters of a list request.
type Query struct {
	Start int `form:"start" binding:"min=0"`
	Limit int `form:"limit" binding:"min=0"`
}

// Normalize applies the default and maximum page size.
func (q *Query) Normalize() {
	if q.Limit == 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
}

// Result is one page of a list response.
type Result struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
}
