package catalog

import "strings"

const (
	SortByName      = "name"
	SortByPrice     = "price"
	SortByStock     = "stock"
	SortByCreatedAt = "createdAt"

	OrderAsc  = "ASC"
	OrderDesc = "DESC"

	DefaultLimit = 10
	MaxLimit     = 100
)

// PageQuery describes one catalog page request. Call Normalize before
// handing it to a repository.
type PageQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
	Sort     string
	Order    string
}

// Normalize clamps paging bounds and falls back to the default sort for
// unrecognized fields, mirroring what callers may send verbatim from query
// strings.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 1
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	switch q.Sort {
	case SortByName, SortByPrice, SortByStock, SortByCreatedAt:
	default:
		q.Sort = SortByName
	}

	if strings.EqualFold(q.Order, OrderDesc) {
		q.Order = OrderDesc
	} else {
		q.Order = OrderAsc
	}

	return q
}

// Offset returns the number of rows to skip for this page.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Page is one page of catalog results.
type Page struct {
	Items []*Product
	Total int
	Page  int
	Limit int
	Pages int
}

// PageCount computes ceil(total/limit).
func PageCount(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
