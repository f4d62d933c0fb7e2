package billing

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// HistoryQuery selects one page of the payment history.
type HistoryQuery struct {
	Page    int
	PerPage int
	Search  string
}

// ParseHistoryQuery reads page, per_page and search from q, falling back to
// the first page of DefaultPerPage rows.
func ParseHistoryQuery(q url.Values) HistoryQuery {
	hq := HistoryQuery{
		Page:    1,
		PerPage: DefaultPerPage,
		Search:  strings.TrimSpace(q.Get("search")),
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		hq.Page = n
	}
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && n > 0 {
		hq.PerPage = min(n, MaxPerPage)
	}
	return hq
}

// Values encodes the query the way the history endpoint expects it. An empty
// search is left out.
func (q HistoryQuery) Values() url.Values {
	v := url.Values{}
	page, perPage := q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// WithPage returns a copy of q pointing at page n.
func (q HistoryQuery) WithPage(n int) HistoryQuery {
	q.Page = n
	return q
}
