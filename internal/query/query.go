// Package query derives the transaction-list request from the search filter
// and reconciles server pagination back into it.
package query

import (
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"fintrack/internal/core"
)

// Query parameter names understood by GET /transactions.
const (
	ParamPage     = "page"
	ParamType     = "type"
	ParamCategory = "category"
	ParamSort     = "sort"
	ParamSearch   = "search"
)

// Transactions builds the list query. search is only sent when it is not
// blank after trimming.
func Transactions(f core.SearchFilter) url.Values {
	page := f.CurrentPage
	if page < 1 {
		page = 1
	}
	sort := f.Sort
	if !sort.IsValid() {
		sort = core.SortDesc
	}

	v := url.Values{}
	v.Set(ParamPage, strconv.Itoa(page))
	v.Set(ParamType, orAll(f.SearchType))
	v.Set(ParamCategory, orAll(f.SearchCategory))
	v.Set(ParamSort, string(sort))
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set(ParamSearch, s)
	}
	return v
}

// MaxPage is the last valid page for a result with numOfPages pages.
func MaxPage(numOfPages int) int {
	if numOfPages < 1 {
		return 1
	}
	return numOfPages
}

// ClampPage bounds page to [1, MaxPage(numOfPages)].
func ClampPage(page, numOfPages int) int {
	if page < 1 {
		return 1
	}
	if last := MaxPage(numOfPages); page > last {
		return last
	}
	return page
}

// Reconcile checks the current page against the page count the server
// reported. When the page fell off the end (for example after deleting the
// only row of the last page) it returns the last page and refetch=true.
func Reconcile(currentPage, numOfPages int) (page int, refetch bool) {
	page = ClampPage(currentPage, numOfPages)
	return page, page != currentPage
}

// Sequencer tags list requests so only the latest response is applied.
type Sequencer struct {
	n atomic.Uint64
}

// Next returns a new, strictly increasing sequence number.
func (s *Sequencer) Next() uint64 {
	return s.n.Add(1)
}

func (s *Sequencer) Current() uint64 {
	return s.n.Load()
}

func orAll(v string) string {
	if strings.TrimSpace(v) == "" {
		return core.FilterAll
	}
	return v
}
