package query

import (
	"sync"
	"testing"

	"fintrack/internal/core"
)

func TestTransactionsOmitsBlankSearch(t *testing.T) {
	f := core.SearchFilter{CurrentPage: 2, Sort: core.SortAsc, SearchType: "all", SearchCategory: "all", Search: ""}
	q := Transactions(f)
	if q.Has(ParamSearch) {
		t.Fatalf("search must not be sent: %s", q.Encode())
	}
	if got := q.Encode(); got != "category=all&page=2&sort=asc&type=all" {
		t.Fatalf("query = %q", got)
	}

	f.Search = "   "
	if Transactions(f).Has(ParamSearch) {
		t.Fatal("whitespace-only search must not be sent")
	}
}

func TestTransactionsTrimsSearch(t *testing.T) {
	q := Transactions(core.SearchFilter{CurrentPage: 1, Sort: core.SortDesc, SearchType: "1", SearchCategory: "4", Search: "  cine "})
	if q.Get(ParamSearch) != "cine" || q.Get(ParamType) != "1" || q.Get(ParamCategory) != "4" {
		t.Fatalf("query = %q", q.Encode())
	}
}

func TestTransactionsNormalizesDefaults(t *testing.T) {
	q := Transactions(core.SearchFilter{})
	if q.Get(ParamPage) != "1" || q.Get(ParamSort) != "desc" || q.Get(ParamType) != "all" || q.Get(ParamCategory) != "all" {
		t.Fatalf("query = %q", q.Encode())
	}
}

func TestClampAndReconcile(t *testing.T) {
	cases := []struct {
		page, pages int
		want        int
		refetch     bool
	}{
		{1, 0, 1, false},
		{1, 3, 1, false},
		{3, 3, 3, false},
		{4, 3, 3, true},
		{2, 1, 1, true},
		{0, 5, 1, true},
	}
	for _, tc := range cases {
		got, refetch := Reconcile(tc.page, tc.pages)
		if got != tc.want || refetch != tc.refetch {
			t.Fatalf("Reconcile(%d,%d) = %d,%v want %d,%v", tc.page, tc.pages, got, refetch, tc.want, tc.refetch)
		}
	}
	if MaxPage(0) != 1 || MaxPage(7) != 7 {
		t.Fatal("MaxPage")
	}
}

func TestSequencerIsMonotonic(t *testing.T) {
	var s Sequencer
	var wg sync.WaitGroup
	seen := make(chan uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- s.Next()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[uint64]bool{}
	for n := range seen {
		if unique[n] {
			t.Fatalf("duplicate sequence %d", n)
		}
		unique[n] = true
	}
	if s.Current() != 100 {
		t.Fatalf("Current = %d", s.Current())
	}
}
