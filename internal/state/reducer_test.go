package state

import (
	"encoding/json"
	"errors"
	"testing"

	"fintrack/internal/core"
)

var defaults = core.TransactionForm{Type: "1", Category: "1", Date: "2022-03-15"}

func mustReduce(t *testing.T, s State, actions ...Action) State {
	t.Helper()
	for _, a := range actions {
		var err error
		s, err = Reduce(s, a)
		if err != nil {
			t.Fatalf("Reduce(%s): %v", a.Type(), err)
		}
	}
	return s
}

func loaded() State {
	s := Initial(core.Session{}, defaults)
	s.Transactions = []core.Transaction{
		{ID: 5, Description: "Sueldo", Amount: 1000, Date: "2022-03-01T00:00:00Z", TypeID: 1, CategoryID: 2},
		{ID: 6, Description: "Cine", Amount: 12.5, Date: "2022-03-02", TypeID: 2, CategoryID: 3},
	}
	return s
}

func TestInitialHydratesOnlyCompleteSession(t *testing.T) {
	s := Initial(core.Session{User: &core.Profile{ID: 1, Name: "A"}, Token: "T"}, defaults)
	if s.User == nil || s.Token != "T" {
		t.Fatalf("expected hydrated session, got %+v", s.Session())
	}

	half := Initial(core.Session{Token: "T"}, defaults)
	if half.User != nil || half.Token != "" {
		t.Fatalf("a token without a user must not hydrate: %+v", half.Session())
	}
	if half.Filter.CurrentPage != 1 || half.Form != defaults {
		t.Fatalf("unexpected defaults: %+v", half)
	}
}

func TestAlertInvariantHoldsForAllActions(t *testing.T) {
	sequences := [][]Action{
		{DisplayAlert{Message: "hola", AlertType: core.AlertDanger}, ClearAlert{}},
		{SetupBegin{}, SetupFailure{Message: "bad"}, ClearAlert{}},
		{SetupBegin{}, SetupUserSuccess{User: core.Profile{ID: 1}, Token: "T", Message: "ok"}, LogoutUser{}, ClearAlert{}},
		{CreateTransactionBegin{}, CreateTransactionFailure{Message: "x"}, ToggleSidebar{}, ClearFilters{}, ClearAlert{}},
		{FetchTransactionsBegin{Seq: 1}, FetchTransactionsFailure{Seq: 1, Message: "x"}, ClearAlert{Generation: 0}},
	}
	for i, seq := range sequences {
		s := loaded()
		for _, a := range seq {
			var err error
			if s, err = Reduce(s, a); err != nil {
				t.Fatalf("seq %d: %v", i, err)
			}
			if !s.ShowAlert && s.AlertMessage != "" {
				t.Fatalf("seq %d after %s: showAlert=false but message=%q", i, a.Type(), s.AlertMessage)
			}
		}
	}
}

func TestBeginAndOutcomeToggleLoading(t *testing.T) {
	pairs := []struct {
		begin   Action
		success Action
		failure Action
	}{
		{SetupBegin{}, SetupUserSuccess{User: core.Profile{ID: 1}, Token: "T"}, SetupFailure{Message: "x"}},
		{UpdateUserBegin{}, UpdateUserSuccess{User: core.Profile{ID: 1}, Token: "T"}, UpdateUserFailure{Message: "x"}},
		{UpdatePasswordBegin{}, UpdatePasswordSuccess{Message: "ok"}, UpdatePasswordFailure{Message: "x"}},
		{FetchReferenceDataBegin{}, FetchCategoryOptionsSuccess{}, FetchReferenceDataFailure{Message: "x"}},
		{FetchReferenceDataBegin{}, FetchTransactionTypesSuccess{}, FetchReferenceDataFailure{Message: "x"}},
		{CreateTransactionBegin{}, CreateTransactionSuccess{Message: "ok"}, CreateTransactionFailure{Message: "x"}},
		{EditTransactionBegin{}, EditTransactionSuccess{Message: "ok"}, EditTransactionFailure{Message: "x"}},
		{DeleteTransactionBegin{}, DeleteTransactionSuccess{Message: "ok"}, DeleteTransactionFailure{Message: "x"}},
		{FetchTransactionsBegin{Seq: 3}, FetchTransactionsSuccess{Seq: 3}, FetchTransactionsFailure{Seq: 3, Message: "x"}},
		{FetchTransactionStatsBegin{}, FetchTransactionStatsSuccess{}, FetchTransactionStatsFailure{Message: "x"}},
	}
	for _, p := range pairs {
		t.Run(p.begin.Type(), func(t *testing.T) {
			s := mustReduce(t, loaded(), p.begin)
			if !s.IsLoading {
				t.Fatal("begin must set isLoading")
			}
			if got := mustReduce(t, s, p.success); got.IsLoading {
				t.Fatalf("%s left isLoading=true", p.success.Type())
			}
			got := mustReduce(t, s, p.failure)
			if got.IsLoading || !got.ShowAlert || got.AlertType != core.AlertDanger || got.AlertMessage != "x" {
				t.Fatalf("%s produced %+v", p.failure.Type(), got)
			}
		})
	}
}

func TestSetupUserSuccessReplacesSession(t *testing.T) {
	s := mustReduce(t, loaded(), SetupBegin{}, SetupUserSuccess{
		User:    core.Profile{ID: 1, Name: "A"},
		Token:   "T",
		Message: "¡Bienvenido/a!",
	})
	if s.User == nil || s.User.ID != 1 || s.User.Name != "A" || s.Token != "T" {
		t.Fatalf("session not replaced: %+v", s.Session())
	}
	if !s.ShowAlert || s.AlertType != core.AlertSuccess || s.AlertMessage != "¡Bienvenido/a!" {
		t.Fatalf("unexpected alert: %+v", s)
	}
}

func TestLogoutClearsSessionTogetherAndKeepsAlert(t *testing.T) {
	s := mustReduce(t, loaded(),
		SetupUserSuccess{User: core.Profile{ID: 1}, Token: "T", Message: "ok"},
		DisplayAlert{Message: "adiós", AlertType: core.AlertSuccess},
		LogoutUser{},
	)
	if s.User != nil || s.Token != "" {
		t.Fatalf("session not cleared: %+v", s.Session())
	}
	if !s.ShowAlert || s.AlertMessage != "adiós" {
		t.Fatal("logout must not touch UI feedback")
	}
}

func TestClearAlertGeneration(t *testing.T) {
	s := mustReduce(t, loaded(), DisplayAlert{Message: "first", AlertType: core.AlertSuccess})
	stale := s.AlertGeneration
	s = mustReduce(t, s, DisplayAlert{Message: "second", AlertType: core.AlertDanger})

	s = mustReduce(t, s, ClearAlert{Generation: stale})
	if !s.ShowAlert || s.AlertMessage != "second" {
		t.Fatal("a stale clear must not hide a newer alert")
	}

	s = mustReduce(t, s, ClearAlert{Generation: s.AlertGeneration})
	if s.ShowAlert || s.AlertMessage != "" || s.AlertType != "" {
		t.Fatalf("current clear should hide alert: %+v", s)
	}
}

func TestClearTransactionFormIsIdempotent(t *testing.T) {
	s := mustReduce(t, loaded(), HandleTransactionInput{Field: core.FieldDescription, Value: "algo"}, SetEditTransaction{ID: 5})
	once := mustReduce(t, s, ClearTransactionFormValues{})
	twice := mustReduce(t, once, ClearTransactionFormValues{})
	if once.Form != twice.Form || once.IsEditing != twice.IsEditing || once.EditTransactionID != twice.EditTransactionID {
		t.Fatalf("not idempotent: %+v vs %+v", once, twice)
	}
}

func TestSetEditThenClearRestoresDefaults(t *testing.T) {
	for _, id := range []int64{5, 6} {
		s := mustReduce(t, loaded(), SetEditTransaction{ID: id})
		if !s.IsEditing || s.EditTransactionID != id {
			t.Fatalf("expected editing %d, got %+v", id, s)
		}
		s = mustReduce(t, s, ClearTransactionFormValues{})
		if s.IsEditing || s.EditTransactionID != 0 || s.Form != defaults {
			t.Fatalf("clear did not restore defaults: %+v", s)
		}
	}
}

func TestSetEditTransactionPopulatesForm(t *testing.T) {
	s := mustReduce(t, loaded(), SetEditTransaction{ID: 5})
	want := core.TransactionForm{Description: "Sueldo", Amount: "1000", Type: "1", Date: "2022-03-01", Category: "2"}
	if s.Form != want {
		t.Fatalf("form = %+v, want %+v", s.Form, want)
	}
}

func TestSetEditTransactionMissIsNoop(t *testing.T) {
	before := mustReduce(t, loaded(), HandleTransactionInput{Field: core.FieldAmount, Value: "10"})
	after := mustReduce(t, before, SetEditTransaction{ID: 99})
	if after.IsEditing || after.Form != before.Form {
		t.Fatalf("miss should be a no-op: %+v", after)
	}
}

func TestFilterChangesResetPage(t *testing.T) {
	fields := map[string]string{
		core.FieldSearch:         "cine",
		core.FieldSearchType:     "2",
		core.FieldSearchCategory: "3",
		core.FieldSort:           "asc",
	}
	for field, value := range fields {
		s := mustReduce(t, loaded(), ChangePage{Page: 4}, HandleFilterChange{Field: field, Value: value})
		if s.Filter.CurrentPage != 1 {
			t.Fatalf("%s did not reset page: %+v", field, s.Filter)
		}
	}
}

func TestChangePageLeavesFiltersUntouched(t *testing.T) {
	s := mustReduce(t, loaded(), HandleFilterChange{Field: core.FieldSearch, Value: "cine"}, HandleFilterChange{Field: core.FieldSort, Value: "asc"})
	before := s.Filter
	s = mustReduce(t, s, ChangePage{Page: 7})
	before.CurrentPage = 7
	if s.Filter != before {
		t.Fatalf("filter = %+v, want %+v", s.Filter, before)
	}
}

func TestClearFilters(t *testing.T) {
	s := mustReduce(t, loaded(), HandleFilterChange{Field: core.FieldSearch, Value: "x"}, ChangePage{Page: 3}, ClearFilters{})
	if s.Filter != core.DefaultSearchFilter() {
		t.Fatalf("filter = %+v", s.Filter)
	}
}

func TestFilterChangeMarksPageCountStale(t *testing.T) {
	s := mustReduce(t, loaded(), FetchTransactionsBegin{Seq: 1}, FetchTransactionsSuccess{Seq: 1, NumOfPages: 3})
	if s.PagesStale {
		t.Fatal("stale right after a fetch")
	}
	s = mustReduce(t, s, HandleFilterChange{Field: core.FieldSearch, Value: "cine"})
	if !s.PagesStale {
		t.Fatal("filter change kept the page count fresh")
	}
	s = mustReduce(t, s, FetchTransactionsBegin{Seq: 2}, FetchTransactionsSuccess{Seq: 2, NumOfPages: 1})
	if s.PagesStale || s.NumOfPages != 1 {
		t.Fatalf("after refetch stale=%v pages=%d", s.PagesStale, s.NumOfPages)
	}
	if s = mustReduce(t, s, ClearFilters{}); !s.PagesStale {
		t.Fatal("ClearFilters kept the page count fresh")
	}
}

func TestFormAndFilterNamespacesAreSeparate(t *testing.T) {
	s := mustReduce(t, loaded(), HandleTransactionInput{Field: core.FieldDescription, Value: "x"})
	if s.Filter != core.DefaultSearchFilter() {
		t.Fatal("form input touched the filter")
	}
	if _, err := Reduce(s, HandleTransactionInput{Field: core.FieldSearch, Value: "x"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := Reduce(s, HandleFilterChange{Field: core.FieldAmount, Value: "1"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := Reduce(s, HandleFilterChange{Field: core.FieldSort, Value: "sideways"}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestStaleFetchIsDropped(t *testing.T) {
	s := mustReduce(t, loaded(), FetchTransactionsBegin{Seq: 1}, FetchTransactionsBegin{Seq: 2})

	s = mustReduce(t, s, FetchTransactionsSuccess{Seq: 2, Transactions: []core.Transaction{{ID: 20}}, Total: 11, NumOfPages: 2})
	s = mustReduce(t, s, FetchTransactionsSuccess{Seq: 1, Transactions: []core.Transaction{{ID: 10}}, Total: 1, NumOfPages: 1})
	if len(s.Transactions) != 1 || s.Transactions[0].ID != 20 || s.Total != 11 || s.NumOfPages != 2 {
		t.Fatalf("stale response overwrote newer page: %+v", s.Transactions)
	}

	s = mustReduce(t, s, FetchTransactionsFailure{Seq: 1, Message: "late"})
	if s.ShowAlert {
		t.Fatal("stale failure must not raise an alert")
	}
}

func TestFetchTransactionsSuccessIsSilent(t *testing.T) {
	s := mustReduce(t, loaded(), FetchTransactionsBegin{Seq: 1}, FetchTransactionsSuccess{Seq: 1, Total: 0, NumOfPages: 0})
	if s.ShowAlert || s.IsLoading {
		t.Fatalf("unexpected feedback: %+v", s)
	}
}

func TestUnknownActionsAreRejected(t *testing.T) {
	if _, err := Reduce(loaded(), nil); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("nil action: %v", err)
	}
	if _, err := DecodeAction("CLEAR_ALERTS", nil); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("typo must be rejected, got %v", err)
	}
	if _, err := Reduce(loaded(), DisplayAlert{Message: "x", AlertType: "warning"}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("unexpected alert type accepted: %v", err)
	}
}

func TestDecodeAction(t *testing.T) {
	a, err := DecodeAction(TypeChangePage, []byte(`{"page":3}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	s := mustReduce(t, loaded(), a)
	if s.Filter.CurrentPage != 3 {
		t.Fatalf("page = %d", s.Filter.CurrentPage)
	}

	payload, _ := json.Marshal(map[string]any{"message": "hola", "type": "success"})
	a, err = DecodeAction(TypeDisplayAlert, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := a.(DisplayAlert); !ok {
		t.Fatalf("expected value variant, got %T", a)
	}

	if _, err := DecodeAction(TypeChangePage, []byte(`{"page":"x"}`)); err == nil {
		t.Fatal("expected payload decode error")
	}
}

func TestReducerDoesNotMutateInput(t *testing.T) {
	s := loaded()
	next := mustReduce(t, s, FetchTransactionsBegin{Seq: 1}, FetchTransactionsSuccess{Seq: 1, Transactions: []core.Transaction{{ID: 1}}})
	if len(s.Transactions) != 2 || s.Transactions[0].ID != 5 {
		t.Fatal("input state was mutated")
	}
	if len(next.Transactions) != 1 {
		t.Fatalf("unexpected next state: %+v", next.Transactions)
	}
}
