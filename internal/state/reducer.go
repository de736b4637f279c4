package state

import (
	"fmt"

	"fintrack/internal/core"
)

// Reduce computes the next state. It performs no I/O and never mutates s.
// Unknown actions and unknown form/filter fields are errors, so a typo in
// the protocol cannot pass as a silent no-op.
func Reduce(s State, a Action) (State, error) {
	if a == nil {
		return s, fmt.Errorf("%w: nil", ErrUnknownAction)
	}

	switch act := deref(a).(type) {
	case DisplayAlert:
		if !act.AlertType.IsValid() {
			return s, fmt.Errorf("%w: alert type %q", ErrInvalidValue, act.AlertType)
		}
		return s.alert(act.AlertType, act.Message), nil

	case ClearAlert:
		if act.Generation != 0 && act.Generation != s.AlertGeneration {
			return s, nil
		}
		s.ShowAlert = false
		s.AlertMessage = ""
		s.AlertType = ""
		return s, nil

	case SetupBegin, UpdateUserBegin, UpdatePasswordBegin, FetchReferenceDataBegin,
		CreateTransactionBegin, EditTransactionBegin, DeleteTransactionBegin,
		FetchTransactionStatsBegin:
		s.IsLoading = true
		return s, nil

	case SetupUserSuccess:
		s = s.withUser(act.User, act.Token)
		return s.succeed(act.Message), nil

	case SetupFailure:
		return s.fail(act.Message), nil

	case LogoutUser:
		s.User = nil
		s.Token = ""
		return s, nil

	case UpdateUserSuccess:
		s = s.withUser(act.User, act.Token)
		return s.succeed(act.Message), nil

	case UpdateUserFailure:
		return s.fail(act.Message), nil

	case UpdatePasswordSuccess:
		return s.succeed(act.Message), nil

	case UpdatePasswordFailure:
		return s.fail(act.Message), nil

	case ToggleSidebar:
		s.SidebarOpen = !s.SidebarOpen
		return s, nil

	case FetchCategoryOptionsSuccess:
		s.IsLoading = false
		s.CategoryOptions = append([]core.Category(nil), act.Categories...)
		return s, nil

	case FetchTransactionTypesSuccess:
		s.IsLoading = false
		s.TransactionTypes = append([]core.TransactionType(nil), act.Types...)
		return s, nil

	case FetchReferenceDataFailure:
		return s.fail(act.Message), nil

	case HandleTransactionInput:
		form := s.Form
		if !form.Set(act.Field, act.Value) {
			return s, fmt.Errorf("%w: form field %q", ErrUnknownField, act.Field)
		}
		s.Form = form
		return s, nil

	case ClearTransactionFormValues:
		return s.resetForm(), nil

	case SetEditTransaction:
		t, ok := s.FindTransaction(act.ID)
		if !ok {
			return s, nil
		}
		s.Form = core.FormFromTransaction(t)
		s.IsEditing = true
		s.EditTransactionID = t.ID
		return s, nil

	case CreateTransactionSuccess:
		return s.resetForm().succeed(act.Message), nil

	case CreateTransactionFailure:
		return s.fail(act.Message), nil

	case EditTransactionSuccess:
		return s.resetForm().succeed(act.Message), nil

	case EditTransactionFailure:
		return s.fail(act.Message), nil

	case DeleteTransactionSuccess:
		return s.succeed(act.Message), nil

	case DeleteTransactionFailure:
		return s.fail(act.Message), nil

	case FetchTransactionsBegin:
		s.IsLoading = true
		s.TransactionsSeq = act.Seq
		return s, nil

	case FetchTransactionsSuccess:
		if act.Seq != s.TransactionsSeq {
			return s, nil
		}
		s.IsLoading = false
		s.Transactions = append([]core.Transaction(nil), act.Transactions...)
		s.Total = act.Total
		s.NumOfPages = act.NumOfPages
		s.PagesStale = false
		return s, nil

	case FetchTransactionsFailure:
		if act.Seq != s.TransactionsSeq {
			return s, nil
		}
		return s.fail(act.Message), nil

	case FetchTransactionStatsSuccess:
		s.IsLoading = false
		stats := act.Stats
		s.Stats = &stats
		return s, nil

	case FetchTransactionStatsFailure:
		return s.fail(act.Message), nil

	case HandleFilterChange:
		filter := s.Filter
		if !filter.Set(act.Field, act.Value) {
			return s, fmt.Errorf("%w: filter field %q", ErrUnknownField, act.Field)
		}
		if !filter.Sort.IsValid() {
			return s, fmt.Errorf("%w: sort %q", ErrInvalidValue, act.Value)
		}
		filter.CurrentPage = 1
		s.Filter = filter
		s.PagesStale = true
		return s, nil

	case ClearFilters:
		s.Filter = core.DefaultSearchFilter()
		s.PagesStale = true
		return s, nil

	case ChangePage:
		s.Filter.CurrentPage = act.Page
		return s, nil
	}

	return s, fmt.Errorf("%w: %s", ErrUnknownAction, a.Type())
}

func (s State) alert(t core.AlertType, msg string) State {
	s.ShowAlert = true
	s.AlertType = t
	s.AlertMessage = msg
	s.AlertGeneration++
	return s
}

func (s State) succeed(msg string) State {
	s.IsLoading = false
	return s.alert(core.AlertSuccess, msg)
}

func (s State) fail(msg string) State {
	s.IsLoading = false
	return s.alert(core.AlertDanger, msg)
}

func (s State) withUser(u core.Profile, token string) State {
	s.User = &u
	s.Token = token
	return s
}

func (s State) resetForm() State {
	s.Form = s.FormDefaults
	s.IsEditing = false
	s.EditTransactionID = 0
	return s
}
