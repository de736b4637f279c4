package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// Wire names of every action.
const (
	TypeDisplayAlert                 = "DISPLAY_ALERT"
	TypeClearAlert                   = "CLEAR_ALERT"
	TypeSetupBegin                   = "SETUP_BEGIN"
	TypeSetupUserSuccess             = "SETUP_USER_SUCCESS"
	TypeSetupFailure                 = "SETUP_FAILURE"
	TypeLogoutUser                   = "LOGOUT_USER"
	TypeUpdateUserBegin              = "UPDATE_USER_BEGIN"
	TypeUpdateUserSuccess            = "UPDATE_USER_SUCCESS"
	TypeUpdateUserFailure            = "UPDATE_USER_FAILURE"
	TypeUpdatePasswordBegin          = "UPDATE_PASSWORD_BEGIN"
	TypeUpdatePasswordSuccess        = "UPDATE_PASSWORD_SUCCESS"
	TypeUpdatePasswordFailure        = "UPDATE_PASSWORD_FAILURE"
	TypeToggleSidebar                = "TOGGLE_SIDEBAR"
	TypeFetchReferenceDataBegin      = "FETCH_REFERENCE_DATA_BEGIN"
	TypeFetchCategoryOptionsSuccess  = "FETCH_CATEGORY_OPTIONS_SUCCESS"
	TypeFetchTransactionTypesSuccess = "FETCH_TRANSACTION_TYPES_SUCCESS"
	TypeFetchReferenceDataFailure    = "FETCH_REFERENCE_DATA_FAILURE"
	TypeHandleTransactionInput       = "HANDLE_TRANSACTION_INPUT"
	TypeClearTransactionFormValues   = "CLEAR_TRANSACTION_FORM_VALUES"
	TypeSetEditTransaction           = "SET_EDIT_TRANSACTION"
	TypeCreateTransactionBegin       = "CREATE_TRANSACTION_BEGIN"
	TypeCreateTransactionSuccess     = "CREATE_TRANSACTION_SUCCESS"
	TypeCreateTransactionFailure     = "CREATE_TRANSACTION_FAILURE"
	TypeEditTransactionBegin         = "EDIT_TRANSACTION_BEGIN"
	TypeEditTransactionSuccess       = "EDIT_TRANSACTION_SUCCESS"
	TypeEditTransactionFailure       = "EDIT_TRANSACTION_FAILURE"
	TypeDeleteTransactionBegin       = "DELETE_TRANSACTION_BEGIN"
	TypeDeleteTransactionSuccess     = "DELETE_TRANSACTION_SUCCESS"
	TypeDeleteTransactionFailure     = "DELETE_TRANSACTION_FAILURE"
	TypeFetchTransactionsBegin       = "FETCH_TRANSACTIONS_BEGIN"
	TypeFetchTransactionsSuccess     = "FETCH_TRANSACTIONS_SUCCESS"
	TypeFetchTransactionsFailure     = "FETCH_TRANSACTIONS_FAILURE"
	TypeFetchTransactionStatsBegin   = "FETCH_TRANSACTION_STATS_BEGIN"
	TypeFetchTransactionStatsSuccess = "FETCH_TRANSACTION_STATS_SUCCESS"
	TypeFetchTransactionStatsFailure = "FETCH_TRANSACTION_STATS_FAILURE"
	TypeHandleFilterChange           = "HANDLE_FILTER_CHANGE"
	TypeClearFilters                 = "CLEAR_FILTERS"
	TypeChangePage                   = "CHANGE_PAGE"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidValue  = errors.New("invalid value")
)

// Action is a closed sum type: only this package can add variants, and
// Reduce handles each of them explicitly.
type Action interface {
	Type() string
	action()
}

type (
	DisplayAlert struct {
		Message   string         `json:"message"`
		AlertType core.AlertType `json:"type"`
	}

	// ClearAlert hides the alert. A non-zero Generation only clears the
	// alert that was current when the clear was scheduled.
	ClearAlert struct {
		Generation uint64 `json:"generation,omitempty"`
	}

	SetupBegin struct{}

	SetupUserSuccess struct {
		User    core.Profile `json:"user"`
		Token   string       `json:"token"`
		Message string       `json:"message"`
	}

	SetupFailure struct {
		Message string `json:"message"`
	}

	LogoutUser struct{}

	UpdateUserBegin struct{}

	UpdateUserSuccess struct {
		User    core.Profile `json:"user"`
		Token   string       `json:"token"`
		Message string       `json:"message"`
	}

	UpdateUserFailure struct {
		Message string `json:"message"`
	}

	UpdatePasswordBegin struct{}

	UpdatePasswordSuccess struct {
		Message string `json:"message"`
	}

	UpdatePasswordFailure struct {
		Message string `json:"message"`
	}

	ToggleSidebar struct{}

	FetchReferenceDataBegin struct{}

	FetchCategoryOptionsSuccess struct {
		Categories []core.Category `json:"categories"`
	}

	FetchTransactionTypesSuccess struct {
		Types []core.TransactionType `json:"types"`
	}

	FetchReferenceDataFailure struct {
		Message string `json:"message"`
	}

	HandleTransactionInput struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}

	ClearTransactionFormValues struct{}

	SetEditTransaction struct {
		ID int64 `json:"id"`
	}

	CreateTransactionBegin struct{}

	CreateTransactionSuccess struct {
		Message string `json:"message"`
	}

	CreateTransactionFailure struct {
		Message string `json:"message"`
	}

	EditTransactionBegin struct{}

	EditTransactionSuccess struct {
		Message string `json:"message"`
	}

	EditTransactionFailure struct {
		Message string `json:"message"`
	}

	DeleteTransactionBegin struct{}

	DeleteTransactionSuccess struct {
		Message string `json:"message"`
	}

	DeleteTransactionFailure struct {
		Message string `json:"message"`
	}

	FetchTransactionsBegin struct {
		Seq uint64 `json:"seq"`
	}

	FetchTransactionsSuccess struct {
		Seq          uint64             `json:"seq"`
		Transactions []core.Transaction `json:"transactions"`
		Total        int                `json:"total"`
		NumOfPages   int                `json:"numOfPages"`
	}

	FetchTransactionsFailure struct {
		Seq     uint64 `json:"seq"`
		Message string `json:"message"`
	}

	FetchTransactionStatsBegin struct{}

	FetchTransactionStatsSuccess struct {
		Stats core.TransactionStats `json:"stats"`
	}

	FetchTransactionStatsFailure struct {
		Message string `json:"message"`
	}

	// HandleFilterChange edits the search filter namespace, which is
	// separate from the transaction form.
	HandleFilterChange struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}

	ClearFilters struct{}

	ChangePage struct {
		Page int `json:"page"`
	}
)

func (DisplayAlert) Type() string                 { return TypeDisplayAlert }
func (ClearAlert) Type() string                   { return TypeClearAlert }
func (SetupBegin) Type() string                   { return TypeSetupBegin }
func (SetupUserSuccess) Type() string             { return TypeSetupUserSuccess }
func (SetupFailure) Type() string                 { return TypeSetupFailure }
func (LogoutUser) Type() string                   { return TypeLogoutUser }
func (UpdateUserBegin) Type() string              { return TypeUpdateUserBegin }
func (UpdateUserSuccess) Type() string            { return TypeUpdateUserSuccess }
func (UpdateUserFailure) Type() string            { return TypeUpdateUserFailure }
func (UpdatePasswordBegin) Type() string          { return TypeUpdatePasswordBegin }
func (UpdatePasswordSuccess) Type() string        { return TypeUpdatePasswordSuccess }
func (UpdatePasswordFailure) Type() string        { return TypeUpdatePasswordFailure }
func (ToggleSidebar) Type() string                { return TypeToggleSidebar }
func (FetchReferenceDataBegin) Type() string      { return TypeFetchReferenceDataBegin }
func (FetchCategoryOptionsSuccess) Type() string  { return TypeFetchCategoryOptionsSuccess }
func (FetchTransactionTypesSuccess) Type() string { return TypeFetchTransactionTypesSuccess }
func (FetchReferenceDataFailure) Type() string    { return TypeFetchReferenceDataFailure }
func (HandleTransactionInput) Type() string       { return TypeHandleTransactionInput }
func (ClearTransactionFormValues) Type() string   { return TypeClearTransactionFormValues }
func (SetEditTransaction) Type() string           { return TypeSetEditTransaction }
func (CreateTransactionBegin) Type() string       { return TypeCreateTransactionBegin }
func (CreateTransactionSuccess) Type() string     { return TypeCreateTransactionSuccess }
func (CreateTransactionFailure) Type() string     { return TypeCreateTransactionFailure }
func (EditTransactionBegin) Type() string         { return TypeEditTransactionBegin }
func (EditTransactionSuccess) Type() string       { return TypeEditTransactionSuccess }
func (EditTransactionFailure) Type() string       { return TypeEditTransactionFailure }
func (DeleteTransactionBegin) Type() string       { return TypeDeleteTransactionBegin }
func (DeleteTransactionSuccess) Type() string     { return TypeDeleteTransactionSuccess }
func (DeleteTransactionFailure) Type() string     { return TypeDeleteTransactionFailure }
func (FetchTransactionsBegin) Type() string       { return TypeFetchTransactionsBegin }
func (FetchTransactionsSuccess) Type() string     { return TypeFetchTransactionsSuccess }
func (FetchTransactionsFailure) Type() string     { return TypeFetchTransactionsFailure }
func (FetchTransactionStatsBegin) Type() string   { return TypeFetchTransactionStatsBegin }
func (FetchTransactionStatsSuccess) Type() string { return TypeFetchTransactionStatsSuccess }
func (FetchTransactionStatsFailure) Type() string { return TypeFetchTransactionStatsFailure }
func (HandleFilterChange) Type() string           { return TypeHandleFilterChange }
func (ClearFilters) Type() string                 { return TypeClearFilters }
func (ChangePage) Type() string                   { return TypeChangePage }

func (DisplayAlert) action()                 {}
func (ClearAlert) action()                   {}
func (SetupBegin) action()                   {}
func (SetupUserSuccess) action()             {}
func (SetupFailure) action()                 {}
func (LogoutUser) action()                   {}
func (UpdateUserBegin) action()              {}
func (UpdateUserSuccess) action()            {}
func (UpdateUserFailure) action()            {}
func (UpdatePasswordBegin) action()          {}
func (UpdatePasswordSuccess) action()        {}
func (UpdatePasswordFailure) action()        {}
func (ToggleSidebar) action()                {}
func (FetchReferenceDataBegin) action()      {}
func (FetchCategoryOptionsSuccess) action()  {}
func (FetchTransactionTypesSuccess) action() {}
func (FetchReferenceDataFailure) action()    {}
func (HandleTransactionInput) action()       {}
func (ClearTransactionFormValues) action()   {}
func (SetEditTransaction) action()           {}
func (CreateTransactionBegin) action()       {}
func (CreateTransactionSuccess) action()     {}
func (CreateTransactionFailure) action()     {}
func (EditTransactionBegin) action()         {}
func (EditTransactionSuccess) action()       {}
func (EditTransactionFailure) action()       {}
func (DeleteTransactionBegin) action()       {}
func (DeleteTransactionSuccess) action()     {}
func (DeleteTransactionFailure) action()     {}
func (FetchTransactionsBegin) action()       {}
func (FetchTransactionsSuccess) action()     {}
func (FetchTransactionsFailure) action()     {}
func (FetchTransactionStatsBegin) action()   {}
func (FetchTransactionStatsSuccess) action() {}
func (FetchTransactionStatsFailure) action() {}
func (HandleFilterChange) action()           {}
func (ClearFilters) action()                 {}
func (ChangePage) action()                   {}

// registry maps wire names to constructors of zero-valued actions.
var registry = map[string]func() Action{
	TypeDisplayAlert:                 func() Action { return &DisplayAlert{} },
	TypeClearAlert:                   func() Action { return &ClearAlert{} },
	TypeSetupBegin:                   func() Action { return &SetupBegin{} },
	TypeSetupUserSuccess:             func() Action { return &SetupUserSuccess{} },
	TypeSetupFailure:                 func() Action { return &SetupFailure{} },
	TypeLogoutUser:                   func() Action { return &LogoutUser{} },
	TypeUpdateUserBegin:              func() Action { return &UpdateUserBegin{} },
	TypeUpdateUserSuccess:            func() Action { return &UpdateUserSuccess{} },
	TypeUpdateUserFailure:            func() Action { return &UpdateUserFailure{} },
	TypeUpdatePasswordBegin:          func() Action { return &UpdatePasswordBegin{} },
	TypeUpdatePasswordSuccess:        func() Action { return &UpdatePasswordSuccess{} },
	TypeUpdatePasswordFailure:        func() Action { return &UpdatePasswordFailure{} },
	TypeToggleSidebar:                func() Action { return &ToggleSidebar{} },
	TypeFetchReferenceDataBegin:      func() Action { return &FetchReferenceDataBegin{} },
	TypeFetchCategoryOptionsSuccess:  func() Action { return &FetchCategoryOptionsSuccess{} },
	TypeFetchTransactionTypesSuccess: func() Action { return &FetchTransactionTypesSuccess{} },
	TypeFetchReferenceDataFailure:    func() Action { return &FetchReferenceDataFailure{} },
	TypeHandleTransactionInput:       func() Action { return &HandleTransactionInput{} },
	TypeClearTransactionFormValues:   func() Action { return &ClearTransactionFormValues{} },
	TypeSetEditTransaction:           func() Action { return &SetEditTransaction{} },
	TypeCreateTransactionBegin:       func() Action { return &CreateTransactionBegin{} },
	TypeCreateTransactionSuccess:     func() Action { return &CreateTransactionSuccess{} },
	TypeCreateTransactionFailure:     func() Action { return &CreateTransactionFailure{} },
	TypeEditTransactionBegin:         func() Action { return &EditTransactionBegin{} },
	TypeEditTransactionSuccess:       func() Action { return &EditTransactionSuccess{} },
	TypeEditTransactionFailure:       func() Action { return &EditTransactionFailure{} },
	TypeDeleteTransactionBegin:       func() Action { return &DeleteTransactionBegin{} },
	TypeDeleteTransactionSuccess:     func() Action { return &DeleteTransactionSuccess{} },
	TypeDeleteTransactionFailure:     func() Action { return &DeleteTransactionFailure{} },
	TypeFetchTransactionsBegin:       func() Action { return &FetchTransactionsBegin{} },
	TypeFetchTransactionsSuccess:     func() Action { return &FetchTransactionsSuccess{} },
	TypeFetchTransactionsFailure:     func() Action { return &FetchTransactionsFailure{} },
	TypeFetchTransactionStatsBegin:   func() Action { return &FetchTransactionStatsBegin{} },
	TypeFetchTransactionStatsSuccess: func() Action { return &FetchTransactionStatsSuccess{} },
	TypeFetchTransactionStatsFailure: func() Action { return &FetchTransactionStatsFailure{} },
	TypeHandleFilterChange:           func() Action { return &HandleFilterChange{} },
	TypeClearFilters:                 func() Action { return &ClearFilters{} },
	TypeChangePage:                   func() Action { return &ChangePage{} },
}

// DecodeAction builds an action from its wire name and optional JSON
// payload. Misspelled names fail with ErrUnknownAction.
func DecodeAction(name string, payload []byte) (Action, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	a := ctor()
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, a); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", name, err)
		}
	}
	return deref(a), nil
}

// deref turns the pointer used for decoding back into the value variant
// the reducer switches on.
func deref(a Action) Action {
	switch v := a.(type) {
	case *DisplayAlert:
		return *v
	case *ClearAlert:
		return *v
	case *SetupBegin:
		return *v
	case *SetupUserSuccess:
		return *v
	case *SetupFailure:
		return *v
	case *LogoutUser:
		return *v
	case *UpdateUserBegin:
		return *v
	case *UpdateUserSuccess:
		return *v
	case *UpdateUserFailure:
		return *v
	case *UpdatePasswordBegin:
		return *v
	case *UpdatePasswordSuccess:
		return *v
	case *UpdatePasswordFailure:
		return *v
	case *ToggleSidebar:
		return *v
	case *FetchReferenceDataBegin:
		return *v
	case *FetchCategoryOptionsSuccess:
		return *v
	case *FetchTransactionTypesSuccess:
		return *v
	case *FetchReferenceDataFailure:
		return *v
	case *HandleTransactionInput:
		return *v
	case *ClearTransactionFormValues:
		return *v
	case *SetEditTransaction:
		return *v
	case *CreateTransactionBegin:
		return *v
	case *CreateTransactionSuccess:
		return *v
	case *CreateTransactionFailure:
		return *v
	case *EditTransactionBegin:
		return *v
	case *EditTransactionSuccess:
		return *v
	case *EditTransactionFailure:
		return *v
	case *DeleteTransactionBegin:
		return *v
	case *DeleteTransactionSuccess:
		return *v
	case *DeleteTransactionFailure:
		return *v
	case *FetchTransactionsBegin:
		return *v
	case *FetchTransactionsSuccess:
		return *v
	case *FetchTransactionsFailure:
		return *v
	case *FetchTransactionStatsBegin:
		return *v
	case *FetchTransactionStatsSuccess:
		return *v
	case *FetchTransactionStatsFailure:
		return *v
	case *HandleFilterChange:
		return *v
	case *ClearFilters:
		return *v
	case *ChangePage:
		return *v
	}
	return a
}
