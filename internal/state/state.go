// Package state holds the client state tree, the closed set of actions that
// transition it, and the pure reducer applying them.
package state

import "fintrack/internal/core"

// State is the full client state. Values are treated as immutable: the
// reducer always builds a new State and never writes into shared slices.
type State struct {
	// Session
	User  *core.Profile
	Token string

	// UI feedback
	IsLoading       bool
	ShowAlert       bool
	AlertMessage    string
	AlertType       core.AlertType
	AlertGeneration uint64
	SidebarOpen     bool

	// Reference data
	CategoryOptions  []core.Category
	TransactionTypes []core.TransactionType

	// Transaction form. EditTransactionID is zero when not editing.
	Form              core.TransactionForm
	FormDefaults      core.TransactionForm
	IsEditing         bool
	EditTransactionID int64

	// Filters and the paginated list they produced
	Filter          core.SearchFilter
	Transactions    []core.Transaction
	Total           int
	NumOfPages      int
	TransactionsSeq uint64

	// PagesStale is set when the filter changed after NumOfPages was
	// reported, until the next successful fetch.
	PagesStale bool

	Stats *core.TransactionStats
}

// Initial builds the start-up state from a hydrated session.
func Initial(sess core.Session, formDefaults core.TransactionForm) State {
	s := State{
		Form:         formDefaults,
		FormDefaults: formDefaults,
		Filter:       core.DefaultSearchFilter(),
	}
	if sess.LoggedIn() {
		u := *sess.User
		s.User = &u
		s.Token = sess.Token
	}
	return s
}

// Session returns the session half of the state.
func (s State) Session() core.Session {
	return core.Session{User: s.User, Token: s.Token}
}

// Clone copies the slices so callers can hold on to a snapshot safely.
func (s State) Clone() State {
	c := s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	c.CategoryOptions = append([]core.Category(nil), s.CategoryOptions...)
	c.TransactionTypes = append([]core.TransactionType(nil), s.TransactionTypes...)
	c.Transactions = append([]core.Transaction(nil), s.Transactions...)
	if s.Stats != nil {
		st := *s.Stats
		c.Stats = &st
	}
	return c
}

// FindTransaction looks up a transaction on the currently loaded page.
func (s State) FindTransaction(id int64) (core.Transaction, bool) {
	for _, t := range s.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}
