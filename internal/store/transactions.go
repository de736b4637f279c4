package store

import (
	"context"
	"errors"

	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/query"
	"fintrack/internal/state"
	"fintrack/internal/trace"
)

var ErrNotEditing = errors.New("no transaction is being edited")

// GetTransactions fetches the page selected by the current filter. If the
// server reports fewer pages than the current page, the filter moves to
// the last page and the list is fetched once more.
func (s *Store) GetTransactions(ctx context.Context) error {
	ctx, _ = trace.Ensure(ctx)
	return s.getTransactions(ctx, true)
}

func (s *Store) getTransactions(ctx context.Context, reconcile bool) error {
	seq := s.seq.Next()
	s.dispatch(state.FetchTransactionsBegin{Seq: seq})

	s.mu.Lock()
	filter := s.state.Filter
	s.mu.Unlock()

	page, err := s.api().Transactions(ctx, query.Transactions(filter))
	if err != nil {
		return s.fail(ctx, log.OpListTransactions, err, func(msg string) state.Action {
			return state.FetchTransactionsFailure{Seq: seq, Message: msg}
		})
	}

	s.dispatch(state.FetchTransactionsSuccess{
		Seq:          seq,
		Transactions: page.Transactions,
		Total:        page.Total,
		NumOfPages:   page.NumOfPages,
	})
	s.logger.DebugContext(ctx, "Transactions loaded",
		log.FieldOperation, log.OpListTransactions,
		log.FieldSeq, seq,
		log.FieldPage, filter.CurrentPage,
		"total", page.Total)

	if !reconcile || seq != s.seq.Current() {
		return nil
	}
	if last, refetch := query.Reconcile(filter.CurrentPage, page.NumOfPages); refetch {
		s.dispatch(state.ChangePage{Page: last})
		return s.getTransactions(ctx, false)
	}
	return nil
}

func (s *Store) FetchTransactionStats(ctx context.Context) error {
	ctx, _ = trace.Ensure(ctx)
	s.dispatch(state.FetchTransactionStatsBegin{})
	stats, err := s.api().Stats(ctx)
	if err != nil {
		return s.fail(ctx, log.OpFetchStats, err, func(msg string) state.Action {
			return state.FetchTransactionStatsFailure{Message: msg}
		})
	}
	s.dispatch(state.FetchTransactionStatsSuccess{Stats: stats})
	return nil
}

// CreateTransaction validates the form and submits it. Invalid input is
// reported with an alert and no request is made.
func (s *Store) CreateTransaction(ctx context.Context) error {
	ctx, _ = trace.Ensure(ctx)
	payload, err := s.Snapshot().Form.Payload()
	if err != nil {
		return s.rejectInput(err)
	}
	s.dispatch(state.CreateTransactionBegin{})

	msg, err := s.api().CreateTransaction(ctx, payload)
	if err != nil {
		return s.fail(ctx, log.OpCreateTransaction, err, func(msg string) state.Action {
			return state.CreateTransactionFailure{Message: msg}
		})
	}
	if msg == "" {
		msg = MsgTransactionCreated
	}
	s.dispatch(state.CreateTransactionSuccess{Message: msg})
	s.scheduleAlertClear(s.alertClearDelay)

	s.logger.InfoContext(ctx, "Transaction created", log.FieldOperation, log.OpCreateTransaction)
	s.publish(ctx, events.NewTransactionEvent(events.TransactionCreated, s.userID(), 0))
	return nil
}

// EditTransaction submits the form for the transaction selected with
// SetEditTransaction.
func (s *Store) EditTransaction(ctx context.Context) error {
	ctx, _ = trace.Ensure(ctx)
	snap := s.Snapshot()
	if !snap.IsEditing || snap.EditTransactionID == 0 {
		return ErrNotEditing
	}
	payload, err := snap.Form.Payload()
	if err != nil {
		return s.rejectInput(err)
	}
	id := snap.EditTransactionID
	s.dispatch(state.EditTransactionBegin{})

	msg, err := s.api().UpdateTransaction(ctx, id, payload)
	if err != nil {
		return s.fail(ctx, log.OpEditTransaction, err, func(msg string) state.Action {
			return state.EditTransactionFailure{Message: msg}
		})
	}
	if msg == "" {
		msg = MsgTransactionEdited
	}
	s.dispatch(state.EditTransactionSuccess{Message: msg})
	s.scheduleAlertClear(s.alertClearDelay)

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldOperation, log.OpEditTransaction,
		log.FieldTransactionID, id)
	s.publish(ctx, events.NewTransactionEvent(events.TransactionUpdated, s.userID(), id))
	return nil
}

// DeleteTransaction removes a transaction and, on success, re-fetches the
// list with the current filter before returning.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	ctx, _ = trace.Ensure(ctx)
	s.dispatch(state.DeleteTransactionBegin{})

	msg, err := s.api().DeleteTransaction(ctx, id)
	if err != nil {
		return s.fail(ctx, log.OpDeleteTransaction, err, func(msg string) state.Action {
			return state.DeleteTransactionFailure{Message: msg}
		})
	}
	if msg == "" {
		msg = MsgTransactionDeleted
	}
	s.dispatch(state.DeleteTransactionSuccess{Message: msg})
	s.scheduleAlertClear(s.alertClearDelay)

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDeleteTransaction,
		log.FieldTransactionID, id)
	s.publish(ctx, events.NewTransactionEvent(events.TransactionDeleted, s.userID(), id))

	return s.GetTransactions(ctx)
}

// SetEditTransaction loads a transaction from the current page into the
// form. Unknown ids leave the form untouched.
func (s *Store) SetEditTransaction(id int64) {
	s.dispatch(state.SetEditTransaction{ID: id})
}

func (s *Store) HandleInputChange(field, value string) error {
	return s.Dispatch(state.HandleTransactionInput{Field: field, Value: value})
}

func (s *Store) HandleFilterChange(field, value string) error {
	return s.Dispatch(state.HandleFilterChange{Field: field, Value: value})
}

func (s *Store) ClearTransactionForm() {
	s.dispatch(state.ClearTransactionFormValues{})
}

func (s *Store) ClearFilters() {
	s.dispatch(state.ClearFilters{})
}

// ChangePage moves to page, bounded by the page count of the last fetch.
// Before any fetch only page 1 is reachable. After a filter change the old
// count no longer applies, so only the lower bound is enforced and the
// next fetch reconciles the page.
func (s *Store) ChangePage(page int) {
	s.mu.Lock()
	numOfPages, stale := s.state.NumOfPages, s.state.PagesStale
	s.mu.Unlock()
	if stale {
		s.dispatch(state.ChangePage{Page: max(page, 1)})
		return
	}
	s.dispatch(state.ChangePage{Page: query.ClampPage(page, numOfPages)})
}
