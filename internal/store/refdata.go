package store

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/state"
	"fintrack/internal/trace"
)

const (
	categoriesKeyPrefix = "categories:"
	typesKeyPrefix      = "types:"
)

func (s *Store) FetchCategoryOptions(ctx context.Context) error {
	ctx, _ = trace.Ensure(ctx)
	s.dispatch(state.FetchReferenceDataBegin{})
	cats, err := s.loadCategories(ctx)
	if err != nil {
		return s.fail(ctx, log.OpFetchCategories, err, referenceFailure)
	}
	s.dispatch(state.FetchCategoryOptionsSuccess{Categories: cats})
	return nil
}

func (s *Store) FetchTransactionTypes(ctx context.Context) error {
	ctx, _ = trace.Ensure(ctx)
	s.dispatch(state.FetchReferenceDataBegin{})
	types, err := s.loadTypes(ctx)
	if err != nil {
		return s.fail(ctx, log.OpFetchTypes, err, referenceFailure)
	}
	s.dispatch(state.FetchTransactionTypesSuccess{Types: types})
	return nil
}

// LoadReferenceData fetches categories and transaction types in parallel.
// Nothing is applied unless both succeed.
func (s *Store) LoadReferenceData(ctx context.Context) error {
	ctx, _ = trace.Ensure(ctx)
	s.dispatch(state.FetchReferenceDataBegin{})

	var (
		cats  []core.Category
		types []core.TransactionType
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = s.loadCategories(gctx)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		types, err = s.loadTypes(gctx)
		if err != nil {
			return fmt.Errorf("transaction types: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return s.fail(ctx, log.OpLoadReferenceData, err, referenceFailure)
	}

	s.dispatch(state.FetchCategoryOptionsSuccess{Categories: cats})
	s.dispatch(state.FetchTransactionTypesSuccess{Types: types})
	return nil
}

// loadCategories serves from the cache keyed by token. Concurrent misses
// for the same key share one request.
func (s *Store) loadCategories(ctx context.Context) ([]core.Category, error) {
	client := s.api()
	key := categoriesKeyPrefix + client.Token()
	if cats, ok := s.categories.Get(key); ok {
		return cats, nil
	}
	v, err, shared := s.flight.Do(key, func() (any, error) {
		cats, err := client.Categories(ctx)
		if err != nil {
			return nil, err
		}
		s.categories.Set(key, cats)
		return cats, nil
	})
	if err != nil {
		return nil, err
	}
	cats, ok := v.([]core.Category)
	if !ok {
		return nil, fmt.Errorf("unexpected categories result %T", v)
	}
	s.logger.DebugContext(ctx, "Categories loaded", "count", len(cats), "shared", shared)
	return cats, nil
}

func (s *Store) loadTypes(ctx context.Context) ([]core.TransactionType, error) {
	client := s.api()
	key := typesKeyPrefix + client.Token()
	if types, ok := s.types.Get(key); ok {
		return types, nil
	}
	v, err, shared := s.flight.Do(key, func() (any, error) {
		types, err := client.TransactionTypes(ctx)
		if err != nil {
			return nil, err
		}
		s.types.Set(key, types)
		return types, nil
	})
	if err != nil {
		return nil, err
	}
	types, ok := v.([]core.TransactionType)
	if !ok {
		return nil, fmt.Errorf("unexpected transaction types result %T", v)
	}
	s.logger.DebugContext(ctx, "Transaction types loaded", "count", len(types), "shared", shared)
	return types, nil
}

func referenceFailure(msg string) state.Action {
	return state.FetchReferenceDataFailure{Message: msg}
}
