// Package store is the single entry point consumers use to read client
// state and run operations against the API. State changes only through
// Dispatch, which applies the pure reducer under a mutex and then notifies
// subscribers with a snapshot.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/apiclient"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/query"
	"fintrack/internal/session"
	"fintrack/internal/state"
)

const (
	defaultAlertClearDelay    = 3 * time.Second
	defaultLoginRedirectDelay = 500 * time.Millisecond
	defaultRefDataTTL         = 10 * time.Minute
	defaultRefDataCacheSize   = 16
)

var ErrNoSessionStore = errors.New("session store is required")

type Options struct {
	// BaseURL is the API base including the /api/v1 prefix.
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration

	Sessions session.Store
	Notifier events.Notifier
	Logger   *log.Logger

	// CacheManager, when set, periodically expires reference data.
	CacheManager     *cache.Manager
	RefDataTTL       time.Duration
	RefDataCacheSize int

	// Zero selects the default delay. A negative AlertClearDelay keeps
	// alerts until they are replaced or cleared.
	AlertClearDelay    time.Duration
	LoginRedirectDelay time.Duration

	Now func() time.Time
}

type Store struct {
	mu    sync.Mutex
	state state.State

	listenersMu sync.Mutex
	listeners   map[int]func(state.State)
	nextID      int

	// version numbers dispatches under mu. Listeners are notified for
	// version n only after n-1 has been delivered.
	version    uint64
	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	notified   uint64

	clientMu sync.RWMutex
	base     *apiclient.Client
	client   *apiclient.Client

	sessions session.Store
	notifier events.Notifier
	logger   *log.Logger

	categories cache.Cache[[]core.Category]
	types      cache.Cache[[]core.TransactionType]
	flight     singleflight.Group

	seq query.Sequencer

	alerts             *alertScheduler
	alertClearDelay    time.Duration
	loginRedirectDelay time.Duration

	now func() time.Time
}

// New hydrates the session from the session store and builds the API
// client bound to the hydrated token.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Sessions == nil {
		return nil, ErrNoSessionStore
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentStore)

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = events.Nop{}
	}

	base, err := apiclient.New(apiclient.Options{
		BaseURL:    opts.BaseURL,
		Timeout:    opts.Timeout,
		HTTPClient: opts.HTTPClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	sess, err := opts.Sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	ttl := opts.RefDataTTL
	if ttl <= 0 {
		ttl = defaultRefDataTTL
	}
	size := opts.RefDataCacheSize
	if size <= 0 {
		size = defaultRefDataCacheSize
	}
	categories := cache.NewLRUCache[[]core.Category](size, ttl).WithClock(now)
	types := cache.NewLRUCache[[]core.TransactionType](size, ttl).WithClock(now)
	if opts.CacheManager != nil {
		opts.CacheManager.Register(categories)
		opts.CacheManager.Register(types)
	}

	s := &Store{
		state:              state.Initial(sess, core.DefaultTransactionForm(now())),
		listeners:          make(map[int]func(state.State)),
		base:               base,
		sessions:           opts.Sessions,
		notifier:           notifier,
		logger:             logger,
		categories:         categories,
		types:              types,
		alertClearDelay:    durationOr(opts.AlertClearDelay, defaultAlertClearDelay),
		loginRedirectDelay: durationOr(opts.LoginRedirectDelay, defaultLoginRedirectDelay),
		now:                now,
	}
	s.notifyCond = sync.NewCond(&s.notifyMu)
	s.alerts = newAlertScheduler(s.clearAlertGeneration)
	s.rebuildClient(s.state.Token)

	logger.InfoContext(ctx, "Store initialized",
		log.FieldOperation, log.OpStartup,
		"logged_in", sess.LoggedIn())
	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to receive a snapshot after every dispatch.
func (s *Store) Subscribe(fn func(state.State)) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// Dispatch applies a to the state. Reducer errors leave the state as is.
// Listeners see snapshots in dispatch order and must not call Dispatch
// themselves.
func (s *Store) Dispatch(a state.Action) error {
	s.mu.Lock()
	prev := s.state
	next, err := state.Reduce(prev, a)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	if next.Token != prev.Token {
		s.rebuildClient(next.Token)
	}
	s.version++
	ver := s.version
	snap := next.Clone()
	s.mu.Unlock()

	s.logger.Debug("Action dispatched", log.FieldAction, a.Type())
	s.notifyMu.Lock()
	for s.notified != ver-1 {
		s.notifyCond.Wait()
	}
	s.notifyMu.Unlock()
	defer func() {
		s.notifyMu.Lock()
		s.notified = ver
		s.notifyCond.Broadcast()
		s.notifyMu.Unlock()
	}()

	for _, fn := range s.subscribers() {
		fn(snap)
	}
	return nil
}

// Close stops any pending alert timer.
func (s *Store) Close() {
	s.alerts.cancel()
}

// dispatch is used by operations, whose actions are always well formed.
func (s *Store) dispatch(a state.Action) {
	if err := s.Dispatch(a); err != nil {
		s.logger.Error("Dispatch failed", log.FieldAction, a.Type(), log.FieldError, err)
	}
}

func (s *Store) subscribers() []func(state.State) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	out := make([]func(state.State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

// rebuildClient replaces the API client after a token change. The
// unauthorized hook is bound to the token the client was built with, so
// a late 401 from a previous session cannot log out the current one.
// Called with s.mu held.
func (s *Store) rebuildClient(token string) {
	c := s.base.WithToken(token).WithUnauthorized(s.unauthorizedFor(token))
	s.clientMu.Lock()
	s.client = c
	s.clientMu.Unlock()
}

func (s *Store) api() *apiclient.Client {
	s.clientMu.RLock()
	defer s.clientMu.RUnlock()
	return s.client
}

func (s *Store) currentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

func (s *Store) unauthorizedFor(token string) apiclient.UnauthorizedFunc {
	return func(status int) {
		if s.currentToken() != token {
			s.logger.Debug("Ignoring unauthorized response from a previous session",
				log.FieldStatusCode, status)
			return
		}
		s.logger.Warn("Session invalidated by server",
			log.FieldOperation, log.OpInvalidate,
			log.FieldStatusCode, status)
		s.endSession(context.Background())
	}
}

// endSession logs out locally: state, persistence and cached reference
// data are cleared together.
func (s *Store) endSession(ctx context.Context) {
	userID := s.userID()
	s.dispatch(state.LogoutUser{})
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to clear persisted session",
			log.FieldOperation, log.OpLogout,
			log.FieldError, err)
	}
	s.categories.Purge()
	s.types.Purge()
	if userID == 0 {
		return
	}
	s.publish(ctx, events.NewSessionEvent(events.SessionEnded, userID))
}

func (s *Store) userID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return 0
	}
	return s.state.User.ID
}

func (s *Store) publish(ctx context.Context, e events.Event) {
	if err := s.notifier.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			"kind", string(e.Kind),
			log.FieldError, err)
	}
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d == 0 {
		return fallback
	}
	return d
}
