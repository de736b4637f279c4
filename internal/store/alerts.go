package store

import (
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/state"
)

// alertScheduler owns the single pending alert-clear timer. Each timer
// carries the alert generation it was scheduled for, and the reducer
// ignores a clear whose generation is no longer current.
type alertScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	clear func(generation uint64)
}

func newAlertScheduler(clear func(uint64)) *alertScheduler {
	return &alertScheduler{clear: clear}
}

func (a *alertScheduler) schedule(generation uint64, delay time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(delay, func() { a.clear(generation) })
}

func (a *alertScheduler) cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (s *Store) clearAlertGeneration(generation uint64) {
	s.dispatch(state.ClearAlert{Generation: generation})
}

// scheduleAlertClear arranges for the alert showing now to be hidden after
// delay. A non-positive delay leaves the alert in place.
func (s *Store) scheduleAlertClear(delay time.Duration) {
	if delay <= 0 {
		return
	}
	s.mu.Lock()
	showing, generation := s.state.ShowAlert, s.state.AlertGeneration
	s.mu.Unlock()
	if !showing {
		return
	}
	s.alerts.schedule(generation, delay)
}

// DisplayAlert shows a message and schedules its removal.
func (s *Store) DisplayAlert(message string, alertType core.AlertType) error {
	if err := s.Dispatch(state.DisplayAlert{Message: message, AlertType: alertType}); err != nil {
		return err
	}
	s.scheduleAlertClear(s.alertClearDelay)
	return nil
}

// ClearAlert hides the current alert immediately.
func (s *Store) ClearAlert() {
	s.alerts.cancel()
	s.dispatch(state.ClearAlert{})
}
