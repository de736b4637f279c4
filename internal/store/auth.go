package store

import (
	"context"
	"errors"

	"fintrack/internal/apiclient"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/state"
	"fintrack/internal/trace"
)

// MsgGeneric is shown when a failed request carries no message.
const MsgGeneric = "Algo salió mal, intente nuevamente."

// Success messages used when the server does not send one.
const (
	MsgProfileUpdated     = "Perfil actualizado."
	MsgPasswordUpdated    = "Contraseña actualizada. Inicie sesión nuevamente."
	MsgTransactionCreated = "Transacción creada."
	MsgTransactionEdited  = "Transacción actualizada."
	MsgTransactionDeleted = "Transacción eliminada."
)

// SetupUser logs in or registers. On success the session is persisted and
// the success alert is cleared after the login redirect delay.
func (s *Store) SetupUser(ctx context.Context, creds core.Credentials, mode apiclient.AuthMode, successMessage string) error {
	ctx, _ = trace.Ensure(ctx)
	s.dispatch(state.SetupBegin{})

	res, err := s.api().Authenticate(ctx, mode, creds)
	if err != nil {
		return s.fail(ctx, log.OpSetupUser, err, func(msg string) state.Action {
			return state.SetupFailure{Message: msg}
		})
	}

	s.dispatch(state.SetupUserSuccess{User: res.User, Token: res.Token, Message: successMessage})
	s.persist(ctx, log.OpSetupUser, res.User, res.Token)
	s.scheduleAlertClear(s.loginRedirectDelay)

	s.logger.InfoContext(ctx, "User authenticated",
		log.FieldOperation, log.OpSetupUser,
		log.FieldUserID, res.User.ID,
		"mode", string(mode))
	s.publish(ctx, events.NewSessionEvent(events.SessionStarted, res.User.ID))
	return nil
}

// UpdateUser saves the profile. An empty token in the reply keeps the
// current one.
func (s *Store) UpdateUser(ctx context.Context, profile core.Profile) error {
	ctx, _ = trace.Ensure(ctx)
	if err := core.ValidateProfile(profile); err != nil {
		return s.rejectInput(err)
	}
	s.dispatch(state.UpdateUserBegin{})

	res, err := s.api().UpdateUser(ctx, profile)
	if err != nil {
		return s.fail(ctx, log.OpUpdateUser, err, func(msg string) state.Action {
			return state.UpdateUserFailure{Message: msg}
		})
	}

	token := res.Token
	if token == "" {
		token = s.currentToken()
	}
	s.dispatch(state.UpdateUserSuccess{User: res.User, Token: token, Message: MsgProfileUpdated})
	s.persist(ctx, log.OpUpdateUser, res.User, token)
	s.scheduleAlertClear(s.alertClearDelay)

	s.logger.InfoContext(ctx, "Profile updated",
		log.FieldOperation, log.OpUpdateUser,
		log.FieldUserID, res.User.ID)
	return nil
}

// UpdatePassword changes the password and then ends the session so the
// user signs in again. The success alert outlives the logout.
func (s *Store) UpdatePassword(ctx context.Context, newPassword string) error {
	ctx, _ = trace.Ensure(ctx)
	if newPassword == "" {
		return s.rejectInput(&core.ValidationError{Message: core.MsgMissingFields, Err: core.ErrEmptyField})
	}
	s.dispatch(state.UpdatePasswordBegin{})

	msg, err := s.api().UpdatePassword(ctx, newPassword)
	if err != nil {
		return s.fail(ctx, log.OpUpdatePassword, err, func(msg string) state.Action {
			return state.UpdatePasswordFailure{Message: msg}
		})
	}
	if msg == "" {
		msg = MsgPasswordUpdated
	}

	s.dispatch(state.UpdatePasswordSuccess{Message: msg})
	snap := s.Snapshot()
	if snap.User != nil {
		s.persist(ctx, log.OpUpdatePassword, *snap.User, snap.Token)
	}
	s.alerts.cancel()
	s.endSession(ctx)
	s.scheduleAlertClear(s.alertClearDelay)

	s.logger.InfoContext(ctx, "Password updated, session ended",
		log.FieldOperation, log.OpUpdatePassword)
	return nil
}

// LogoutUser ends the session locally. Alert fields are left alone.
func (s *Store) LogoutUser(ctx context.Context) {
	s.endSession(ctx)
	s.logger.InfoContext(ctx, "User logged out", log.FieldOperation, log.OpLogout)
}

func (s *Store) ToggleSidebar() {
	s.dispatch(state.ToggleSidebar{})
}

func (s *Store) persist(ctx context.Context, op string, user core.Profile, token string) {
	if err := s.sessions.Save(ctx, user, token); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist session",
			log.FieldOperation, op,
			log.FieldError, err)
	}
}

// fail turns a request error into a failure action carrying the server
// message, or MsgGeneric when there is none, and returns err.
func (s *Store) fail(ctx context.Context, op string, err error, build func(string) state.Action) error {
	errorType := log.ErrorTypeServer
	var re *apiclient.RequestError
	switch {
	case apiclient.IsAuthError(err):
		errorType = log.ErrorTypeAuth
	case errors.As(err, &re) && re.Status == 0:
		errorType = log.ErrorTypeNetwork
	}
	s.logger.WarnContext(ctx, "Operation failed",
		log.FieldOperation, op,
		log.FieldCorrelationID, trace.GetCorrelationID(ctx),
		"error_type", errorType,
		log.FieldError, err)

	s.dispatch(build(apiclient.MessageOr(err, MsgGeneric)))
	s.scheduleAlertClear(s.alertClearDelay)
	return err
}

// rejectInput reports a client-side validation error as an alert without
// touching the loading state.
func (s *Store) rejectInput(err error) error {
	msg := MsgGeneric
	var ve *core.ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		msg = ve.Message
	}
	_ = s.DisplayAlert(msg, core.AlertDanger)
	return err
}
