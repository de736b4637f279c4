package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrMalformedResponse = errors.New("malformed response body")

// RequestError is returned for any non-2xx response or transport failure.
// Status is zero when no response was received. Message is the server's
// "message" field, or empty when the body did not carry one.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsAuth reports whether the response invalidates the session.
func (e *RequestError) IsAuth() bool {
	return isAuthStatus(e.Status)
}

// IsAuthError reports whether err is a 401/403 RequestError.
func IsAuthError(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.IsAuth()
}

// MessageOr returns the server-supplied message carried by err, or fallback
// when there is none.
func MessageOr(err error, fallback string) string {
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}

func isAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
