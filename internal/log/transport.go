package log

import (
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/trace"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Transport logs every outbound request once it completes. 4xx responses
// log at warn, 5xx and transport failures at error.
type Transport struct {
	Base   http.RoundTripper
	Logger *Logger
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, logger *Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = Nop()
	}
	return &Transport{Base: base, Logger: logger.WithComponent(ComponentAPI)}
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Base.RoundTrip(r)
	elapsed := time.Since(start).Milliseconds()

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery).
		WithRequestID(r.Header.Get(RequestIDHeader)).
		WithCorrelationID(r.Header.Get(trace.CorrelationIDHeader))

	if err != nil {
		fields = fields.WithError(err).WithHTTPResponse(0, elapsed, false)
		t.Logger.LogContext(r.Context(), slog.LevelError, "API request failed", fields.ToSlice()...)
		return nil, err
	}

	level := slog.LevelInfo
	switch {
	case resp.StatusCode >= 500:
		level = slog.LevelError
	case resp.StatusCode >= 400:
		level = slog.LevelWarn
	}
	fields = fields.WithHTTPResponse(resp.StatusCode, elapsed, resp.StatusCode < 400)
	t.Logger.LogContext(r.Context(), level, "API request completed", fields.ToSlice()...)
	return resp, nil
}
