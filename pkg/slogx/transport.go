package slogx

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Transport wraps an http.RoundTripper and logs every outbound call at
// debug level. Failures to reach the server are logged at warn.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// NewTransport returns a logging transport over base (http.DefaultTransport if nil).
func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := t.Logger
	if logger == nil {
		logger = FromContext(req.Context())
	}
	logger = logger.With(
		"req_id", req.Header.Get(RequestIDHeader),
		"method", req.Method,
		"url", redactURL(req.URL),
	)

	start := time.Now()
	resp, err := t.Base.RoundTrip(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		logger.Warn("outbound_request_failed", "duration_ms", elapsed, "err", err)
		return nil, err
	}

	logger.Debug("outbound_request", "status", resp.StatusCode, "duration_ms", elapsed)
	return resp, nil
}

// redactURL hides the token query parameter that GET calls carry.
func redactURL(u *url.URL) string {
	c := *u
	q := c.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
		c.RawQuery = q.Encode()
	}
	return c.Redacted()
}
