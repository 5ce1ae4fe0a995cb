package remote

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"facturas/internal/log"
)

// RequestIDHeader carries the request ID to the backend.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID returns a context whose outgoing requests carry id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID extracts the request ID from context
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// tracingTransport stamps every request with a request ID and logs its
// start and completion.
type tracingTransport struct {
	next   http.RoundTripper
	logger *log.Logger
}

func newTracingTransport(next http.RoundTripper, logger *log.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &tracingTransport{next: next, logger: logger}
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	id := RequestID(ctx)
	if id == "" {
		id = GenerateRequestID()
	}

	// RoundTrip must not modify the caller's request
	req = req.Clone(ctx)
	req.Header.Set(RequestIDHeader, id)

	start := time.Now()
	t.logger.DebugContext(ctx, "HTTP request started",
		"request_id", id,
		"method", req.Method,
		log.FieldPath, req.URL.Path)

	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		t.logger.WarnContext(ctx, "HTTP request failed",
			"request_id", id,
			log.FieldPath, req.URL.Path,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldError, err)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 500 {
		level = slog.LevelError
	} else if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	t.logger.Log(ctx, level, "HTTP request completed",
		"request_id", id,
		log.FieldPath, req.URL.Path,
		"status_code", resp.StatusCode,
		log.FieldDuration, duration.Milliseconds(),
		log.FieldSuccess, resp.StatusCode < 400)
	return resp, nil
}
