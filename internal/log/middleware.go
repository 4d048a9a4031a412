package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type ctxKey struct{}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, or the slog default tagged
// with component "unknown" when ctx carries none.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// Middleware stores logger in every request context. When requestID is set
// and yields a value, the stored logger carries it as request_id.
func Middleware(logger *Logger, requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger
			if requestID != nil {
				if id := requestID(r); id != "" {
					l = l.With(FieldRequestID, id)
				}
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), l)))
		})
	}
}

// EventLogger writes the fixed-shape records the app emits for requests,
// appended transactions and failures.
type EventLogger struct {
	logger *Logger
}

func NewEventLogger(logger *Logger) *EventLogger {
	if logger == nil {
		logger = Discard()
	}
	return &EventLogger{logger: logger}
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// HTTPCompleted logs one finished request through the request-scoped logger.
func (e *EventLogger) HTTPCompleted(ctx context.Context, r *http.Request, status int, elapsed time.Duration, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()).
		WithHTTPResponse(status, elapsed.Milliseconds(), status < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)
	FromContext(ctx).Log(ctx, statusLevel(status), "HTTP request completed", fields.ToSlice()...)
}

// TransactionRecorded logs a durable append; records is the ledger size after it.
func (e *EventLogger) TransactionRecorded(ctx context.Context, date, desc string, amountCents int64, category, kind string, records int) {
	fields := NewFields().
		WithTransaction(date, desc, amountCents, category, kind).
		WithOperation(OpAppend).
		WithComponent(ComponentLedger)
	fields[FieldRecords] = records
	e.logger.Logger.InfoContext(ctx, "Transaction recorded", fields.ToSlice()...)
}

// Failure logs err at error level. fields may be nil.
func (e *EventLogger) Failure(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields = fields.WithError(err).WithOperation(operation).WithComponent(component)
	e.logger.Logger.ErrorContext(ctx, msg, fields.ToSlice()...)
}
