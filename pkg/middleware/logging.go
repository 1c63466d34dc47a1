package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/taskvine/taskvine/pkg/composables"
	"github.com/taskvine/taskvine/pkg/httpapi"
)

type statusWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *statusWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func requestID(r *http.Request, header string) string {
	if header != "" && r.Header.Get(header) != "" {
		return r.Header.Get(header)
	}
	return uuid.New().String()
}

// WithLogger attaches a per-request logger entry to the context, logs
// request start and completion, and recovers panics into a stable JSON 500.
func WithLogger(logger *logrus.Logger, requestIDHeader string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestID(r, requestIDHeader)

			entry := logger.WithFields(logrus.Fields{
				"request_id": id,
				"path":       r.URL.Path,
				"method":     r.Method,
			})
			entry.WithFields(logrus.Fields{
				"ip":         r.RemoteAddr,
				"user_agent": r.UserAgent(),
			}).Info("request started")

			w.Header().Set("X-Request-Id", id)
			wrapped := &statusWriter{ResponseWriter: w}
			ctx := composables.WithLogger(r.Context(), entry)

			defer func() {
				if recovered := recover(); recovered != nil {
					entry.WithFields(logrus.Fields{
						"panic": recovered,
						"stack": string(debug.Stack()),
					}).Error("panic recovered in request handler")
					if !wrapped.statusWritten {
						_ = httpapi.WriteError(
							wrapped,
							http.StatusInternalServerError,
							"INTERNAL_SERVER_ERROR",
							"internal server error",
							map[string]string{"request_id": id},
						)
					}
				}
			}()

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			entry.WithFields(logrus.Fields{
				"status":   wrapped.Status(),
				"duration": time.Since(start).String(),
			}).Info("request completed")
		})
	}
}

// WithParams stores raw request metadata for handlers that need it.
func WithParams() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			params := &composables.Params{
				IP:        r.RemoteAddr,
				UserAgent: r.UserAgent(),
				RequestID: w.Header().Get("X-Request-Id"),
				Request:   r,
				Writer:    w,
			}
			next.ServeHTTP(w, r.WithContext(composables.WithParams(r.Context(), params)))
		})
	}
}
