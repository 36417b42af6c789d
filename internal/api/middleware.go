// internal/api/middleware.go
package api

import (
	"fmt"
	"net/http"
	"time"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

func record(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w}
}

// routeTemplate keeps metric and span cardinality bounded by reporting the
// matched pattern instead of the raw path.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func recoverMiddleware(errHandler *apperrors.ErrorHandler, log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					log.Error("panic serving request", map[string]interface{}{
						"method": r.Method,
						"path":   r.URL.Path,
						"panic":  fmt.Sprint(p),
					})
					errHandler.HandleHTTPError(w, r, apperrors.NewInternalError(fmt.Errorf("panic: %v", p)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func observeMiddleware(obs *observability.Observability) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeTemplate(r)
			ctx, span := obs.StartSpan(r.Context(), r.Method+" "+route,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
			)
			defer span.End()

			rec := record(w)
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.code()
			span.SetAttributes(attribute.Int("http.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			obs.RecordRequest(ctx, r.Method, route, status, time.Since(start))
		})
	}
}

func logMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := record(w)
			start := time.Now()
			next.ServeHTTP(rec, r)

			log.Info("request served", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"route":      routeTemplate(r),
				"status":     rec.code(),
				"bytes":      rec.bytes,
				"durationMs": time.Since(start).Milliseconds(),
			})
		})
	}
}
