package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	logpkg "github.com/kailas-cloud/profilematch/internal/logger"
	"github.com/kailas-cloud/profilematch/internal/metrics"
	chiTransport "github.com/kailas-cloud/profilematch/internal/transport/chi"
)

// requestMiddlewares is the router chain, outermost first. The recoverer must
// stay inside wideEventMiddleware: a recovered panic still carries X-Request-ID
// and logs its http_request line with status 500.
func requestMiddlewares(logger *zap.Logger, apiKeys []string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		chiMiddleware.RequestID,
		wideEventMiddleware(logger),
		jsonRecoverer(logger),
		chiTransport.BearerAuthMiddleware(apiKeys),
		metrics.Middleware(),
	}
}

// jsonRecoverer answers a panicking handler with the regular 500 error body.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel is compared by identity
					panic(rvr)
				}
				logger.Error("panic recovered",
					zap.Any("panic", rvr),
					zap.String("path", r.URL.Path),
					zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
					zap.Stack("stacktrace"),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
					Code:    chiTransport.ErrorResponseCodeInternalError,
					Message: "internal error",
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware writes one http_request line per request and echoes X-Request-ID.
// Handlers get a logger tagged with the request ID through the context.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi RequestID runs first
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}
			reqLogger := logger.With(zap.String("request_id", requestID))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logpkg.Into(r.Context(), reqLogger)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				fields = append(fields, zap.String("route", rctx.RoutePattern()))
			}
			if tokens := ww.Header().Get("X-Embedding-Tokens"); tokens != "" {
				fields = append(fields, zap.String("embedding_tokens", tokens))
			}
			reqLogger.Log(requestLevel(status), "http_request", fields...)
		})
	}
}

// requestLevel raises server errors to error and client errors to warn.
func requestLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
