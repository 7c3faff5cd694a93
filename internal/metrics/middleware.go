package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// embeddingTokensHeader is set by handlers that called the embedding provider.
const embeddingTokensHeader = "X-Embedding-Tokens"

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "code"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	httpRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		},
	)

	httpEmbeddingTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_embedding_tokens_total",
			Help:      "Embedding tokens spent serving requests, by route",
		},
		[]string{"route"},
	)
)

var registerHTTP sync.Once

// RegisterHTTPMetrics registers the request metrics used by Middleware.
func RegisterHTTPMetrics() {
	registerHTTP.Do(func() {
		prometheus.MustRegister(httpRequestDuration, httpRequestsTotal, httpRequestsInFlight, httpEmbeddingTokens)
	})
}

// Middleware records request duration, count, in-flight requests and embedding
// tokens per chi route pattern.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := routeLabel(r)
			code := ww.Status()
			if code == 0 {
				code = http.StatusOK
			}
			labels := []string{r.Method, route, strconv.Itoa(code)}

			httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(labels...).Inc()

			if tokens, err := strconv.Atoi(ww.Header().Get(embeddingTokensHeader)); err == nil && tokens > 0 {
				httpEmbeddingTokens.WithLabelValues(route).Add(float64(tokens))
			}
		})
	}
}

// routeLabel keeps label cardinality bounded: profile IDs never reach a label.
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return "unmatched"
	}
	return rctx.RoutePattern()
}
