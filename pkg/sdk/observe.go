package profilematch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

// sdkMetrics are the per-operation collectors of an in-process client.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "profilematch",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "SDK operations by name and outcome (ok, validation, not_found, internal).",
	}, []string{"operation", "status"})
	dur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "profilematch",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "SDK operation duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	var err error
	if ops, err = shared(reg, ops); err != nil {
		return nil, err
	}
	if dur, err = shared(reg, dur); err != nil {
		return nil, err
	}
	return &sdkMetrics{operations: ops, duration: dur}, nil
}

// shared registers c, or returns the identical collector a previous client already registered.
func shared[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("profilematch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("profilematch: metric already registered as %T", are.ExistingCollector)
	}
	return existing, nil
}

// observer logs and counts client operations. Both halves are optional.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}
	m, err := newSDKMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

// observe records one finished operation. Only internal failures are logged above debug.
func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	status := "ok"
	if err != nil {
		status = domain.KindOf(err).String()
	}

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	if o.logger == nil {
		return
	}
	level := slog.LevelDebug
	if status == domain.KindInternal.String() {
		level = slog.LevelWarn
	}
	o.logger.Log(context.Background(), level, "profilematch operation",
		slog.String("op", op),
		slog.String("status", status),
		slog.Duration("duration", elapsed),
		slog.Any("error", err),
	)
}
