package profile

import (
	"context"
	"time"

	"github.com/kailas-cloud/profilematch/internal/domain"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
	"github.com/kailas-cloud/profilematch/internal/metrics"
)

// InstrumentedRepository records store latency and outcome per operation.
type InstrumentedRepository struct {
	inner   Repository
	backend string
}

// NewInstrumentedRepository wraps a repository with store metrics.
func NewInstrumentedRepository(inner Repository, backend string) *InstrumentedRepository {
	return &InstrumentedRepository{inner: inner, backend: backend}
}

// Insert implements Repository.
func (r *InstrumentedRepository) Insert(ctx context.Context, p *domprofile.Profile, vec []float32) error {
	start := time.Now()
	err := r.inner.Insert(ctx, p, vec)
	r.observe("insert", start, err)
	return err //nolint:wrapcheck // transparent decorator
}

// Get implements Repository.
func (r *InstrumentedRepository) Get(ctx context.Context, id string) (domprofile.Profile, error) {
	start := time.Now()
	p, err := r.inner.Get(ctx, id)
	r.observe("get", start, err)
	return p, err //nolint:wrapcheck // transparent decorator
}

// Query implements Repository.
func (r *InstrumentedRepository) Query(
	ctx context.Context, vec []float32, k int, excludeID string,
) ([]domprofile.Neighbor, error) {
	start := time.Now()
	ns, err := r.inner.Query(ctx, vec, k, excludeID)
	r.observe("query", start, err)
	return ns, err //nolint:wrapcheck // transparent decorator
}

// List implements Repository.
func (r *InstrumentedRepository) List(ctx context.Context, limit int) ([]domprofile.Profile, error) {
	start := time.Now()
	ps, err := r.inner.List(ctx, limit)
	r.observe("list", start, err)
	return ps, err //nolint:wrapcheck // transparent decorator
}

// Delete implements Repository.
func (r *InstrumentedRepository) Delete(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	ok, err := r.inner.Delete(ctx, id)
	r.observe("delete", start, err)
	return ok, err //nolint:wrapcheck // transparent decorator
}

// Count implements Repository and publishes the result as the profiles gauge.
func (r *InstrumentedRepository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := r.inner.Count(ctx)
	r.observe("count", start, err)
	if err == nil {
		metrics.ProfilesStored.WithLabelValues(r.inner.Name()).Set(float64(n))
	}
	return n, err //nolint:wrapcheck // transparent decorator
}

// Name implements Repository.
func (r *InstrumentedRepository) Name() string { return r.inner.Name() }

// Location implements Repository.
func (r *InstrumentedRepository) Location() string { return r.inner.Location() }

func (r *InstrumentedRepository) observe(op string, start time.Time, err error) {
	metrics.StoreOperationDuration.WithLabelValues(r.backend, op).Observe(time.Since(start).Seconds())
	metrics.StoreOperationsTotal.WithLabelValues(r.backend, op, status(err)).Inc()
}

// status: not_found не считается ошибкой стора.
func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case domain.KindOf(err) == domain.KindNotFound:
		return "not_found"
	default:
		return "error"
	}
}
