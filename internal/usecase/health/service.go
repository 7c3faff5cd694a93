package health

import (
	"context"

	"github.com/kailas-cloud/profilematch/internal/usecase/profile"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates the store is reachable and readable.
	Healthy Status = "healthy"
	// Unhealthy indicates the store could not be reached or read.
	Unhealthy Status = "unhealthy"
)

// Database connection states.
const (
	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
// Stats is set when healthy, Error when not.
type Report struct {
	Status   Status
	Database string
	Stats    *profile.Stats
	Error    string
	Checks   map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	stats     StatsReader
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil.
func New(db DBPinger, stats StatsReader, embedding EmbeddingChecker) *Service {
	return &Service{db: db, stats: stats, embedding: embedding}
}

// Check runs health checks against all components. It never fails:
// problems are reported in the Report.
// The embedding check is informational and does not change Status.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{
		Status:   Healthy,
		Database: DatabaseConnected,
		Checks:   make(map[string]CheckResult),
	}

	if err := s.db.Ping(ctx); err != nil {
		r.unhealthy(err)
	} else if st, err := s.stats.Stats(ctx); err != nil {
		r.unhealthy(err)
	} else {
		r.Stats = &st
		r.Checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			r.Checks["embedding"] = CheckError
		} else {
			r.Checks["embedding"] = CheckOK
		}
	}

	return r
}

func (r *Report) unhealthy(err error) {
	r.Status = Unhealthy
	r.Database = DatabaseDisconnected
	r.Error = err.Error()
	r.Checks["database"] = CheckError
}
