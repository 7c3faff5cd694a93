package profilematch

import (
	"context"

	healthuc "github.com/kailas-cloud/profilematch/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status   string            // "healthy" or "unhealthy"
	Database string            // "connected" or "disconnected"
	Error    string            // set when unhealthy
	Checks   map[string]string // component → "ok"/"error"
}

// Health checks the store and, if supported, the embedding provider.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:   string(report.Status),
		Database: report.Database,
		Error:    report.Error,
		Checks:   checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
