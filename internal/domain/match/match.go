// Package match holds ranked similarity results.
package match

import (
	"github.com/kailas-cloud/profilematch/internal/domain/profile"
	"github.com/kailas-cloud/profilematch/internal/domain/vector"
)

// Result is a profile paired with its similarity to a query.
type Result struct {
	profile profile.Profile
	score   float64
}

// New creates a result with score clamped to [0,1].
func New(p profile.Profile, score float64) Result {
	return Result{profile: p, score: vector.Clamp01(score)}
}

// FromNeighbor converts a cosine-distance neighbour into a result.
func FromNeighbor(n profile.Neighbor) Result {
	return New(n.Profile, 1-n.Distance)
}

// FromNeighbors converts in order.
func FromNeighbors(ns []profile.Neighbor) []Result {
	out := make([]Result, len(ns))
	for i, n := range ns {
		out[i] = FromNeighbor(n)
	}
	return out
}

// Profile returns the matched profile.
func (r *Result) Profile() profile.Profile { return r.profile }

// Score returns similarity in [0,1], higher is closer.
func (r *Result) Score() float64 { return r.score }
