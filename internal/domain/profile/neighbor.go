package profile

// Neighbor is a stored profile returned by a similarity query.
// Distance is cosine distance: 0 is identical, larger is less similar.
type Neighbor struct {
	Profile  Profile
	Distance float64
}

// FetchSize is how many candidates to request from a store for k results.
// With an exclusion one extra candidate covers the excluded entry.
func FetchSize(k int, excludeID string) int {
	if excludeID != "" {
		return k + 1
	}
	return k
}

// TrimNeighbors drops excludeID and caps the result at k, keeping order.
func TrimNeighbors(in []Neighbor, k int, excludeID string) []Neighbor {
	out := make([]Neighbor, 0, min(len(in), k))
	for _, n := range in {
		if len(out) == k {
			break
		}
		if excludeID != "" && n.Profile.ID() == excludeID {
			continue
		}
		out = append(out, n)
	}
	return out
}
