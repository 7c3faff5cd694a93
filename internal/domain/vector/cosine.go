// Package vector holds pure vector math shared by the embedding and
// matching layers.
package vector

import "math"

// CosineSimilarity returns dot(a,b)/(|a||b|) clamped to [0,1].
// Mismatched lengths and zero-norm inputs yield 0. Never NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}

	return Clamp01(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// Clamp01 bounds v to [0,1]; NaN maps to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
