package reembed

import "math"

// NormalizeVector scales a vector to unit length, returning a new slice.
// A zero vector has no direction and comes back as all zeros.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	out := make([]float32, len(v))
	if sumSquares == 0 {
		return out
	}

	scale := 1.0 / math.Sqrt(sumSquares)
	for i, val := range v {
		out[i] = float32(float64(val) * scale)
	}
	return out
}
