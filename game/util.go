package game

import "math"

// sqrt32 is a float32 sqrt without the caller-side conversions.
func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
