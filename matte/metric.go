package matte

import (
	"fmt"
	"image/color"
)

// Metric measures how far apart two colors are. Larger means less similar.
type Metric func(a, b color.NRGBA) int

// SumDistance is the sum of the absolute differences of all four channels.
func SumDistance(a, b color.NRGBA) int {
	return absDiff(a.R, b.R) + absDiff(a.G, b.G) + absDiff(a.B, b.B) + absDiff(a.A, b.A)
}

// MaxDistance is the largest absolute difference of any single channel.
func MaxDistance(a, b color.NRGBA) int {
	return max(absDiff(a.R, b.R), absDiff(a.G, b.G), absDiff(a.B, b.B), absDiff(a.A, b.A))
}

// Within reports whether a and b are at most threshold apart under m.
func Within(m Metric, a, b color.NRGBA, threshold int) bool {
	return m(a, b) <= threshold
}

// MetricByName returns the metric registered under name ("sum" or "max").
func MetricByName(name string) (Metric, error) {
	switch name {
	case "", "sum":
		return SumDistance, nil
	case "max":
		return MaxDistance, nil
	default:
		return nil, fmt.Errorf("unknown color metric %q", name)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
