package services

import "math"

// meanStd returns the mean and population standard deviation of values.
func meanStd(values []float64) (mean, std float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / n

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= n
	return mean, math.Sqrt(variance)
}

// linearFit performs a least-squares fit over equally spaced samples,
// with x = 0, 1, ..., n-1. Returns the slope and intercept.
func linearFit(ys []float64) (slope, intercept float64) {
	n := float64(len(ys))
	if n < 2 {
		if n == 1 {
			return 0, ys[0]
		}
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// residualStd returns the population standard deviation of the fit
// residuals for the given slope/intercept over x = 0..n-1.
func residualStd(ys []float64, slope, intercept float64) float64 {
	n := float64(len(ys))
	if n == 0 {
		return 0
	}
	var sum float64
	for i, y := range ys {
		r := y - (intercept + slope*float64(i))
		sum += r * r
	}
	return math.Sqrt(sum / n)
}

// zScore returns the standard score of value against a distribution.
func zScore(value, mean, std float64) float64 {
	if std == 0 {
		return 0
	}
	return (value - mean) / std
}

// clamp01 clips v into [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
