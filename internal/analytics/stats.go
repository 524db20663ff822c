package analytics

import "math"

// linearFit computes the ordinary least-squares line y = slope*x + intercept.
// ok is false when the fit is singular (fewer than two points, or all x
// identical); callers treat that as an explicit branch, never a division by
// zero.
func linearFit(xs, ys []float64) (slope, intercept float64, ok bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, 0, false
	}
	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return 0, 0, false
	}
	slope = sxy / sxx
	intercept = meanY - slope*meanX
	return slope, intercept, true
}

// rSquared is the coefficient of determination of the fitted line. A constant
// series fitted exactly (zero total variance) counts as a perfect fit.
func rSquared(xs, ys []float64, slope, intercept float64) float64 {
	n := len(ys)
	var sumY float64
	for _, y := range ys {
		sumY += y
	}
	meanY := sumY / float64(n)

	var ssTot, ssRes float64
	for i := 0; i < n; i++ {
		dy := ys[i] - meanY
		ssTot += dy * dy
		res := ys[i] - (slope*xs[i] + intercept)
		ssRes += res * res
	}
	if ssTot == 0 {
		return 1
	}
	r2 := 1 - ssRes/ssTot
	if r2 < 0 {
		return 0
	}
	return r2
}

// meanStddev returns the mean and population standard deviation.
func meanStddev(values []float64) (mean, stddev float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(n))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
