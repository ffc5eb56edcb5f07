// internal/stats/ttest.go
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// TTestResult is one two-sample comparison from summary statistics.
type TTestResult struct {
	T     float64
	P     float64
	DF    int
	Valid bool
}

// TTestSummary runs a Welch-style two-sample t-test from means, SDs and
// counts, with the conservative df = min(n1, n2) - 1. Either group having
// fewer than two samples, or a zero pooled variance, invalidates the test.
func TTestSummary(mean1, sd1 float64, n1 int, mean2, sd2 float64, n2 int) TTestResult {
	r := TTestResult{T: math.NaN(), P: math.NaN()}
	if n1 < 2 || n2 < 2 {
		return r
	}
	pooled := sd1*sd1/float64(n1) + sd2*sd2/float64(n2)
	if pooled == 0 {
		return r
	}

	r.T = (mean1 - mean2) / math.Sqrt(pooled)
	r.DF = min(n1, n2) - 1
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(r.DF)}
	r.P = 2 * (1 - dist.CDF(math.Abs(r.T)))
	r.Valid = true
	return r
}

// Reject reports whether the test rejects the null at significance alpha.
func (r TTestResult) Reject(alpha float64) bool {
	return r.Valid && r.P < alpha
}
