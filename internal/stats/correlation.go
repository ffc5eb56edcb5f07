// internal/stats/correlation.go
package stats

import (
	"gonum.org/v1/gonum/stat"
)

// Pearson is the correlation of two equal-length series. Degenerate input
// (empty, mismatched, or zero variance on either side) yields 0 rather than
// NaN so lag scans stay comparable.
func Pearson(x, y []float64) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}
	if stat.PopStdDev(x, nil) == 0 || stat.PopStdDev(y, nil) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// CCAtLag shifts y forward by lag samples (backward when negative) and
// correlates the overlap. A lag that leaves no overlap yields 0.
func CCAtLag(x, y []float64, lag int) float64 {
	n := len(x)
	switch {
	case lag > 0:
		if lag >= n {
			return 0
		}
		return Pearson(x[:n-lag], y[lag:])
	case lag < 0:
		if -lag >= n {
			return 0
		}
		return Pearson(x[-lag:], y[:n+lag])
	default:
		return Pearson(x, y)
	}
}

// LagRange builds the symmetric lag window scanned for a cohort: a quarter
// of the shortest series, in samples. Returns [0] when every series is
// shorter than four samples and nil when lengths is empty.
func LagRange(lengths []int) []int {
	if len(lengths) == 0 {
		return nil
	}
	min := lengths[0]
	for _, n := range lengths[1:] {
		if n < min {
			min = n
		}
	}
	l := min / 4
	lags := make([]int, 0, 2*l+1)
	for lag := -l; lag <= l; lag++ {
		lags = append(lags, lag)
	}
	return lags
}

// BestLag scans lags in order and keeps the first strictly best
// correlation. The initial best of -2 sits below any real coefficient, so
// even an all-zero scan settles on the earliest lag.
func BestLag(x, y []float64, lags []int) (int, float64) {
	bestLag, bestCC := 0, -2.0
	for _, lag := range lags {
		if cc := CCAtLag(x, y, lag); cc > bestCC {
			bestLag, bestCC = lag, cc
		}
	}
	return bestLag, bestCC
}

// GlobalBestLag picks the lag maximizing the summed absolute correlation
// across the cohort. sums is indexed like lags; ties keep the earliest lag.
func GlobalBestLag(lags []int, sums []float64) int {
	if len(lags) == 0 || len(lags) != len(sums) {
		return 0
	}
	best := 0
	for i := 1; i < len(lags); i++ {
		if sums[i] > sums[best] {
			best = i
		}
	}
	return lags[best]
}
