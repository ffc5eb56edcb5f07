// internal/stats/descriptive.go
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the four-number description written next to each movement
// metric. Fewer than two samples leaves every field NaN.
type Summary struct {
	Mean float64
	SD   float64
	Min  float64
	Max  float64
	N    int
}

// Describe computes mean, sample SD and the extremes of xs.
func Describe(xs []float64) Summary {
	s := Summary{Mean: math.NaN(), SD: math.NaN(), Min: math.NaN(), Max: math.NaN(), N: len(xs)}
	if len(xs) < 2 {
		return s
	}
	s.Mean = stat.Mean(xs, nil)
	s.SD = stat.StdDev(xs, nil)
	s.Min = floats.Min(xs)
	s.Max = floats.Max(xs)
	return s
}

// PupilSummary describes one pupil diameter window. The eye tracker logs -1
// when it loses the pupil, so those samples count toward Dropped and are
// excluded everywhere except Min, which additionally ignores any negative
// reading.
type PupilSummary struct {
	Mean    float64
	SD      float64
	Max     float64
	Min     float64
	Used    int
	Dropped int
}

// DescribePupil summarizes already-parsed pupil samples.
func DescribePupil(vals []float64) PupilSummary {
	s := PupilSummary{Mean: math.NaN(), SD: math.NaN(), Max: math.NaN(), Min: math.NaN()}
	kept := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v == -1 {
			s.Dropped++
			continue
		}
		kept = append(kept, v)
	}
	s.Used = len(kept)
	if s.Used == 0 {
		return s
	}

	s.Mean = stat.Mean(kept, nil)
	if s.Used > 1 {
		s.SD = stat.StdDev(kept, nil)
	}
	s.Max = floats.Max(kept)

	nonNeg := kept[:0:0]
	for _, v := range kept {
		if v >= 0 {
			nonNeg = append(nonNeg, v)
		}
	}
	if len(nonNeg) > 0 {
		s.Min = floats.Min(nonNeg)
	}
	return s
}
