// internal/metrics/pupilfiles.go
package metrics

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/yyspencer/Fire2Scripts/internal/stats"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PupilPoint is one luminance-bucketed pupil size summary.
type PupilPoint struct {
	Luminance float64
	AvgSize   float64
	Count     int
	StdDev    float64
}

// PupilObservation is one participant's measured pupil response around the
// crisis, as written by the capture pipeline's pupil extractor.
type PupilObservation struct {
	Index  string
	Before PupilPoint
	After  PupilPoint
}

// ReadLuminanceMapping parses one participant's luminance-to-pupil
// calibration. Each line after the header maps a luminance level to the
// left and right eye response seen at that level.
func ReadLuminanceMapping(path string) (left, right []PupilPoint, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if first {
			first = false
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 7 {
			continue
		}
		vals := make([]float64, 7)
		ok := true
		for i, fv := range fields[:7] {
			if vals[i], err = strconv.ParseFloat(fv, 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		left = append(left, PupilPoint{Luminance: vals[0], AvgSize: vals[1], Count: int(vals[2]), StdDev: vals[3]})
		right = append(right, PupilPoint{Luminance: vals[0], AvgSize: vals[4], Count: int(vals[5]), StdDev: vals[6]})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read mapping %s: %w", path, err)
	}
	sort.Slice(left, func(i, j int) bool { return left[i].Luminance < left[j].Luminance })
	sort.Slice(right, func(i, j int) bool { return right[i].Luminance < right[j].Luminance })
	return left, right, nil
}

// ReadPupilObservations parses one eye's observation file: per participant,
// the luminance and pupil summary before and after the crisis.
func ReadPupilObservations(path string) (map[string]PupilObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open observations %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string]PupilObservation)
	sc := bufio.NewScanner(f)
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if first {
			first = false
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}
		vals := make([]float64, 8)
		ok := true
		for i, fv := range fields[1:9] {
			if vals[i], err = strconv.ParseFloat(fv, 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out[fields[0]] = PupilObservation{
			Index:  fields[0],
			Before: PupilPoint{Luminance: vals[0], AvgSize: vals[1], Count: int(vals[2]), StdDev: vals[3]},
			After:  PupilPoint{Luminance: vals[4], AvgSize: vals[5], Count: int(vals[6]), StdDev: vals[7]},
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read observations %s: %w", path, err)
	}
	return out, nil
}

// ClosestLuminance picks the calibration point nearest the luminance, with
// the darker point winning exact ties. points must be sorted.
func ClosestLuminance(points []PupilPoint, lum float64) (PupilPoint, bool) {
	if len(points) == 0 {
		return PupilPoint{}, false
	}
	i := sort.Search(len(points), func(k int) bool { return points[k].Luminance >= lum })
	switch i {
	case len(points):
		return points[len(points)-1], true
	case 0:
		return points[0], true
	}
	if points[i].Luminance-lum < lum-points[i-1].Luminance {
		return points[i], true
	}
	return points[i-1], true
}

// TTestRow is one eye's comparison of observed post-crisis pupil size
// against the calibration prediction for the same luminance.
type TTestRow struct {
	Index    string
	Eye      string
	Observed PupilPoint
	Expected PupilPoint
	Result   stats.TTestResult
	Reject   bool
	Missing  bool
}

// TTestReport is the whole batch plus its tallies. A rejection is the
// interesting outcome here, the calibration failing to explain the
// observed size.
type TTestReport struct {
	Alpha           float64
	Rows            []TTestRow
	MissingMappings int
	MissingData     int
	RejectByEye     map[string]int
	TestedByEye     map[string]int
}

// PupilTTest checks, participant by participant, whether the post-crisis
// pupil size is explainable by scene luminance alone. A rejection means
// the pupil deviated from its own calibration, the arousal signal the
// study is after.
func (s *Suite) PupilTTest(mappingDir, leftPath, rightPath string, alpha float64) (*TTestReport, error) {
	left, err := ReadPupilObservations(leftPath)
	if err != nil {
		return nil, err
	}
	right, err := ReadPupilObservations(rightPath)
	if err != nil {
		return nil, err
	}

	indices := make(map[string]struct{}, len(left)+len(right))
	for idx := range left {
		indices[idx] = struct{}{}
	}
	for idx := range right {
		indices[idx] = struct{}{}
	}
	sorted := make([]string, 0, len(indices))
	for idx := range indices {
		sorted = append(sorted, idx)
	}
	sort.Strings(sorted)

	report := &TTestReport{
		Alpha:       alpha,
		RejectByEye: map[string]int{"left": 0, "right": 0},
		TestedByEye: map[string]int{"left": 0, "right": 0},
	}
	for _, idx := range sorted {
		mapLeft, mapRight, err := ReadLuminanceMapping(filepath.Join(mappingDir, idx+"_luminance_mapping.txt"))
		if err != nil || len(mapLeft) == 0 || len(mapRight) == 0 {
			report.MissingMappings++
			report.Rows = append(report.Rows, TTestRow{Index: idx, Missing: true})
			continue
		}
		obsLeft, okLeft := left[idx]
		obsRight, okRight := right[idx]
		if !okLeft || !okRight {
			report.MissingData++
			report.Rows = append(report.Rows, TTestRow{Index: idx, Missing: true})
			continue
		}
		for _, side := range []struct {
			eye    string
			obs    PupilObservation
			points []PupilPoint
		}{
			{"left", obsLeft, mapLeft},
			{"right", obsRight, mapRight},
		} {
			expected, _ := ClosestLuminance(side.points, side.obs.After.Luminance)
			result := stats.TTestSummary(
				side.obs.After.AvgSize, side.obs.After.StdDev, side.obs.After.Count,
				expected.AvgSize, expected.StdDev, expected.Count)
			row := TTestRow{
				Index:    idx,
				Eye:      side.eye,
				Observed: side.obs.After,
				Expected: expected,
				Result:   result,
				Reject:   result.Reject(alpha),
			}
			report.Rows = append(report.Rows, row)
			if result.Valid {
				report.TestedByEye[side.eye]++
				if row.Reject {
					report.RejectByEye[side.eye]++
				}
			}
		}
	}

	for _, eye := range []string{"left", "right"} {
		tested := report.TestedByEye[eye]
		rate := math.NaN()
		if tested > 0 {
			rate = float64(report.RejectByEye[eye]) / float64(tested) * 100
		}
		s.log.Info("Pupil luminance t-test summary",
			zap.String("eye", eye),
			zap.Int("tested", tested),
			zap.Int("rejected", report.RejectByEye[eye]),
			zap.Float64("rejectRate", rate),
			zap.Float64("alpha", alpha))
	}
	if report.MissingMappings > 0 {
		s.log.Warn("Participants without luminance mappings", zap.Int("count", report.MissingMappings))
	}
	if report.MissingData > 0 {
		s.log.Warn("Participants missing an eye's pupil data", zap.Int("count", report.MissingData))
	}
	return report, nil
}

// AggregateRange is min/mean/max over one side of the crisis.
type AggregateRange struct {
	Mean float64
	Min  float64
	Max  float64
	N    int
}

// PupilAggregate summarizes the usable observations in one eye's file.
// Non-positive sizes are tracker dropouts and are ignored.
func (s *Suite) PupilAggregate(path, eye string) (before, after AggregateRange, err error) {
	obs, err := ReadPupilObservations(path)
	if err != nil {
		return before, after, err
	}

	var beforeVals, afterVals []float64
	for _, o := range obs {
		if o.Before.AvgSize > 0 {
			beforeVals = append(beforeVals, o.Before.AvgSize)
		}
		if o.After.AvgSize > 0 {
			afterVals = append(afterVals, o.After.AvgSize)
		}
	}
	before = summarizeRange(beforeVals)
	after = summarizeRange(afterVals)

	s.log.Info("Pupil aggregate",
		zap.String("eye", eye),
		zap.Int("beforeSamples", before.N),
		zap.Float64("beforeMean", before.Mean),
		zap.Int("afterSamples", after.N),
		zap.Float64("afterMean", after.Mean))
	return before, after, nil
}

func summarizeRange(vals []float64) AggregateRange {
	r := AggregateRange{Mean: math.NaN(), Min: math.NaN(), Max: math.NaN(), N: len(vals)}
	if len(vals) == 0 {
		return r
	}
	r.Mean = stat.Mean(vals, nil)
	r.Min = floats.Min(vals)
	r.Max = floats.Max(vals)
	return r
}
