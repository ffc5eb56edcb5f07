// internal/models/metric.go
package models

import "math"

// MetricResult carries one computed value together with whether it could be
// calculated at all and from how many samples.
type MetricResult struct {
	Value      float64 `json:"value"`
	Calculated bool    `json:"calculated"`
	SampleSize int     `json:"sampleSize,omitempty"`
}

// Metric builds a calculated result.
func Metric(value float64, sampleSize int) MetricResult {
	return MetricResult{Value: value, Calculated: true, SampleSize: sampleSize}
}

// NoMetric marks a value that could not be computed for this participant.
func NoMetric() MetricResult {
	return MetricResult{Value: math.NaN(), Calculated: false, SampleSize: 0}
}

// Float returns the value for spreadsheet output, NaN when uncalculated.
func (m MetricResult) Float() float64 {
	if !m.Calculated {
		return math.NaN()
	}
	return m.Value
}
