package metrics

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mappingFile = `luminance leftAvg leftCount leftSD rightAvg rightCount rightSD
0.5 3.0 10 0.2 3.1 11 0.3
0.2 2.5 8 0.1 2.6 9 0.15
not a data line
0.8 3.5 12 0.25 3.6 13 0.35 trailing
x 1 2 3 4 5 6
`

const observationsFile = `index bLum bAvg bCount bSD aLum aAvg aCount aSD
00123 0.4 3.2 100 0.2 0.6 3.8 120 0.3
00456 0.5 2.9 90 0.1 0.55 3.0 95 0.2
short line 1 2
`

func TestReadLuminanceMapping(t *testing.T) {
	dir, err := os.MkdirTemp("", "fire2_mapping_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "00123_luminance_mapping.txt")
	require.NoError(t, os.WriteFile(path, []byte(mappingFile), 0644))

	left, right, err := ReadLuminanceMapping(path)
	require.NoError(t, err)
	require.Len(t, left, 3)
	require.Len(t, right, 3)

	// Sorted by luminance, malformed lines dropped.
	assert.InDelta(t, 0.2, left[0].Luminance, 1e-9)
	assert.InDelta(t, 2.5, left[0].AvgSize, 1e-9)
	assert.Equal(t, 8, left[0].Count)
	assert.InDelta(t, 0.8, left[2].Luminance, 1e-9)

	assert.InDelta(t, 2.6, right[0].AvgSize, 1e-9)
	assert.Equal(t, 9, right[0].Count)
	assert.InDelta(t, 0.15, right[0].StdDev, 1e-9)

	_, _, err = ReadLuminanceMapping(filepath.Join(dir, "absent.txt"))
	assert.Error(t, err)
}

func TestReadPupilObservations(t *testing.T) {
	dir, err := os.MkdirTemp("", "fire2_obs_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "leftpupil.txt")
	require.NoError(t, os.WriteFile(path, []byte(observationsFile), 0644))

	obs, err := ReadPupilObservations(path)
	require.NoError(t, err)
	require.Len(t, obs, 2)

	o := obs["00123"]
	assert.Equal(t, "00123", o.Index)
	assert.InDelta(t, 0.4, o.Before.Luminance, 1e-9)
	assert.InDelta(t, 3.8, o.After.AvgSize, 1e-9)
	assert.Equal(t, 120, o.After.Count)
	assert.InDelta(t, 0.3, o.After.StdDev, 1e-9)
}

func TestClosestLuminance(t *testing.T) {
	points := []PupilPoint{
		{Luminance: 0.2, AvgSize: 2.5},
		{Luminance: 0.5, AvgSize: 3.0},
		{Luminance: 0.8, AvgSize: 3.5},
	}

	t.Run("Nearest Wins", func(t *testing.T) {
		p, ok := ClosestLuminance(points, 0.55)
		require.True(t, ok)
		assert.InDelta(t, 0.5, p.Luminance, 1e-9)
	})

	t.Run("Darker Point Wins Ties", func(t *testing.T) {
		p, ok := ClosestLuminance(points, 0.35)
		require.True(t, ok)
		assert.InDelta(t, 0.2, p.Luminance, 1e-9)
	})

	t.Run("Exact Hit", func(t *testing.T) {
		p, ok := ClosestLuminance(points, 0.5)
		require.True(t, ok)
		assert.InDelta(t, 0.5, p.Luminance, 1e-9)
	})

	t.Run("Clamped To The Ends", func(t *testing.T) {
		p, ok := ClosestLuminance(points, 0.01)
		require.True(t, ok)
		assert.InDelta(t, 0.2, p.Luminance, 1e-9)

		p, ok = ClosestLuminance(points, 2.0)
		require.True(t, ok)
		assert.InDelta(t, 0.8, p.Luminance, 1e-9)
	})

	t.Run("Empty", func(t *testing.T) {
		_, ok := ClosestLuminance(nil, 0.5)
		assert.False(t, ok)
	})
}

func TestSummarizeRange(t *testing.T) {
	r := summarizeRange([]float64{2, 4, 6})
	assert.Equal(t, 3, r.N)
	assert.InDelta(t, 4.0, r.Mean, 1e-9)
	assert.InDelta(t, 2.0, r.Min, 1e-9)
	assert.InDelta(t, 6.0, r.Max, 1e-9)

	empty := summarizeRange(nil)
	assert.Equal(t, 0, empty.N)
	assert.True(t, math.IsNaN(empty.Mean))
}

func TestPupilTTest(t *testing.T) {
	dir, err := os.MkdirTemp("", "fire2_ttest_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	mappingDir := filepath.Join(dir, "output_mappings")
	require.NoError(t, os.MkdirAll(mappingDir, 0o755))

	calibration := `luminance leftAvg leftCount leftSD rightAvg rightCount rightSD
0.2 2.5 8 0.1 2.6 9 0.15
0.6 3.0 10 0.2 3.1 11 0.3
`
	require.NoError(t, os.WriteFile(filepath.Join(mappingDir, "00123_luminance_mapping.txt"), []byte(calibration), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(mappingDir, "00777_luminance_mapping.txt"), []byte(calibration), 0644))

	// 00123 has both eyes, 00777 only the left file, 00999 only the right
	// file and no mapping.
	leftObs := `index bLum bAvg bCount bSD aLum aAvg aCount aSD
00123 0.4 3.2 100 0.2 0.6 3.8 120 0.3
00777 0.4 3.2 100 0.2 0.6 3.8 120 0.3
`
	rightObs := `index bLum bAvg bCount bSD aLum aAvg aCount aSD
00123 0.4 3.0 100 0.2 0.6 3.15 110 0.3
00999 0.4 3.0 100 0.2 0.6 3.15 110 0.3
`
	leftPath := filepath.Join(dir, "leftpupil.txt")
	rightPath := filepath.Join(dir, "rightpupil.txt")
	require.NoError(t, os.WriteFile(leftPath, []byte(leftObs), 0644))
	require.NoError(t, os.WriteFile(rightPath, []byte(rightObs), 0644))

	s := testSuite("")
	rep, err := s.PupilTTest(mappingDir, leftPath, rightPath, 0.05)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.MissingMappings)
	assert.Equal(t, 1, rep.MissingData)
	assert.Equal(t, 1, rep.TestedByEye["left"])
	assert.Equal(t, 1, rep.TestedByEye["right"])

	// Left eye sits 0.8 above its calibration point, far outside the pooled
	// spread; the right eye is within it.
	assert.Equal(t, 1, rep.RejectByEye["left"])
	assert.Equal(t, 0, rep.RejectByEye["right"])

	require.Len(t, rep.Rows, 4)
	left123, right123 := rep.Rows[0], rep.Rows[1]
	assert.Equal(t, "left", left123.Eye)
	require.True(t, left123.Result.Valid)
	assert.True(t, left123.Reject)
	assert.InDelta(t, 3.0, left123.Expected.AvgSize, 1e-9)

	assert.Equal(t, "right", right123.Eye)
	require.True(t, right123.Result.Valid)
	assert.False(t, right123.Reject)
	assert.Greater(t, right123.Result.P, 0.05)

	assert.True(t, rep.Rows[2].Missing)
	assert.True(t, rep.Rows[3].Missing)

	t.Run("Missing Observations File", func(t *testing.T) {
		_, err := s.PupilTTest(mappingDir, filepath.Join(dir, "absent.txt"), rightPath, 0.05)
		assert.Error(t, err)
	})
}

func TestPupilAggregate(t *testing.T) {
	dir, err := os.MkdirTemp("", "fire2_aggregate_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	obs := `index bLum bAvg bCount bSD aLum aAvg aCount aSD
00123 0.4 3.2 100 0.2 0.6 3.8 120 0.3
00456 0.5 -1 90 0.1 0.55 3.0 95 0.2
00789 0.5 2.0 90 0.1 0.55 -1 95 0.2
`
	path := filepath.Join(dir, "leftpupil.txt")
	require.NoError(t, os.WriteFile(path, []byte(obs), 0644))

	s := testSuite("")
	before, after, err := s.PupilAggregate(path, "left")
	require.NoError(t, err)

	// Dropout sentinels stay out of the ranges.
	assert.Equal(t, 2, before.N)
	assert.InDelta(t, 2.6, before.Mean, 1e-9)
	assert.InDelta(t, 2.0, before.Min, 1e-9)
	assert.InDelta(t, 3.2, before.Max, 1e-9)

	assert.Equal(t, 2, after.N)
	assert.InDelta(t, 3.4, after.Mean, 1e-9)
	assert.InDelta(t, 3.0, after.Min, 1e-9)
	assert.InDelta(t, 3.8, after.Max, 1e-9)

	_, _, err = s.PupilAggregate(filepath.Join(dir, "absent.txt"), "left")
	assert.Error(t, err)
}
