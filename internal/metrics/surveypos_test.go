package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyLogA = `Time,roomEvent,Robot.x,Robot.y,Robot.z
0.0,,0,0,0
1.0,Robot entered Survey Room,1,0,3
2.0,Robot exited Survey Room,9,9,9
`

const surveyLogB = `Time,roomEvent,Robot.x,Robot.y,Robot.z
0.5,robot entered survey room,3,0,5
`

func TestSurveyPositions(t *testing.T) {
	dir, err := os.MkdirTemp("", "fire2-survey-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write("12345 session.csv", surveyLogA)
	write("67890 run.csv", surveyLogB)
	write("README.txt", "not a log\n")
	write("broken.csv", "Time,Robot.x\n1.0,2\n")

	s := testSuite("")
	res, err := s.SurveyPositions(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, [3]float64{1, 0, 3}, res.ByParticipant["12345"])
	assert.Equal(t, [3]float64{3, 0, 5}, res.ByParticipant["67890"])

	assert.InDelta(t, 2.0, res.Mean[0], 1e-9)
	assert.InDelta(t, 0.0, res.Mean[1], 1e-9)
	assert.InDelta(t, 4.0, res.Mean[2], 1e-9)
	// Two sessions two apart on x and z: population variance 1, not the
	// sample variance 2.
	assert.InDelta(t, 1.0, res.Variance[0], 1e-9)
	assert.InDelta(t, 0.0, res.Variance[1], 1e-9)
	assert.InDelta(t, 1.0, res.Variance[2], 1e-9)

	t.Run("Empty Directory", func(t *testing.T) {
		empty, err := os.MkdirTemp("", "fire2-survey-empty-*")
		require.NoError(t, err)
		defer os.RemoveAll(empty)

		res, err := s.SurveyPositions(empty)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Count)
	})

	t.Run("Missing Directory", func(t *testing.T) {
		_, err := s.SurveyPositions(filepath.Join(dir, "absent"))
		assert.Error(t, err)
	})
}
