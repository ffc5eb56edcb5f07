package metrics

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/yyspencer/Fire2Scripts/internal/models"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// testStudy mirrors the production schema shape with a compact column
// layout so fixtures stay readable.
func testStudy() *models.Study {
	return &models.Study{
		Sheets: models.SheetLayout{Overall: 0, Pre: 1, Post: 2},
		Folders: models.FolderSets{
			Standard: []string{"shook", "noshook"},
			Modified: []string{"shook", "noshookmodified"},
			Follow:   []string{"shook", "noshook"},
			Pupil:    []string{"shook", "noshookmodified"},
			Location: []string{"shook", "noshook"},
		},
		Markers: models.Markers{
			Shook:          "shook",
			Estimate:       "0.2 seconds",
			EstimateHint:   "0.2",
			EstimateOffset: 0.229,
			SurveyEnter:    "Entered Survey Room",
			SurveyExit:     "Exited Survey Room",
			RobotEnter:     "Robot entered Survey Room",
			RobotExit:      "Robot exited Survey Room",
			LookTarget:     "Robot",
			SignagePrefix:  "Signage",
		},
		Columns: models.ColumnLayout{
			ParticipantID: 1,
			Condition:     2,
			CrisisTime:    5,
			PreInterval:   6,
			PostInterval:  7,
			Looking:       models.Triple{Overall: 8, Pre: 2, Post: 2},
			Looks:         models.Triple{Overall: 9, Pre: 3, Post: 3},
			Signage:       models.Triple{Overall: 10, Pre: 4, Post: 4},
			Velocity: models.Quad{
				Overall: []int{11, 12, 13, 14},
				Pre:     []int{5, 6, 7, 8},
				Post:    []int{5, 6, 7, 8},
			},
			Gaze: models.Triple{Overall: 15, Pre: 9, Post: 9},
			Distance: models.Quad{
				Overall: []int{16, 17, 18, 19},
				Pre:     []int{10, 11, 12, 13},
				Post:    []int{10, 11, 12, 13},
			},
			CCAll:  []int{20, 21, 22},
			CCPre:  []int{23, 24, 25},
			CCPost: []int{26, 27, 28},
			Follow: models.FollowColumns{
				Distance: models.Triple{Overall: 29, Pre: 14, Post: 14},
				Duration: models.Triple{Overall: 30, Pre: 15, Post: 15},
			},
			Pupil: models.PupilBlocks{
				ShortLeft:  []int{31, 32, 33, 34},
				ShortRight: []int{35, 36, 37, 38},
				FullLeft:   []int{39, 40, 41, 42},
				FullRight:  []int{43, 44, 45, 46},
			},
		},
		Location: models.Location{
			Anchor:    []float64{1, 0, 0},
			AnchorVar: []float64{0.01, 0.01, 0.01},
		},
	}
}

func testSuite(root string) *Suite {
	return NewSuite(zap.NewNop(), testStudy(), root)
}

func writeTrialCSV(t *testing.T, root, folder, name, content string) {
	t.Helper()
	dir := filepath.Join(root, folder)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func writeStudyWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Overall"))
	for _, name := range []string{"Pre", "Post"} {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	require.NoError(t, f.SetCellStr("Overall", "A1", "Index"))
	require.NoError(t, f.SetCellStr("Overall", "B1", "Condition"))
	require.NoError(t, f.SetCellValue("Overall", "A2", 123))
	require.NoError(t, f.SetCellValue("Overall", "B2", 1))
	require.NoError(t, f.SetCellValue("Overall", "A3", 456))
	require.NoError(t, f.SetCellValue("Overall", "B3", 2))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func cellFloat(t *testing.T, wb *workbook.Workbook, sheet string, row, col int) float64 {
	t.Helper()
	v, err := wb.Cell(sheet, row, col)
	require.NoError(t, err)
	f, err := strconv.ParseFloat(v, 64)
	require.NoError(t, err)
	return f
}

const sessionCSV = `Time,robotEvent,roomEvent,LookingAt,PlayerVR.x,PlayerVR.y,PlayerVR.z,Robot.x,Robot.y,Robot.z
0.0,,,Robot,0,0,0,1,0,0
1.0,,,Wall,1,0,0,2,0,0
2.0,,,Robot,2,0,0,3,0,0
3.0,Robot shook violently,,Robot,3,0,0,4,0,0
4.0,,,Wall,4,0,0,5,0,0
5.0,,,Robot,5,0,0,6,0,0
`

// One participant with a clean shake session, one with no log at all. The
// analyses run against the same open workbook in sequence, the way the
// batch command drives them.
func TestSuiteAnalyses(t *testing.T) {
	dir, err := os.MkdirTemp("", "fire2_suite_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	writeTrialCSV(t, dir, "shook", "00123 session.csv", sessionCSV)
	wbPath := filepath.Join(dir, "study.xlsx")
	writeStudyWorkbook(t, wbPath)

	wb, err := workbook.Open(wbPath)
	require.NoError(t, err)
	defer wb.Close()

	s := testSuite(dir)

	t.Run("CrisisTimes", func(t *testing.T) {
		tally, err := s.CrisisTimes(wb)
		require.NoError(t, err)
		assert.Equal(t, 1, tally.Processed)
		assert.Equal(t, []string{"00456"}, tally.NoLog)
		assert.InDelta(t, 3.0, cellFloat(t, wb, "Overall", 2, 5), 1e-9)

		v, err := wb.Cell("Overall", 3, 5)
		require.NoError(t, err)
		assert.Equal(t, "", v)
	})

	t.Run("Intervals", func(t *testing.T) {
		tally, err := s.Intervals(wb)
		require.NoError(t, err)
		assert.Equal(t, 1, tally.Processed)
		assert.InDelta(t, 3.0, cellFloat(t, wb, "Overall", 2, 6), 1e-9)
		assert.InDelta(t, 2.0, cellFloat(t, wb, "Overall", 2, 7), 1e-9)
	})

	t.Run("Looking", func(t *testing.T) {
		tally, err := s.Looking(wb)
		require.NoError(t, err)
		assert.Equal(t, 1, tally.Processed)
		assert.Equal(t, []string{"00456"}, tally.NoLog)
		assert.InDelta(t, 66.666667, cellFloat(t, wb, "Overall", 2, 8), 1e-4)
		assert.InDelta(t, 66.666667, cellFloat(t, wb, "Pre", 2, 2), 1e-4)
		assert.InDelta(t, 50.0, cellFloat(t, wb, "Post", 2, 2), 1e-4)

		header, err := wb.Cell("Overall", 1, 8)
		require.NoError(t, err)
		assert.Equal(t, "% Looking At Robot (Overall)", header)
	})

	t.Run("Velocity", func(t *testing.T) {
		tally, err := s.Velocity(wb)
		require.NoError(t, err)
		assert.Equal(t, 1, tally.Processed)
		assert.InDelta(t, 1.0, cellFloat(t, wb, "Overall", 2, 11), 1e-9)
		assert.InDelta(t, 0.0, cellFloat(t, wb, "Overall", 2, 12), 1e-9)
		assert.InDelta(t, 1.0, cellFloat(t, wb, "Overall", 2, 13), 1e-9)
		assert.InDelta(t, 1.0, cellFloat(t, wb, "Overall", 2, 14), 1e-9)
		assert.InDelta(t, 1.0, cellFloat(t, wb, "Pre", 2, 5), 1e-9)
		assert.InDelta(t, 1.0, cellFloat(t, wb, "Post", 2, 5), 1e-9)
	})

	t.Run("SpeedsAndCorrelation", func(t *testing.T) {
		speedDir := filepath.Join(dir, "speed")
		tally, err := s.ExportSpeeds(wb, speedDir)
		require.NoError(t, err)
		assert.Equal(t, 1, tally.Processed)

		player, robot, err := trial.ReadSpeedPairs(filepath.Join(speedDir, "00123.txt"), trial.SegmentAll)
		require.NoError(t, err)
		assert.Len(t, player, 5)
		assert.Len(t, robot, 5)
		pre, _, err := trial.ReadSpeedPairs(filepath.Join(speedDir, "00123.txt"), trial.SegmentPre)
		require.NoError(t, err)
		assert.Len(t, pre, 3)

		ccTally, result, err := s.CrossCorrelate(wb, speedDir, trial.SegmentAll)
		require.NoError(t, err)
		assert.Equal(t, 1, ccTally.Processed)
		assert.Equal(t, []string{"00456"}, ccTally.NoLog)
		assert.Equal(t, 1, result.Cohort)
		assert.Equal(t, []int{-1, 0, 1}, result.Lags)

		// Constant speed series correlate to 0 at every lag, so the
		// earliest lag wins both per participant and globally.
		assert.Equal(t, -1, result.GlobalLag)
		assert.InDelta(t, -1.0, cellFloat(t, wb, "Overall", 2, 20), 1e-9)
		assert.InDelta(t, 0.0, cellFloat(t, wb, "Overall", 2, 21), 1e-9)
		assert.InDelta(t, 0.0, cellFloat(t, wb, "Overall", 2, 22), 1e-9)
	})
}
