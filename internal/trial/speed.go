// internal/trial/speed.go
package trial

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Segment selects which part of a speed file to read. Speed files hold one
// player/robot speed pair per line, with a blank line separating the
// pre-crisis block from the post-crisis block. -1 marks an uncomputable
// sample and is never included in a series.
type Segment int

const (
	SegmentAll Segment = iota
	SegmentPre
	SegmentPost
)

// ReadSpeedPairs reads the player and robot speed series for one segment.
// The first line is a header and is always skipped.
func ReadSpeedPairs(path string, segment Segment) (player, robot []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open speed file %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	first := true
	block := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if first {
			first = false
			continue
		}
		if line == "" {
			block++
			continue
		}
		if line == "-1" {
			continue
		}
		switch segment {
		case SegmentPre:
			if block != 0 {
				continue
			}
		case SegmentPost:
			if block == 0 {
				continue
			}
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		p, errP := strconv.ParseFloat(fields[0], 64)
		r, errR := strconv.ParseFloat(fields[1], 64)
		if errP != nil || errR != nil {
			continue
		}
		if p == -1 || r == -1 {
			continue
		}
		player = append(player, p)
		robot = append(robot, r)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read speed file %s: %w", path, err)
	}
	return player, robot, nil
}

// WriteSpeedFile writes a speed file in the layout ReadSpeedPairs expects.
// post may be empty when no crisis split exists, in which case no separator
// line is written.
func WriteSpeedFile(path string, pre, post [][2]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create speed file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "playerSpeed robotSpeed")
	writePairs := func(pairs [][2]float64) {
		for _, p := range pairs {
			fmt.Fprintf(w, "%.6f %.6f\n", p[0], p[1])
		}
	}
	writePairs(pre)
	if len(post) > 0 {
		fmt.Fprintln(w)
		writePairs(post)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write speed file %s: %w", path, err)
	}
	return nil
}
