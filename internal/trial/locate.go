// internal/trial/locate.go
package trial

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoTrialLog means no session folder held a tracker log for the index.
var ErrNoTrialLog = errors.New("no matching trial log")

// PaddedID normalizes a raw participant cell into the five character index
// used in log file names. Numeric values are zero-padded integers, anything
// else is left-padded as text.
func PaddedID(raw string) string {
	s := strings.TrimSpace(raw)
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == float64(int64(v)) {
		s = strconv.FormatInt(int64(v), 10)
	}
	for len(s) < 5 {
		s = "0" + s
	}
	return s
}

// PrefixID keeps the first five characters of the raw cell. Some capture
// sessions named their logs with a short alphanumeric prefix instead of a
// padded number.
func PrefixID(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

// Locate finds the tracker log whose file name starts with exactly the five
// character index, searching the folders under root in order. The first
// match wins. Returns the file path and the folder it was found in.
func Locate(root string, folders []string, id string) (string, string, error) {
	return locate(root, folders, func(name string) bool {
		return len(name) >= 5 && name[:5] == id
	})
}

// LocatePrefix matches logs by plain name prefix, used by analyses whose
// indices may be shorter than five characters.
func LocatePrefix(root string, folders []string, id string) (string, string, error) {
	return locate(root, folders, func(name string) bool {
		return strings.HasPrefix(name, id)
	})
}

func locate(root string, folders []string, match func(string) bool) (string, string, error) {
	for _, folder := range folders {
		dir := filepath.Join(root, folder)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if !strings.HasSuffix(strings.ToLower(name), ".csv") {
				continue
			}
			if match(name) {
				return filepath.Join(dir, name), folder, nil
			}
		}
	}
	return "", "", ErrNoTrialLog
}
