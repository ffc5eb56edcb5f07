package trial

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddedID(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"Plain Number", "123", "00123"},
		{"Integral Float", "123.0", "00123"},
		{"Short Number", "7", "00007"},
		{"Whitespace", " 42 ", "00042"},
		{"Non-Integral Float", "12.5", "012.5"},
		{"Text", "abc", "00abc"},
		{"Already Long", "123456", "123456"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, PaddedID(c.raw))
		})
	}
}

func TestPrefixID(t *testing.T) {
	assert.Equal(t, "abcde", PrefixID("abcdef"))
	assert.Equal(t, "ab", PrefixID("ab"))
	assert.Equal(t, "xy123", PrefixID(" xy1234 "))
}

func TestLocate(t *testing.T) {
	root, err := os.MkdirTemp("", "fire2_locate_test")
	require.NoError(t, err)
	defer os.RemoveAll(root)

	mk := func(parts ...string) {
		path := filepath.Join(append([]string{root}, parts...)...)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("Time\n0.0\n"), 0644))
	}
	mk("shook", "00123 session.csv")
	mk("noshook", "00123 duplicate.csv")
	mk("noshook", "00456.csv")
	mk("noshook", "00789.txt")

	folders := []string{"shook", "shook/baseline", "noshook"}

	t.Run("First Folder Wins", func(t *testing.T) {
		path, folder, err := Locate(root, folders, "00123")
		require.NoError(t, err)
		assert.Equal(t, "shook", folder)
		assert.Equal(t, filepath.Join(root, "shook", "00123 session.csv"), path)
	})

	t.Run("Missing Folders Skipped", func(t *testing.T) {
		path, folder, err := Locate(root, folders, "00456")
		require.NoError(t, err)
		assert.Equal(t, "noshook", folder)
		assert.Equal(t, filepath.Join(root, "noshook", "00456.csv"), path)
	})

	t.Run("Only CSV Files Match", func(t *testing.T) {
		_, _, err := Locate(root, folders, "00789")
		assert.ErrorIs(t, err, ErrNoTrialLog)
	})

	t.Run("Exact Five Characters", func(t *testing.T) {
		_, _, err := Locate(root, folders, "00124")
		assert.ErrorIs(t, err, ErrNoTrialLog)
	})
}

func TestLocatePrefix(t *testing.T) {
	root, err := os.MkdirTemp("", "fire2_locate_prefix_test")
	require.NoError(t, err)
	defer os.RemoveAll(root)

	dir := filepath.Join(root, "shook")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "R7session.csv"), []byte("Time\n"), 0644))

	path, folder, err := LocatePrefix(root, []string{"shook"}, "R7")
	require.NoError(t, err)
	assert.Equal(t, "shook", folder)
	assert.Equal(t, filepath.Join(dir, "R7session.csv"), path)

	_, _, err = LocatePrefix(root, []string{"shook"}, "Q9")
	assert.ErrorIs(t, err, ErrNoTrialLog)
}
