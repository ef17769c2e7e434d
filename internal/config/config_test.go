package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/fpawel/curtains/internal/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingWritesDefaults(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.toml")

	c, err := Load(filename)
	require.NoError(t, err)
	require.Equal(t, Default(), c)

	b, err := ioutil.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(b), "curtains.db")
	assert.Contains(t, string(b), "# number of newest backups to keep")
}

func TestLoadKeepsValues(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.toml")
	want := Default()
	want.Database.File = "shop.db"
	want.Backup.Keep = 3
	want.Backup.BeforeMigrate = false
	want.Log.Level = "debug"
	want.PDF.FontFile = "DejaVuSans.ttf"
	want.PDF.Currency = "AED"
	require.NoError(t, Save(filename, want))

	c, err := Load(filename)
	require.NoError(t, err)
	require.Equal(t, want, c)
}

func TestLoadBrokenFileRewritten(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, ioutil.WriteFile(filename, []byte("[database\nfile = "), 0644))

	c, err := Load(filename)
	require.NoError(t, err)
	require.Equal(t, Default(), c)

	c, err = Load(filename)
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestLoadNormalizes(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, ioutil.WriteFile(filename, []byte("[backup]\nkeep = 0\n[log]\nmax_files = -1\n"), 0644))

	c, err := Load(filename)
	require.NoError(t, err)
	require.Equal(t, 20, c.Backup.Keep)
	require.Equal(t, 5, c.Log.MaxFiles)
	require.Equal(t, "curtains.db", c.Database.File)
}

func TestPaths(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "home", "curtains")
	p := paths.New(root)
	c := Default()
	require.Equal(t, filepath.Join(root, "data", "curtains.db"), c.DatabaseFile(p))
	require.Equal(t, p.Backup, c.BackupDir(p))

	c.Backup.Dir = "copies"
	require.Equal(t, filepath.Join(root, "copies"), c.BackupDir(p))
}
