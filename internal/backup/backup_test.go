package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	tm := time.Date(2024, 5, 1, 14, 3, 9, 0, time.Local)
	name := FileName(tm)
	require.Equal(t, "curtains_20240501_140309.db", name)

	got, ok := ParseFileName(name)
	require.True(t, ok)
	require.True(t, tm.Equal(got))

	for _, s := range []string{"curtains.db", "curtains_2024.db", "other_20240501_140309.db", "curtains_20240501_140309.txt"} {
		_, ok := ParseFileName(s)
		require.Falsef(t, ok, "%s", s)
	}
}

func TestCreateAndRestore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "data", "curtains.db")
	backupDir := filepath.Join(dir, "backup")

	db, err := data.OpenMigrated(dbFile)
	require.NoError(t, err)
	_, err = data.CreateCustomer(db, quote.CustomerInput{Name: "Sara"})
	require.NoError(t, err)

	info, err := Create(ctx, db, backupDir, time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local))
	require.NoError(t, err)
	require.FileExists(t, info.Path)
	require.Positive(t, info.Size)

	_, err = Create(ctx, db, backupDir, time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local))
	require.Error(t, err)

	_, err = data.CreateCustomer(db, quote.CustomerInput{Name: "Omar"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	require.NoError(t, Restore(ctx, info.Path, dbFile))
	require.FileExists(t, dbFile+BeforeRestoreSuffix)

	db, err = data.OpenMigrated(dbFile)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()
	xs, err := data.ListCustomers(db)
	require.NoError(t, err)
	require.Len(t, xs, 1)
	require.Equal(t, "Sara", xs[0].Name)
}

func TestRestoreRejectsForeignFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	target := filepath.Join(dir, "curtains.db")
	require.NoError(t, os.WriteFile(target, []byte("current"), 0644))

	notDB := filepath.Join(dir, "notes.db")
	require.NoError(t, os.WriteFile(notDB, []byte("this is not sqlite"), 0644))
	require.Error(t, Restore(ctx, notDB, target))

	require.Error(t, Restore(ctx, filepath.Join(dir, "missing.db"), target))

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "current", string(b))
	require.NoFileExists(t, target+BeforeRestoreSuffix)
}

func TestListAndPrune(t *testing.T) {
	dir := t.TempDir()
	for d := 1; d <= 4; d++ {
		name := FileName(time.Date(2024, 5, d, 9, 0, 0, 0, time.Local))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), nil, 0644))

	xs, err := List(dir)
	require.NoError(t, err)
	require.Len(t, xs, 4)
	require.Equal(t, 4, xs[0].Time.Day())
	require.Equal(t, 1, xs[3].Time.Day())

	removed, err := Prune(dir, 2)
	require.NoError(t, err)
	require.Len(t, removed, 2)

	xs, err = List(dir)
	require.NoError(t, err)
	require.Len(t, xs, 2)
	require.Equal(t, 3, xs[1].Time.Day())

	_, err = Prune(dir, 0)
	require.Error(t, err)

	xs, err = List(filepath.Join(dir, "none"))
	require.NoError(t, err)
	require.Empty(t, xs)
}
