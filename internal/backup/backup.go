// Package backup keeps dated copies of the database file.
package backup

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/powerman/structlog"
)

const (
	filePrefix = "curtains_"
	fileExt    = ".db"
	timeLayout = "20060102_150405"

	// BeforeRestoreSuffix names the copy of the database taken before it is replaced.
	BeforeRestoreSuffix = ".before-restore"
)

var log = structlog.New()

type Info struct {
	Path string
	Name string
	Size int64
	Time time.Time
}

// FileName is the backup file name for the moment t.
func FileName(t time.Time) string {
	return filePrefix + t.Format(timeLayout) + fileExt
}

// ParseFileName returns the moment encoded in a backup file name.
func ParseFileName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
		return time.Time{}, false
	}
	s := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Create writes a consistent snapshot of the live database into dir with VACUUM INTO.
func Create(ctx context.Context, db *sqlx.DB, dir string, now time.Time) (Info, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Info{}, merry.Prepend(err, "create backup directory").
			WithUserMessagef("can not create backup directory %s", dir)
	}
	filename := filepath.Join(dir, FileName(now))
	if _, err := os.Stat(filename); err == nil {
		return Info{}, merry.Errorf("backup %s already exists", filename).
			WithUserMessage("a backup was already made this second, try again")
	}
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, filename); err != nil {
		return Info{}, merry.Prepend(err, "vacuum into "+filename)
	}
	fi, err := os.Stat(filename)
	if err != nil {
		return Info{}, merry.Wrap(err)
	}
	log.Info("backup created", "file", filename, "size", fi.Size())
	return Info{Path: filename, Name: fi.Name(), Size: fi.Size(), Time: now}, nil
}

// List returns the backups in dir newest first. A missing dir has no backups.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, merry.Wrap(err)
	}
	var xs []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		t, ok := ParseFileName(e.Name())
		if !ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, merry.Wrap(err)
		}
		xs = append(xs, Info{
			Path: filepath.Join(dir, e.Name()),
			Name: e.Name(),
			Size: fi.Size(),
			Time: t,
		})
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i].Time.After(xs[j].Time) })
	return xs, nil
}

// Prune removes all but the newest keep backups and returns the removed paths.
func Prune(dir string, keep int) ([]string, error) {
	if keep < 1 {
		return nil, merry.Errorf("keep %d: at least one backup must be kept", keep)
	}
	xs, err := List(dir)
	if err != nil {
		return nil, err
	}
	var removed []string
	for i := keep; i < len(xs); i++ {
		if err := os.Remove(xs[i].Path); err != nil {
			return removed, merry.Wrap(err)
		}
		removed = append(removed, xs[i].Path)
	}
	if len(removed) > 0 {
		log.Info("old backups removed", "count", len(removed), "kept", keep)
	}
	return removed, nil
}

// Validate checks that filename is a database of this program.
func Validate(ctx context.Context, filename string) error {
	if _, err := os.Stat(filename); err != nil {
		return merry.Prepend(err, "backup").WithUserMessagef("backup %s not found", filename)
	}
	db, err := sqlx.Open("sqlite3", "file:"+filepath.ToSlash(filename)+"?mode=ro")
	if err != nil {
		return merry.Wrap(err)
	}
	defer log.ErrIfFail(db.Close)

	var integrity string
	if err := db.GetContext(ctx, &integrity, `PRAGMA integrity_check`); err != nil {
		return merry.Prepend(err, filename).WithUserMessagef("%s is not a database file", filename)
	}
	if integrity != "ok" {
		return merry.Errorf("%s: integrity check: %s", filename, integrity).
			WithUserMessagef("%s is damaged", filename)
	}
	var n int
	if err := db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migration'`); err != nil {
		return merry.Wrap(err)
	}
	if n == 0 {
		return merry.Errorf("%s: no schema_migration table", filename).
			WithUserMessagef("%s is not a curtains database", filename)
	}
	return nil
}

// Restore replaces target with src. The database at target must be closed.
// The previous target is kept next to it with BeforeRestoreSuffix.
func Restore(ctx context.Context, src, target string) error {
	if err := Validate(ctx, src); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return merry.Wrap(err)
	}
	if _, err := os.Stat(target); err == nil {
		if err := copyFile(target, target+BeforeRestoreSuffix); err != nil {
			return merry.Prepend(err, "save current database")
		}
	}
	tmp := target + ".restore-tmp"
	if err := copyFile(src, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return merry.Prepend(err, "replace database")
	}
	_ = os.Remove(target + "-journal")
	log.Info("database restored", "from", src, "to", target)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return merry.Wrap(err)
	}
	defer log.ErrIfFail(in.Close)

	out, err := os.Create(dst)
	if err != nil {
		return merry.Wrap(err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return merry.Wrap(err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return merry.Wrap(err)
	}
	return merry.Wrap(out.Close())
}
