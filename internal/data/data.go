package data

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/powerman/structlog"
)

// Open opens the database file without touching the schema; call Migrate afterwards.
func Open(filename string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, merry.Prepend(err, "create database directory").
			WithUserMessagef("can not create database directory %s", filepath.Dir(filename))
	}
	db, err := openSqliteDBx(filename)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA encoding = 'UTF-8';`); err != nil {
		_ = db.Close()
		return nil, merry.Prepend(err, "open "+filename).
			WithUserMessagef("can not open database %s", filename)
	}
	return db, nil
}

// OpenMigrated opens the database and brings the schema up to date.
func OpenMigrated(filename string) (*sqlx.DB, error) {
	db, err := Open(filename)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openSqliteDB(fileName string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", fileName+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, merry.Wrap(err)
	}
	conn.SetMaxIdleConns(1)
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)
	return conn, nil
}

func openSqliteDBx(fileName string) (*sqlx.DB, error) {
	conn, err := openSqliteDB(fileName)
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(conn, "sqlite3"), nil
}

func getNewInsertedID(r sql.Result) (int64, error) {
	id, err := r.LastInsertId()
	if err != nil {
		return 0, merry.Wrap(err)
	}
	if id <= 0 {
		return 0, merry.New("was not inserted")
	}
	return id, nil
}

func expectOneRowAffected(r sql.Result, what string, id int64) error {
	n, err := r.RowsAffected()
	if err != nil {
		return merry.Wrap(err)
	}
	if n == 0 {
		return notFound(what, id)
	}
	if n != 1 {
		return merry.Errorf("%s %d: expected 1 row affected, got %d", what, id, n)
	}
	return nil
}

func notFound(what string, id int64) error {
	return quote.ErrNotFound.Appendf("%s %d", what, id).
		WithUserMessagef("%s %d not found", what, id)
}

// getOne wraps sql.ErrNoRows into quote.ErrNotFound.
func getOne(q sqlx.Queryer, dest interface{}, what string, id int64, query string, args ...interface{}) error {
	err := sqlx.Get(q, dest, query, args...)
	if err == sql.ErrNoRows {
		return notFound(what, id)
	}
	return merry.Wrap(err)
}

func withTx(db *sqlx.DB, f func(tx *sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return merry.Wrap(err)
	}
	if err := f(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return merry.Wrap(tx.Commit())
}

var log = structlog.New()

var nowFunc = time.Now

func now() time.Time {
	return nowFunc().UTC().Truncate(time.Second)
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeArg matches s anywhere in the column. Use with ESCAPE '\'.
func likeArg(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
