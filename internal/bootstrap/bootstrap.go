// Package bootstrap prepares the data directory, configuration, log and database
// the same way for the command line and the desktop front ends.
package bootstrap

import (
	"context"
	"io"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/backup"
	"github.com/fpawel/curtains/internal/config"
	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/export"
	"github.com/fpawel/curtains/internal/export/pdf"
	"github.com/fpawel/curtains/internal/export/pdf/gofpdf"
	"github.com/fpawel/curtains/internal/logs"
	"github.com/fpawel/curtains/internal/paths"
	"github.com/jmoiron/sqlx"
	"github.com/powerman/structlog"
)

var log = structlog.New()

type Env struct {
	Paths  paths.Paths
	Config config.Config
	Now    func() time.Time

	logFile io.Closer
}

// New resolves the data directory, creating it when missing, loads config.toml
// and starts the rotating log. Home overrides the resolved directory when not empty.
// Log records are copied to console when it is not nil.
func New(home string, console io.Writer) (*Env, error) {
	e := &Env{Now: time.Now}
	if home != "" {
		e.Paths = paths.New(home)
	} else {
		p, err := paths.Resolve()
		if err != nil {
			return nil, err
		}
		e.Paths = p
	}
	if err := e.Paths.Ensure(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(e.Paths.ConfigFile())
	if err != nil {
		return nil, err
	}
	e.Config = cfg
	if e.logFile, err = logs.Setup(e.Paths.LogFile(), cfg.Log, console); err != nil {
		return nil, err
	}
	log.Debug("data directory", "root", e.Paths.Root)
	return e, nil
}

// Close stops writing the log file.
func (e *Env) Close() error {
	if e.logFile == nil {
		return nil
	}
	err := e.logFile.Close()
	e.logFile = nil
	return merry.Wrap(err)
}

func (e *Env) DatabaseFile() string {
	return e.Config.DatabaseFile(e.Paths)
}

func (e *Env) BackupDir() string {
	return e.Config.BackupDir(e.Paths)
}

// OpenDB opens the database and applies pending migrations.
func (e *Env) OpenDB(ctx context.Context) (*sqlx.DB, error) {
	db, err := data.Open(e.DatabaseFile())
	if err != nil {
		return nil, err
	}
	if err := e.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies pending migrations. An existing schema is backed up first
// when config asks for it.
func (e *Env) Migrate(ctx context.Context, db *sqlx.DB) error {
	pending, err := data.PendingMigrations(db)
	if err != nil || len(pending) == 0 {
		return err
	}
	version, err := data.SchemaVersion(db)
	if err != nil {
		return err
	}
	if version > 0 && e.Config.Backup.BeforeMigrate {
		info, err := backup.Create(ctx, db, e.BackupDir(), e.Now())
		if err != nil {
			return merry.Prepend(err, "backup before migration")
		}
		log.Info("backup before migration", "file", info.Path, "version", version)
	}
	if err := data.Migrate(db); err != nil {
		return err
	}
	log.Info("schema migrated", "from", version, "to", data.LatestVersion())
	return nil
}

// Backup copies the database into the backup directory and removes the oldest
// copies above the configured count.
func (e *Env) Backup(ctx context.Context, db *sqlx.DB) (backup.Info, error) {
	info, err := backup.Create(ctx, db, e.BackupDir(), e.Now())
	if err != nil {
		return info, err
	}
	if _, err := backup.Prune(e.BackupDir(), e.Config.Backup.Keep); err != nil {
		log.PrintErr("prune backups", "error", err)
	}
	return info, nil
}

func (e *Env) PDFGenerator() pdf.Generator {
	return gofpdf.New(paths.Abs(e.Paths.Root, e.Config.PDF.FontFile), paths.Abs(e.Paths.Root, e.Config.PDF.BoldFontFile))
}

// LoadDocument reads the quotation for printing with the configured currency label
// and an absolute logo path.
func (e *Env) LoadDocument(db *sqlx.DB, quotationID int64) (export.Document, error) {
	doc, err := export.LoadDocument(db, quotationID)
	if err != nil {
		return doc, err
	}
	if e.Config.PDF.Currency != "" {
		doc.Currency = e.Config.PDF.Currency
	}
	doc.Settings.LogoPath = e.Paths.AbsoluteMedia(doc.Settings.LogoPath)
	return doc, nil
}
