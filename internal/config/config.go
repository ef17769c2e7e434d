// Package config reads and writes config.toml.
package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/paths"
	"github.com/pelletier/go-toml"
	"github.com/powerman/structlog"
)

var log = structlog.New()

type Config struct {
	Database Database `toml:"database" comment:"database"`
	Backup   Backup   `toml:"backup" comment:"database backups"`
	Log      Log      `toml:"log" comment:"log files"`
	Editor   string   `toml:"editor" comment:"text editor command used to edit records"`
	PDF      PDF      `toml:"pdf" comment:"quotation printing"`
}

type Database struct {
	File string `toml:"file" comment:"SQLite database file, relative to the data directory"`
}

type Backup struct {
	Dir           string `toml:"dir" comment:"backup directory, empty for the backup directory next to data"`
	Keep          int    `toml:"keep" comment:"number of newest backups to keep"`
	BeforeMigrate bool   `toml:"before_migrate" comment:"back up the database before schema migrations"`
}

type Log struct {
	Level     string `toml:"level" comment:"log level: debug, info, warn, err"`
	MaxSizeMB int    `toml:"max_size_mb" comment:"log file size limit, MB"`
	MaxFiles  int    `toml:"max_files" comment:"number of rotated log files to keep"`
}

type PDF struct {
	FontFile     string `toml:"font_file" comment:"UTF-8 TrueType font for PDF, empty for Helvetica"`
	BoldFontFile string `toml:"bold_font_file" comment:"bold TrueType font, empty to reuse font_file"`
	Currency     string `toml:"currency" comment:"currency label, empty for the company settings currency"`
}

func Default() Config {
	return Config{
		Database: Database{File: "curtains.db"},
		Backup:   Backup{Keep: 20, BeforeMigrate: true},
		Log:      Log{Level: "info", MaxSizeMB: 10, MaxFiles: 5},
		Editor:   defaultEditor(),
	}
}

func defaultEditor() string {
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	if s := os.Getenv("EDITOR"); s != "" {
		return s
	}
	return "vi"
}

// Load reads filename over the defaults and writes the result back.
// A file that can not be parsed is reported and replaced with the defaults.
func Load(filename string) (Config, error) {
	c := Default()
	b, err := ioutil.ReadFile(filename)
	switch {
	case os.IsNotExist(err):
		log.Info("config not found, defaults written", "file", filename)
	case err != nil:
		return c, merry.Prepend(err, "read config").WithUserMessagef("can not read %s", filename)
	default:
		if err := toml.Unmarshal(b, &c); err != nil {
			log.PrintErr(merry.Prepend(err, "config"), "file", filename)
			c = Default()
		}
	}
	c.normalize()
	return c, Save(filename, c)
}

func Save(filename string, c Config) error {
	b, err := toml.Marshal(c)
	if err != nil {
		return merry.Wrap(err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return merry.Wrap(err)
	}
	if err := ioutil.WriteFile(filename, b, 0644); err != nil {
		return merry.Prepend(err, "save config").WithUserMessagef("can not write %s", filename)
	}
	return nil
}

func (c *Config) normalize() {
	d := Default()
	if c.Database.File == "" {
		c.Database.File = d.Database.File
	}
	if c.Backup.Keep < 1 {
		c.Backup.Keep = d.Backup.Keep
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.MaxSizeMB < 1 {
		c.Log.MaxSizeMB = d.Log.MaxSizeMB
	}
	if c.Log.MaxFiles < 1 {
		c.Log.MaxFiles = d.Log.MaxFiles
	}
	if c.Editor == "" {
		c.Editor = d.Editor
	}
}

// DatabaseFile is the absolute database path.
func (c Config) DatabaseFile(p paths.Paths) string {
	return paths.Abs(p.Data, c.Database.File)
}

func (c Config) BackupDir(p paths.Paths) string {
	if c.Backup.Dir == "" {
		return p.Backup
	}
	return paths.Abs(p.Root, c.Backup.Dir)
}
