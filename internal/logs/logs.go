// Package logs configures structlog output.
package logs

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/config"
	"github.com/powerman/structlog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func init() {
	structlog.DefaultLogger.
		SetLogLevel(structlog.INF).
		SetPrefixKeys(
			structlog.KeyApp, structlog.KeyPID, structlog.KeyLevel, structlog.KeyUnit, structlog.KeyTime,
		).
		SetDefaultKeyvals(
			structlog.KeyApp, filepath.Base(os.Args[0]),
			structlog.KeySource, structlog.Auto,
		).
		SetSuffixKeys(structlog.KeyStack, structlog.KeySource).
		SetKeysFormat(map[string]string{
			structlog.KeyTime:   " %[2]s",
			structlog.KeySource: " %6[2]s",
			structlog.KeyUnit:   " %6[2]s",
			"config":            " %+[2]v",
		}).SetTimeFormat("2006-01-02 15:04:05")
}

// Level maps a configured level name to a structlog level. Unknown names give debug.
func Level(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "dbg":
		return structlog.DBG.String(), true
	case "info", "inf":
		return structlog.INF.String(), true
	case "warn", "warning", "wrn":
		return structlog.WRN.String(), true
	case "error", "err":
		return structlog.ERR.String(), true
	}
	return structlog.DBG.String(), false
}

// NewRotatingWriter opens the log file rotated by size.
func NewRotatingWriter(filename string, c config.Log) (*lumberjack.Logger, error) {
	if filename == "" {
		return nil, merry.New("log file name must not be empty")
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = 5
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, merry.Prepend(err, "create log directory").
			WithUserMessagef("can not create directory %s, check permissions", filepath.Dir(filename))
	}
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxFiles,
		LocalTime:  true,
	}, nil
}

// Setup sends the default logger output to console and to the rotating file.
// The returned closer flushes and closes the file.
func Setup(filename string, c config.Log, console io.Writer) (io.Closer, error) {
	w, err := NewRotatingWriter(filename, c)
	if err != nil {
		return nil, err
	}
	level, ok := Level(c.Level)
	out := io.Writer(w)
	if console != nil {
		out = io.MultiWriter(console, w)
	}
	structlog.DefaultLogger.SetOutput(out).SetLogLevel(structlog.ParseLevel(level))
	if !ok {
		structlog.DefaultLogger.Warn("wrong log level, debug used", "level", c.Level)
	}
	return w, nil
}
