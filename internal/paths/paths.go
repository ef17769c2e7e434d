// Package paths locates the directories the program keeps its files in.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ansel1/merry"
)

const (
	EnvHome        = "CURTAINS_HOME"
	PortableMarker = "portable"
	appDirName     = "curtains"
)

type Paths struct {
	Root         string
	Data         string
	Backup       string
	Logs         string
	Media        string
	ProductMedia string
}

func New(root string) Paths {
	media := filepath.Join(root, "media")
	return Paths{
		Root:         root,
		Data:         filepath.Join(root, "data"),
		Backup:       filepath.Join(root, "backup"),
		Logs:         filepath.Join(root, "logs"),
		Media:        media,
		ProductMedia: filepath.Join(media, "products"),
	}
}

// Resolve picks the root directory: $CURTAINS_HOME, then the executable directory when
// a "portable" file lies next to the executable, then the user configuration directory.
func Resolve() (Paths, error) {
	if s := os.Getenv(EnvHome); s != "" {
		return New(s), nil
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		if _, err := os.Stat(filepath.Join(dir, PortableMarker)); err == nil {
			return New(dir), nil
		}
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, merry.Prepend(err, "user config directory")
	}
	return New(filepath.Join(dir, appDirName)), nil
}

// Ensure creates every directory.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.Data, p.Backup, p.Logs, p.ProductMedia} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return merry.Prepend(err, "create directory").
				WithUserMessagef("can not create directory %s, check permissions", dir)
		}
	}
	return nil
}

func (p Paths) ConfigFile() string {
	return filepath.Join(p.Root, "config.toml")
}

func (p Paths) LogFile() string {
	return filepath.Join(p.Logs, "curtains.log")
}

// Abs resolves name against base unless it is already absolute.
func Abs(base, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(base, name)
}

// RelativeMedia returns the path of a file under the media directory relative to it,
// so the data directory can be moved. Other paths are returned unchanged.
func (p Paths) RelativeMedia(path string) string {
	rel, err := filepath.Rel(p.Media, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

func (p Paths) AbsoluteMedia(path string) string {
	return Abs(p.Media, filepath.FromSlash(path))
}
