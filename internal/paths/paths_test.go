package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveFromEnv(t *testing.T) {
	root := t.TempDir()
	t.Setenv(EnvHome, root)

	p, err := Resolve()
	require.NoError(t, err)
	require.Equal(t, root, p.Root)
	require.Equal(t, filepath.Join(root, "data"), p.Data)
	require.Equal(t, filepath.Join(root, "config.toml"), p.ConfigFile())
	require.Equal(t, filepath.Join(root, "logs", "curtains.log"), p.LogFile())

	require.NoError(t, p.Ensure())
	for _, dir := range []string{p.Data, p.Backup, p.Logs, p.ProductMedia} {
		fi, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, fi.IsDir())
	}
}

func TestMediaPaths(t *testing.T) {
	p := New(filepath.Join(string(filepath.Separator), "srv", "curtains"))
	abs := filepath.Join(p.ProductMedia, "blackout.png")

	rel := p.RelativeMedia(abs)
	require.Equal(t, "products/blackout.png", rel)
	require.Equal(t, abs, p.AbsoluteMedia(rel))

	outside := filepath.Join(string(filepath.Separator), "tmp", "x.png")
	require.Equal(t, outside, p.RelativeMedia(outside))
	require.Equal(t, outside, p.AbsoluteMedia(outside))
}

func TestAbs(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "base")
	require.Equal(t, "", Abs(base, ""))
	require.Equal(t, filepath.Join(base, "a.db"), Abs(base, "a.db"))
	require.Equal(t, filepath.Join(base, "x", "a.db"), Abs(base, filepath.Join("x", "a.db")))
}
