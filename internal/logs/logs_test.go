package logs

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fpawel/curtains/internal/config"
	"github.com/powerman/structlog"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	for name, want := range map[string]string{
		"debug":   structlog.DBG.String(),
		"INFO":    structlog.INF.String(),
		" warn ":  structlog.WRN.String(),
		"err":     structlog.ERR.String(),
		"verbose": structlog.DBG.String(),
	} {
		got, _ := Level(name)
		require.Equal(t, want, got, name)
	}
	_, ok := Level("verbose")
	require.False(t, ok)
}

func TestSetupWritesFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "logs", "curtains.log")
	closer, err := Setup(filename, config.Log{Level: "info"}, nil)
	require.NoError(t, err)

	structlog.New().Info("quotation saved", "serial", "Q-2024-000001")
	structlog.New().Debug("hidden at info level")
	require.NoError(t, closer.Close())

	b, err := ioutil.ReadFile(filename)
	require.NoError(t, err)
	require.Contains(t, string(b), "quotation saved")
	require.Contains(t, string(b), "Q-2024-000001")
	require.NotContains(t, string(b), "hidden at info level")
}

func TestNewRotatingWriterDefaults(t *testing.T) {
	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "a.log"), config.Log{})
	require.NoError(t, err)
	require.Equal(t, 10, w.MaxSize)
	require.Equal(t, 5, w.MaxBackups)

	_, err = NewRotatingWriter("", config.Log{})
	require.Error(t, err)
}

func TestStackIsSuffix(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "curtains.log")
	closer, err := Setup(filename, config.Log{Level: "info"}, nil)
	require.NoError(t, err)

	structlog.New().Info("stack order", structlog.KeyStack, "STACK-MARK", "serial", "Q-2024-000002")
	require.NoError(t, closer.Close())

	b, err := ioutil.ReadFile(filename)
	require.NoError(t, err)
	s := string(b)
	iSerial := strings.Index(s, "Q-2024-000002")
	iStack := strings.Index(s, "\nSTACK-MARK")
	require.True(t, iSerial >= 0 && iStack >= 0, s)
	require.Less(t, iSerial, iStack, s)
}
