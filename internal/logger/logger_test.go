package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel_WarningAlias(t *testing.T) {
	for _, in := range []string{"warn", "WARNING", "Warning"} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, LevelWarn, got, in)
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestNew_DiscardsByDefault(t *testing.T) {
	t.Setenv("WIZFLOW_LOG_LEVEL", "")
	t.Setenv("WIZFLOW_LOG_FILE", "")

	l := New()
	require.Equal(t, LevelInfo, l.level)
	require.Nil(t, l.file)

	var buf bytes.Buffer
	l.Info("before output is set")
	l.SetOutput(&buf)
	l.Info("after output is set")
	require.NotContains(t, buf.String(), "before output is set")
	require.Contains(t, buf.String(), "[INFO] after output is set")
}

func TestNew_Environment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.log")
	t.Setenv("WIZFLOW_LOG_LEVEL", "debug")
	t.Setenv("WIZFLOW_LOG_FILE", path)

	l := New()
	defer l.Close()
	require.Equal(t, LevelDebug, l.level)

	l.Debug("step %s entered", "account")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "[DEBUG] step account entered")
}

func TestLogger_Configure(t *testing.T) {
	t.Setenv("WIZFLOW_LOG_FILE", "")
	path := filepath.Join(t.TempDir(), "wizflow.log")

	l := New()
	defer l.Close()
	require.NoError(t, l.Configure("warning", path))

	l.Info("quiet message")
	l.Warn("loud message")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(content), "quiet message")
	require.Contains(t, string(content), "[WARN] loud message")
}

func TestLogger_ConfigureKeepsUnsetValues(t *testing.T) {
	t.Setenv("WIZFLOW_LOG_FILE", "")
	l := New()
	l.SetLevel(LevelError)

	require.NoError(t, l.Configure("", ""))
	require.Equal(t, LevelError, l.level)
	require.Nil(t, l.file)

	require.Error(t, l.Configure("verbose", ""))
	require.Error(t, l.Configure("", filepath.Join(t.TempDir(), "missing", "x.log")))
}

func TestLogger_CloseReturnsToDiscard(t *testing.T) {
	t.Setenv("WIZFLOW_LOG_FILE", "")
	path := filepath.Join(t.TempDir(), "wizflow.log")

	l := New()
	require.NoError(t, l.Configure("", path))
	require.NoError(t, l.Close())
	require.Nil(t, l.file)

	l.Error("after close")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(content), "after close")

	require.NoError(t, l.Close())
}
