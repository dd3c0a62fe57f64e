package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)

	level, err = ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_NoSinksIsNop(t *testing.T) {
	l, err := New(Configuration{})
	require.NoError(t, err)
	defer l.Close()

	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestNew_FileSinks(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "commune.log")
	errPath := filepath.Join(dir, "commune.err")

	l, err := New(Configuration{Level: "debug", LogFile: logPath, ErrorFile: errPath})
	require.NoError(t, err)

	l.Debug("invoke", zap.String("action", "Commune.join"))
	l.Error("call failed", zap.String("code", "TransferFailed"))
	require.NoError(t, l.Close())

	all, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(all), "\n"))
	assert.Contains(t, string(all), `"action":"Commune.join"`)

	errs, err := os.ReadFile(errPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(errs), "\n"))
	assert.Contains(t, string(errs), `"code":"TransferFailed"`)
}

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(Configuration{Level: "warn", Console: true}, &buf)
	require.NoError(t, err)

	l.Info("committed")
	l.Warn("call rejected")

	assert.NotContains(t, buf.String(), "committed")
	assert.Contains(t, buf.String(), "call rejected")
}

func TestNew_BadLogPath(t *testing.T) {
	_, err := New(Configuration{LogFile: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}
