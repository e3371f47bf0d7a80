package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// resetOnCleanup возвращает консольный логгер и закрывает JSON файл теста
func resetOnCleanup(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { _ = Init(Options{}) })
}

func TestInit_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json.log")
	require.NoError(t, Init(Options{Level: "debug", JSONFile: path}))
	resetOnCleanup(t)

	Debug("загружен ряд", zap.String("symbol", "AAPL"), zap.Int("rows", 3))
	require.NoError(t, GetLogger().Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "загружен ряд", entry["msg"])
	assert.Equal(t, "AAPL", entry["symbol"])
	assert.EqualValues(t, 3, entry["rows"])
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init(Options{Level: "loud"}))
}

func TestGetLogger_DefaultsBeforeInit(t *testing.T) {
	assert.NotNil(t, GetLogger())
}

func TestSync_IgnoresConsoleSyncErrors(t *testing.T) {
	require.NoError(t, Init(Options{Level: "info"}))
	Info("сообщение в stderr")
	// stderr под go test - pipe, fsync для него возвращает EINVAL
	assert.NoError(t, Sync())
}

func TestConsoleSyncer(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no error", nil, nil},
		{"pipe", &os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.EINVAL}, nil},
		{"terminal", &os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.ENOTTY}, nil},
		{"disk failure", &os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.EIO}, syscall.EIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := consoleSyncer{failingSyncer{err: tt.err}}.Sync()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInit_ClosesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json.log")
	second := filepath.Join(dir, "second.json.log")

	require.NoError(t, Init(Options{Level: "info", JSONFile: first}))
	resetOnCleanup(t)
	mu.RLock()
	firstFile := logFile
	mu.RUnlock()
	require.NotNil(t, firstFile)

	Info("первый")
	require.NoError(t, Init(Options{Level: "info", JSONFile: second}))
	Info("второй")
	require.NoError(t, Sync())

	_, err := firstFile.Write([]byte("x"))
	assert.ErrorIs(t, err, os.ErrClosed)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(data), "первый")
	assert.NotContains(t, string(data), "второй")

	data, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), "второй")
}

type failingSyncer struct {
	err error
}

func (f failingSyncer) Write(p []byte) (int, error) { return len(p), nil }

func (f failingSyncer) Sync() error { return f.err }
