package logger

import (
	"os"
	"path/filepath"
	"testing"

	"secure-doc-gateway/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json", Output: "console"})
	assert.Error(t, err)
}

func TestNew_ConsoleJSON(t *testing.T) {
	log, err := New(config.LoggerConfig{Level: "debug", Format: "json", Output: "console"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1)) // debug
}

func TestNew_FileOutputCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "nested", "app.log")

	log, err := New(config.LoggerConfig{
		Level:  "info",
		Format: "console",
		Output: "file",
		File:   config.LoggerFileConfig{Filename: filename},
	})
	require.NoError(t, err)

	log.Info("запись в файл")
	_ = log.Sync()

	_, err = os.Stat(filepath.Join(dir, "nested"))
	assert.NoError(t, err)
}
