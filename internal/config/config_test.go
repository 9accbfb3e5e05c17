package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	original := Default("/var/lib/bankfeed")
	original.Listen = ":9090"
	original.Git.AutoCommit = true
	require.NoError(t, Save(path, original))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/bankfeed", got.DataDir)
	assert.Equal(t, ":9090", got.Listen)
	assert.True(t, got.Git.AutoCommit)
	assert.Equal(t, int64(100), got.Import.MinFileSize)
	assert.Equal(t, int64(10<<20), got.Import.MaxFileSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("data_dir: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default("data")
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.False(t, cfg.Git.AutoCommit)
}
