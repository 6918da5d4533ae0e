// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, "Downloads", filepath.Base(cfg.Paths.DownloadDir))
	assert.Empty(t, cfg.Paths.ModelFile)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, "flotation-mcp", cfg.Server.Name)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flotation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
paths:
  data_dir: /srv/flotation/data
  download_dir: /srv/flotation/out
log:
  level: debug
  json: true
`), 0o644))

	t.Setenv("FLOTATION_PATHS_DOWNLOAD_DIR", "/tmp/exports")
	t.Setenv("FLOTATION_LOG_LEVEL", "warn")

	cfg, err := Load(path, map[string]any{"log.level": "error"})
	require.NoError(t, err)

	assert.Equal(t, "/srv/flotation/data", cfg.Paths.DataDir, "file beats defaults")
	assert.Equal(t, "/tmp/exports", cfg.Paths.DownloadDir, "env beats file")
	assert.Equal(t, "error", cfg.Log.Level, "overrides beat env")
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load("", map[string]any{"paths.model_file": "~/models/flotation.yaml"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "models", "flotation.yaml"), cfg.Paths.ModelFile)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		overrides   map[string]any
		errContains string
	}{
		{
			name:        "invalid log level",
			overrides:   map[string]any{"log.level": "loud"},
			errContains: "validation failed",
		},
		{
			name:        "empty data dir",
			overrides:   map[string]any{"paths.data_dir": ""},
			errContains: "validation failed",
		},
		{
			name:        "malformed file",
			file:        "paths: [unclosed",
			errContains: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), "bad.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
			}
			_, err := Load(path, tt.overrides)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTransformEnvKey(t *testing.T) {
	assert.Equal(t, "paths.download_dir", transformEnvKey("PATHS_DOWNLOAD_DIR"))
	assert.Equal(t, "log.level", transformEnvKey("LOG__LEVEL"))
	assert.Equal(t, "debug", transformEnvKey("DEBUG"))
	assert.Equal(t, "", transformEnvKey("_"))
}
