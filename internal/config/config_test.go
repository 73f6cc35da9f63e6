package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "amrdiff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5, cfg.Alignment.NumBest)
	assert.Equal(t, 5, cfg.Alignment.NumBestInFile)
	assert.Equal(t, "dot", cfg.Output.Format)
	assert.False(t, cfg.Evidence())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
cross_lingual: true
alignment:
  num_best: 2
  num_best_in_file: 10
  src2tgt: fwd.A3
  tgt2src: bwd.A3
output:
  format: mermaid
`)
	t.Setenv("AMRDIFF_DB", "/tmp/x.db")
	t.Setenv("AMRDIFF_LOG_LEVEL", "warn")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.True(t, cfg.CrossLingual)
	assert.True(t, cfg.SkipInvalid)
	assert.Equal(t, 10, cfg.Alignment.NumBestInFile)
	assert.True(t, cfg.Evidence())
	assert.Equal(t, "mermaid", cfg.Output.Format)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"num_best": "alignment:\n  num_best: 0\n",
		"in_file":  "alignment:\n  num_best: 5\n  num_best_in_file: 2\n",
		"one_file": "alignment:\n  src2tgt: fwd.A3\n",
		"format":   "output:\n  format: png\n",
		"bad_yaml": "alignment: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
