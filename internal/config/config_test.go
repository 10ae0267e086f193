package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/kiln/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFind_SearchesParentDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".kiln.yaml"), `
compile:
  workers: 3
  fail_on_warnings: true
output:
  format: json
metrics:
  enabled: true
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, path, err := Find(nested)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, ".kiln.yaml"), path)
	assert.Equal(t, root, cfg.RootDir)
	assert.Equal(t, 3, cfg.Compile.Workers)
	assert.Equal(t, 3, cfg.EffectiveWorkers())
	assert.True(t, cfg.Compile.FailOnWarnings)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Metrics.Enabled)
	// Untouched sections keep their defaults.
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, "kiln", cfg.Metrics.Namespace)
}

func TestFind_YmlAndDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".kiln.yml"), "logging:\n  level: debug\n")

	cfg, path, err := Find(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".kiln.yml"), path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative workers", "compile:\n  workers: -1\n", "compile.workers"},
		{"unknown format", "output:\n  format: xml\n", "output.format"},
		{"unknown color", "output:\n  color: sometimes\n", "output.color"},
		{"tracing without endpoint", "tracing:\n  enabled: true\n  endpoint: \"\"\n", "tracing.endpoint"},
		{"malformed yaml", "compile: [\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".kiln.yaml")
			writeFile(t, path, tt.content)

			_, err := Load(path)
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigError, errors.GetErrorCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".kiln.yaml")
	cfg := DefaultConfig()
	cfg.Compile.Workers = 2
	cfg.Output.Format = "yaml"

	require.NoError(t, Save(cfg, path))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, loaded.Compile.Workers)
	assert.Equal(t, "yaml", loaded.Output.Format)
	assert.Equal(t, path, loaded.ConfigPath)
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("text"))
	assert.False(t, ValidFormat("dot"))
	assert.NoError(t, Validate(DefaultConfig()))
	assert.Positive(t, DefaultConfig().EffectiveWorkers())
}
