package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"FSTRING_DEBUG", "FSTRING_LOG_LEVEL", "FSTRING_DEFAULT_VERB", "FSTRING_CONCURRENCY"} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "fmt.Sprintf", cfg.Generator.Call)
	assert.Equal(t, "fmt", cfg.Generator.ImportPath)
	assert.Equal(t, "%v", cfg.Generator.DefaultVerb)
	assert.Equal(t, 8, cfg.Apply.Concurrency)
	assert.Equal(t, []string{".go"}, cfg.Watch.Extensions)
	assert.False(t, cfg.Logging.DebugMode)
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Generator.DefaultVerb = "%s"
	cfg.Apply.Concurrency = 2
	cfg.Logging.DebugMode = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "%s", loaded.Generator.DefaultVerb)
	assert.Equal(t, 2, loaded.Apply.Concurrency)
	assert.True(t, loaded.Logging.DebugMode)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"bad yaml":          "generator: [",
		"bad verb":          "generator:\n  default_verb: \"%d\"\n",
		"bad concurrency":   "apply:\n  concurrency: 0\n",
		"future version":    "version: 2.1.0\n",
		"garbage version":   "version: banana\n",
		"bad debounce":      "watch:\n  debounce: soon\n",
		"bad extension":     "watch:\n  extensions: [go]\n",
		"bad logging level": "logging:\n  level: loud\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FSTRING_DEBUG", "true")
	t.Setenv("FSTRING_LOG_LEVEL", "debug")
	t.Setenv("FSTRING_DEFAULT_VERB", "%s")
	t.Setenv("FSTRING_CONCURRENCY", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.Logging.DebugMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "%s", cfg.Generator.DefaultVerb)
	assert.Equal(t, 3, cfg.Apply.Concurrency)
}

func TestLoadWorkspace_DotEnv(t *testing.T) {
	clearEnv(t)
	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".env"), []byte("FSTRING_CONCURRENCY=5\n"), 0644))
	// godotenv does not override variables that are already set, and
	// clearEnv set them to empty, so unset this one for the test.
	require.NoError(t, os.Unsetenv("FSTRING_CONCURRENCY"))
	t.Cleanup(func() { os.Unsetenv("FSTRING_CONCURRENCY") })

	cfg, err := LoadWorkspace(ws)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Apply.Concurrency)
}

func TestGetDebounce(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 300*time.Millisecond, cfg.GetDebounce())
	cfg.Watch.Debounce = "1s"
	assert.Equal(t, time.Second, cfg.GetDebounce())
	cfg.Watch.Debounce = "nope"
	assert.Equal(t, 300*time.Millisecond, cfg.GetDebounce())
}

func TestFindWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0644))
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0755))

	assert.Equal(t, root, FindWorkspaceRoot(deep))
}

func TestLoggingConfig_Settings(t *testing.T) {
	c := LoggingConfig{
		Level:      "warn",
		Format:     "json",
		DebugMode:  true,
		Categories: map[string]bool{"watch": false},
	}

	s := c.Settings()
	assert.True(t, s.DebugMode)
	assert.Equal(t, "warn", s.Level)
	assert.Equal(t, "json", s.Format)
	assert.Equal(t, c.Categories, s.Categories)
}
