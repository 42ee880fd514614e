package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Empty(t, cfg.HFToken)
	assert.Equal(t, []string{"greeting"}, cfg.Providers)
	assert.Equal(t, "https://router.huggingface.co", cfg.HFRouterURL)
	assert.Equal(t, 2*time.Minute, cfg.HFTimeout)
	assert.EqualValues(t, 16<<20, cfg.HFMaxBytes)
	assert.Equal(t, 1.0, cfg.HFRateLimit)
	assert.Equal(t, 1, cfg.HFRateBurst)
	assert.Equal(t, "info", cfg.Level())
}

func TestFromMap_Overrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"HF_TOKEN":      "  hf_abc  ",
		"LOG_LEVEL":     "WARN",
		"MCP_PROVIDERS": "greeting, extra,,",
		"HF_TIMEOUT":    "30s",
		"HF_RATE_LIMIT": "0",
	})
	require.NoError(t, err)
	assert.Equal(t, "hf_abc", cfg.HFToken)
	assert.Equal(t, "warn", cfg.Level())
	assert.Equal(t, []string{"greeting", "extra"}, cfg.Providers)
	assert.Equal(t, 30*time.Second, cfg.HFTimeout)
	assert.Zero(t, cfg.HFRateLimit)
}

func TestFromMap_DebugImpliesDebugLevel(t *testing.T) {
	cfg, err := FromMap(map[string]string{"DEBUG": "true"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Level())

	cfg, err = FromMap(map[string]string{"DEBUG": "1", "LOG_LEVEL": "error"})
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Level())
}

func TestFromMap_Invalid(t *testing.T) {
	_, err := FromMap(map[string]string{"HF_TIMEOUT": "soon"})
	assert.Error(t, err)
	_, err = FromMap(map[string]string{"HF_MAX_IMAGE_BYTES": "lots"})
	assert.Error(t, err)
}

func TestLoad_DotenvFile(t *testing.T) {
	// Register restoration, then make sure the keys are absent so the file
	// can supply them.
	for _, k := range []string{"HF_TOKEN", "HF_RATE_BURST"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HF_TOKEN=hf_from_file\nHF_RATE_BURST=3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hf_from_file", cfg.HFToken)
	assert.Equal(t, 3, cfg.HFRateBurst)
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	t.Setenv("HF_TOKEN", "hf_from_env")
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HF_TOKEN=hf_from_file\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hf_from_env", cfg.HFToken)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, WriteTemplate(path, false))
	assert.ErrorContains(t, WriteTemplate(path, false), "already exists")
	require.NoError(t, WriteTemplate(path, true))

	vars, err := godotenv.Read(path)
	require.NoError(t, err)
	cfg, err := FromMap(vars)
	require.NoError(t, err)
	assert.Equal(t, []string{"greeting"}, cfg.Providers)
	assert.Equal(t, "info", cfg.Level())
	assert.Empty(t, cfg.HFToken)
}

func TestSetupLogging_File(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})
	path := filepath.Join(t.TempDir(), "logs", "greeting.log")
	closer := SetupLogging(&Config{LogLevel: "debug", LogFile: path})
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.Debug("hello from test")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "hello from test"))
}

func TestSetupLogging_UnknownLevelFallsBack(t *testing.T) {
	t.Cleanup(func() { logrus.SetLevel(logrus.InfoLevel) })
	closer := SetupLogging(&Config{LogLevel: "chatty"})
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	assert.NoError(t, closer.Close())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs/x.log"), expandHome("~/logs/x.log"))
	assert.Equal(t, "/var/log/x.log", expandHome("/var/log/x.log"))
}
