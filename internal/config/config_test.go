package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty config is valid and gets defaults.
	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultVersionSelector, cfg.Version)
	require.Equal(t, DefaultRepository, cfg.Repository)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.True(t, filepath.IsAbs(cfg.InstallDir))

	// Bad repository shapes.
	for _, repo := range []string{"noslash", "/name", "owner/", "a/b/c"} {
		bad := &Config{Repository: repo}
		require.Error(t, Validate(bad), repo)
	}

	// Nil config.
	require.Error(t, Validate(nil))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		InstallDir: filepath.Join(dir, "runtime"),
		Version:    "v0.6.0",
		PHPVersion: "8.4",
		Repository: "someone/php-fork",
		DebugBuild: true,
		Timeout:    time.Minute,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.InstallDir, loaded.InstallDir)
	require.Equal(t, cfg.Version, loaded.Version)
	require.Equal(t, cfg.PHPVersion, loaded.PHPVersion)
	require.Equal(t, cfg.Repository, loaded.Repository)
	require.True(t, loaded.DebugBuild)
	require.Equal(t, time.Minute, loaded.Timeout)
}

// TestLoad_MissingExplicitPath verifies a named but absent settings file is an error.
func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// TestEnvironmentOverrides verifies environment variables overlay file values.
func TestEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()

	t.Setenv(EnvInstallDir, filepath.Join(dir, "opt"))
	t.Setenv(EnvVersion, "v0.6.0-beta.1")
	t.Setenv(EnvSkipVerify, "true")
	t.Setenv(EnvDebugBuild, "1")
	t.Setenv(EnvNoPath, "false")
	t.Setenv(EnvPHPVersion, "8.5")
	t.Setenv(EnvRepository, "fork/dist")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "opt"), cfg.InstallDir)
	require.Equal(t, "v0.6.0-beta.1", cfg.Version)
	require.True(t, cfg.SkipVerify)
	require.True(t, cfg.DebugBuild)
	require.False(t, cfg.NoPath)
	require.Equal(t, "8.5", cfg.PHPVersion)
	require.Equal(t, "fork/dist", cfg.Repository)
}

// TestEnvironmentBadBool verifies unparsable boolean input is rejected.
func TestEnvironmentBadBool(t *testing.T) {
	t.Setenv(EnvSkipVerify, "maybe")

	_, err := Load("")
	require.Error(t, err)
}
