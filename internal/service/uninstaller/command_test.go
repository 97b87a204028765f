package uninstaller

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trueasync/trueasync-setup/internal/config"
	"github.com/trueasync/trueasync-setup/internal/profile"
	"github.com/trueasync/trueasync-setup/internal/repository/record"
)

func testConfig(t *testing.T, installDir string) *config.Config {
	t.Helper()

	return &config.Config{
		InstallDir: installDir,
		Version:    "latest",
		Repository: config.DefaultRepository,
		NoPath:     true,
		Timeout:    time.Minute,
	}
}

func TestRun_RemovesInstallation(t *testing.T) {
	t.Parallel()

	installDir := filepath.Join(t.TempDir(), "runtime")
	require.NoError(t, os.MkdirAll(filepath.Join(installDir, "bin"), 0o755))
	require.NoError(t,
		record.NewFileRepository(installDir).Save(context.Background(), "v0.6.0"))

	profileFile := filepath.Join(t.TempDir(), ".bashrc")

	_, err := profile.AppendPathEntry(profileFile, installDir)
	require.NoError(t, err)

	err = Run(context.Background(), &Options{
		Config:       testConfig(t, installDir),
		ProfileFiles: []string{profileFile},
	})
	require.NoError(t, err)

	_, err = os.Stat(installDir)
	require.ErrorIs(t, err, os.ErrNotExist)

	contents, err := os.ReadFile(profileFile)
	require.NoError(t, err)
	require.NotContains(t, string(contents), installDir)
}

func TestRun_MissingInstallationIsIdempotent(t *testing.T) {
	t.Parallel()

	installDir := filepath.Join(t.TempDir(), "runtime")

	opts := &Options{Config: testConfig(t, installDir)}

	require.NoError(t, Run(context.Background(), opts))
	require.NoError(t, Run(context.Background(), opts))
}

func TestRun_CleansProfilesWhenDirectoryAlreadyGone(t *testing.T) {
	t.Parallel()

	installDir := filepath.Join(t.TempDir(), "runtime")
	profileFile := filepath.Join(t.TempDir(), ".zshrc")

	_, err := profile.AppendPathEntry(profileFile, installDir)
	require.NoError(t, err)

	err = Run(context.Background(), &Options{
		Config:       testConfig(t, installDir),
		ProfileFiles: []string{profileFile},
	})
	require.NoError(t, err)

	contents, err := os.ReadFile(profileFile)
	require.NoError(t, err)
	require.NotContains(t, string(contents), installDir)
}

func TestSelfInside(t *testing.T) {
	t.Parallel()

	executable, err := os.Executable()
	require.NoError(t, err)

	if resolved, resolveErr := filepath.EvalSymlinks(executable); resolveErr == nil {
		executable = resolved
	}

	require.True(t, selfInside(filepath.Dir(executable)))
	require.False(t, selfInside(filepath.Join(t.TempDir(), "elsewhere")))
}
