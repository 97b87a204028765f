package release

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trueasync/trueasync-setup/internal/github"
	"github.com/trueasync/trueasync-setup/internal/platform"
)

func linuxPlatform(t *testing.T) platform.Platform {
	t.Helper()

	p, err := platform.ForHost("linux", "amd64")
	require.NoError(t, err)

	return p
}

// TestAssetName_Deterministic covers the template strategy with a pinned PHP axis.
func TestAssetName_Deterministic(t *testing.T) {
	t.Parallel()

	p := linuxPlatform(t)

	name, ok := NewLocator(p, false, "8.4").AssetName("v0.6.0")
	require.True(t, ok)
	require.Equal(t, "trueasync-0.6.0-php8.4-linux-x86_64.tar.gz", name)

	name, ok = NewLocator(p, true, "8.4").AssetName("v0.6.0")
	require.True(t, ok)
	require.Equal(t, "trueasync-0.6.0-php8.4-linux-x86_64-debug.tar.gz", name)

	// Without the axis the name cannot be constructed.
	_, ok = NewLocator(p, false, "").AssetName("v0.6.0")
	require.False(t, ok)
}

// TestSelect_DebugVariant ensures a debug install always picks the
// debug-marked asset, never the plain one.
func TestSelect_DebugVariant(t *testing.T) {
	t.Parallel()

	assets := []github.Asset{
		{Name: "trueasync-0.6.0-php8.4-linux-x86_64.tar.gz"},
		{Name: "trueasync-0.6.0-php8.4-linux-x86_64-debug.tar.gz"},
	}

	asset, err := NewLocator(linuxPlatform(t), true, "").Select(assets)
	require.NoError(t, err)
	require.Equal(t, "trueasync-0.6.0-php8.4-linux-x86_64-debug.tar.gz", asset.Name)
}

// TestSelect_ReleaseExcludesDebugMarker ensures the release variant skips
// debug-marked assets even when they match platform tokens.
func TestSelect_ReleaseExcludesDebugMarker(t *testing.T) {
	t.Parallel()

	assets := []github.Asset{
		{Name: "trueasync-0.6.0-php8.4-linux-x86_64-debug.tar.gz"},
		{Name: "trueasync-0.6.0-php8.4-linux-x86_64.tar.gz"},
	}

	asset, err := NewLocator(linuxPlatform(t), false, "").Select(assets)
	require.NoError(t, err)
	require.Equal(t, "trueasync-0.6.0-php8.4-linux-x86_64.tar.gz", asset.Name)
}

// TestSelect_FirstMatchWins checks the tie-break across multiple candidates.
func TestSelect_FirstMatchWins(t *testing.T) {
	t.Parallel()

	assets := []github.Asset{
		{Name: "trueasync-0.6.0-php8.3-linux-x86_64.tar.gz"},
		{Name: "trueasync-0.6.0-php8.4-linux-x86_64.tar.gz"},
	}

	asset, err := NewLocator(linuxPlatform(t), false, "").Select(assets)
	require.NoError(t, err)
	require.Equal(t, "trueasync-0.6.0-php8.3-linux-x86_64.tar.gz", asset.Name)
}

// TestSelect_NoMatch returns ErrAssetNotFound naming platform and variant.
func TestSelect_NoMatch(t *testing.T) {
	t.Parallel()

	assets := []github.Asset{
		{Name: "trueasync-0.6.0-php8.4-macos-aarch64.tar.gz"},
		{Name: "sha256sums.txt"},
	}

	_, err := NewLocator(linuxPlatform(t), false, "").Select(assets)
	require.ErrorIs(t, err, ErrAssetNotFound)
	require.ErrorContains(t, err, "linux-x86_64")
	require.ErrorContains(t, err, "PHP_VERSION")
}

// TestDownloadURL composes the conventional release asset URL.
func TestDownloadURL(t *testing.T) {
	t.Parallel()

	url := DownloadURL("trueasync/php-trueasync", "v0.6.0", "sha256sums.txt")
	require.Equal(t,
		"https://github.com/trueasync/php-trueasync/releases/download/v0.6.0/sha256sums.txt",
		url)
}
