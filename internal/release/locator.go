package release

import (
	"errors"
	"fmt"
	"strings"

	"github.com/trueasync/trueasync-setup/internal/github"
	"github.com/trueasync/trueasync-setup/internal/platform"
)

const (
	// ProductName prefixes every runtime archive.
	ProductName = "trueasync"

	// ChecksumManifestName is the sha256sum-format manifest published
	// alongside every release.
	ChecksumManifestName = "sha256sums.txt"

	// debugMarker tags debug-variant archives in asset names.
	debugMarker = "debug"
)

// ErrAssetNotFound is returned when no release asset matches the host
// platform and build variant.
var ErrAssetNotFound = errors.New("no matching release asset")

// Locator determines which archive of a release to fetch for the host
// platform and variant.
type Locator struct {
	platform   platform.Platform
	debug      bool
	phpVersion string
}

// NewLocator builds a locator. phpVersion may be empty, in which case
// assets are located by pattern-matching the remote asset list.
func NewLocator(p platform.Platform, debug bool, phpVersion string) *Locator {
	return &Locator{
		platform:   p,
		debug:      debug,
		phpVersion: phpVersion,
	}
}

// AssetName constructs the archive name deterministically from the known
// template. ok is false when the PHP version axis is not pinned, because
// servers embed it in filenames and it cannot be guessed.
func (l *Locator) AssetName(tag string) (name string, ok bool) {
	if l.phpVersion == "" {
		return "", false
	}

	name = fmt.Sprintf("%s-%s-php%s-%s",
		ProductName, strings.TrimPrefix(tag, "v"), l.phpVersion, l.platform.Key())
	if l.debug {
		name += "-" + debugMarker
	}

	return name + "." + l.platform.ArchiveExt(), true
}

// Select pattern-matches the release asset list by platform and variant
// tokens. The first match wins. For the release (non-debug) variant any
// asset carrying the debug marker is excluded even if it would otherwise
// match; this keeps a release install from ever picking a debug build.
func (l *Locator) Select(assets []github.Asset) (github.Asset, error) {
	suffix := "." + l.platform.ArchiveExt()

	for _, asset := range assets {
		name := asset.Name
		if !strings.HasPrefix(name, ProductName+"-") || !strings.HasSuffix(name, suffix) {
			continue
		}

		if !strings.Contains(name, l.platform.Key()) {
			continue
		}

		if l.debug != strings.Contains(name, debugMarker) {
			continue
		}

		return asset, nil
	}

	variant := "release"
	if l.debug {
		variant = debugMarker
	}

	return github.Asset{}, fmt.Errorf(
		"%w for platform %s (variant %s); set PHP_VERSION to pin the exact asset name",
		ErrAssetNotFound, l.platform.Key(), variant)
}

// DownloadURL composes the direct download URL of a release asset, used
// when the asset name is constructed without consulting the asset list.
func DownloadURL(repository, tag, filename string) string {
	return fmt.Sprintf("https://github.com/%s/releases/download/%s/%s",
		repository, tag, filename)
}
