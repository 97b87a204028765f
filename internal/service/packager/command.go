package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trueasync/trueasync-setup/internal/checksum"
	"github.com/trueasync/trueasync-setup/internal/logger"
	"github.com/trueasync/trueasync-setup/internal/release"
)

// manifestPermissions for the generated manifest; it ships publicly.
const manifestPermissions = 0o644

// ErrNoArtifacts is returned when the artifacts directory holds nothing
// to hash, which almost always means the wrong directory was passed.
var ErrNoArtifacts = errors.New("no artifacts found")

// Options are inputs accepted by the manifest generator.
type Options struct {
	// ArtifactsDir holds the release archives to hash.
	ArtifactsDir string
	// OutputPath overrides the manifest location; defaults to
	// sha256sums.txt inside ArtifactsDir.
	OutputPath string
}

// Run hashes every regular file in the artifacts directory and writes a
// "digest␠␠filename" manifest in the format the install pipeline parses.
// Entries are sorted by filename so regenerated manifests diff cleanly.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "checksums")

	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = "."
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(artifactsDir, release.ChecksumManifestName)
	}

	entries, err := os.ReadDir(artifactsDir)
	if err != nil {
		return fmt.Errorf("read artifacts directory: %w", err)
	}

	var manifest strings.Builder

	hashed := 0

	for _, entry := range entries {
		if !entry.Type().IsRegular() || entry.Name() == filepath.Base(outputPath) {
			continue
		}

		digest, err := checksum.FileDigest(filepath.Join(artifactsDir, entry.Name()))
		if err != nil {
			return err
		}

		manifest.WriteString(digest + "  " + entry.Name() + "\n")
		hashed++

		logger.InfoKV(ctx, "Hashed artifact", "name", entry.Name(), "sha256", digest)
	}

	if hashed == 0 {
		return fmt.Errorf("%w in %s", ErrNoArtifacts, artifactsDir)
	}

	if err = os.WriteFile(outputPath, []byte(manifest.String()), manifestPermissions); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	logger.InfoKV(ctx, "Wrote checksum manifest", "path", outputPath, "artifacts", hashed)

	return nil
}
