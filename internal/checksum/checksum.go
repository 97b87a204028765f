package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// manifestParts is the expected number of fields in a manifest line.
const manifestParts = 2

// ErrMismatch is returned when a computed digest differs from the published
// one. A mismatch is fatal; a *missing* manifest entry is only a warning,
// which is the caller's distinction to make.
var ErrMismatch = errors.New("checksum mismatch")

// ParseManifest parses sha256sum-compatible content ("<hex>  <filename>",
// with an optional "*" binary-mode marker before the filename) into a map
// from filename to lowercase hex digest. Malformed lines are skipped.
func ParseManifest(content string) map[string]string {
	result := make(map[string]string)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, "  ", manifestParts)
		if len(parts) != manifestParts {
			continue
		}

		digest := strings.ToLower(strings.TrimSpace(parts[0]))
		filename := strings.TrimPrefix(strings.TrimSpace(parts[1]), "*")

		if digest != "" && filename != "" {
			result[filename] = digest
		}
	}

	return result
}

// FileDigest returns the lowercase hex SHA-256 of the file content.
func FileDigest(path string) (string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	hasher := sha256.New()
	if _, err = io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifyFile compares the file's SHA-256 against the expected hex digest,
// case-insensitively. On mismatch the error carries both digests.
func VerifyFile(path, expectedHex string) error {
	actual, err := FileDigest(path)
	if err != nil {
		return err
	}

	if !strings.EqualFold(actual, expectedHex) {
		return fmt.Errorf("%w: expected %s, actual %s", ErrMismatch, expectedHex, actual)
	}

	return nil
}
