package platform

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTarGz produces a .tar.gz with all entries under a single top-level directory.
func writeTarGz(t *testing.T, topDir string, files map[string]string) string {
	t.Helper()

	var buf bytes.Buffer

	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)

	require.NoError(t, tarWriter.WriteHeader(&tar.Header{
		Name:     topDir + "/",
		Typeflag: tar.TypeDir,
		Mode:     0o755,
	}))

	for name, contents := range files {
		require.NoError(t, tarWriter.WriteHeader(&tar.Header{
			Name:     topDir + "/" + name,
			Typeflag: tar.TypeReg,
			Mode:     0o755,
			Size:     int64(len(contents)),
		}))

		_, err := tarWriter.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, tarWriter.Close())
	require.NoError(t, gzWriter.Close())

	path := filepath.Join(t.TempDir(), "archive.tar.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

// writeZip produces a .zip with all entries under a single top-level directory.
func writeZip(t *testing.T, topDir string, files map[string]string) string {
	t.Helper()

	var buf bytes.Buffer

	zipWriter := zip.NewWriter(&buf)

	for name, contents := range files {
		entry, err := zipWriter.Create(topDir + "/" + name)
		require.NoError(t, err)

		_, err = entry.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, zipWriter.Close())

	path := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

// TestExtractTarGz_StripsTopLevel verifies contents land directly under destDir.
func TestExtractTarGz_StripsTopLevel(t *testing.T) {
	t.Parallel()

	archive := writeTarGz(t, "trueasync-0.6.0-linux-x86_64", map[string]string{
		"bin/php":     "#!/bin/sh\n",
		"lib/php.ini": "memory_limit=-1\n",
	})

	dest := t.TempDir()
	require.NoError(t, extractTarGz(context.Background(), archive, dest))

	contents, err := os.ReadFile(filepath.Join(dest, "bin", "php"))
	require.NoError(t, err)
	require.Equal(t, "#!/bin/sh\n", string(contents))

	_, err = os.Stat(filepath.Join(dest, "lib", "php.ini"))
	require.NoError(t, err)

	// Top-level directory itself must not reappear under dest.
	_, err = os.Stat(filepath.Join(dest, "trueasync-0.6.0-linux-x86_64"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestExtractZip_StripsTopLevel mirrors the tar.gz strip semantics for zip archives.
func TestExtractZip_StripsTopLevel(t *testing.T) {
	t.Parallel()

	archive := writeZip(t, "trueasync-0.6.0-windows-x64", map[string]string{
		"php.exe":     "MZ",
		"ext/notes.md": "extensions\n",
	})

	dest := t.TempDir()
	require.NoError(t, extractZip(context.Background(), archive, dest))

	contents, err := os.ReadFile(filepath.Join(dest, "php.exe"))
	require.NoError(t, err)
	require.Equal(t, "MZ", string(contents))

	_, err = os.Stat(filepath.Join(dest, "ext", "notes.md"))
	require.NoError(t, err)
}

// writeTarGzWithLink produces a .tar.gz holding one regular file and one symlink.
func writeTarGzWithLink(t *testing.T, topDir, linkName, linkTarget string) string {
	t.Helper()

	var buf bytes.Buffer

	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)

	contents := "#!/bin/sh\n"
	require.NoError(t, tarWriter.WriteHeader(&tar.Header{
		Name:     topDir + "/bin/php",
		Typeflag: tar.TypeReg,
		Mode:     0o755,
		Size:     int64(len(contents)),
	}))

	_, err := tarWriter.Write([]byte(contents))
	require.NoError(t, err)

	require.NoError(t, tarWriter.WriteHeader(&tar.Header{
		Name:     topDir + "/" + linkName,
		Typeflag: tar.TypeSymlink,
		Linkname: linkTarget,
	}))

	require.NoError(t, tarWriter.Close())
	require.NoError(t, gzWriter.Close())

	path := filepath.Join(t.TempDir(), "archive.tar.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

// TestExtractTarGz_RestoresSymlink keeps relative links pointing inside dest.
func TestExtractTarGz_RestoresSymlink(t *testing.T) {
	t.Parallel()

	archive := writeTarGzWithLink(t, "top", "bin/php8", "php")

	dest := t.TempDir()
	require.NoError(t, extractTarGz(context.Background(), archive, dest))

	linkTarget, err := os.Readlink(filepath.Join(dest, "bin", "php8"))
	require.NoError(t, err)
	require.Equal(t, "php", linkTarget)
}

// TestExtract_RejectsEscapingSymlink refuses links resolving outside dest.
func TestExtract_RejectsEscapingSymlink(t *testing.T) {
	t.Parallel()

	archive := writeTarGzWithLink(t, "top", "bin/evil", "../../../outside")

	err := extractTarGz(context.Background(), archive, t.TempDir())
	require.ErrorIs(t, err, errUnsafeArchivePath)
}

// TestExtract_RejectsAbsoluteSymlink refuses absolute link destinations.
func TestExtract_RejectsAbsoluteSymlink(t *testing.T) {
	t.Parallel()

	archive := writeTarGzWithLink(t, "top", "bin/evil", "/etc/passwd")

	err := extractTarGz(context.Background(), archive, t.TempDir())
	require.ErrorIs(t, err, errUnsafeArchivePath)
}

// TestExtract_RejectsEscapingPaths ensures entries resolving outside dest fail.
func TestExtract_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	archive := writeTarGz(t, "top", map[string]string{
		"../../escape.txt": "nope",
	})

	err := extractTarGz(context.Background(), archive, t.TempDir())
	require.ErrorIs(t, err, errUnsafeArchivePath)
}
