package platform

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var errUnsafeArchivePath = errors.New("archive entry path escapes destination")

// extractTarGz unpacks a .tar.gz archive into destDir.
// The single top-level directory component of each entry is stripped.
func extractTarGz(ctx context.Context, archivePath, destDir string) error {
	file, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}

	defer func() {
		_ = gzReader.Close()
	}()

	tarReader := tar.NewReader(gzReader)

	for {
		if err = ctx.Err(); err != nil {
			return err
		}

		var header *tar.Header

		header, err = tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}

		target, ok, pathErr := stripTarget(destDir, header.Name)
		if pathErr != nil {
			return pathErr
		}

		if !ok {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(target, os.FileMode(header.Mode).Perm()|0o700); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}
		case tar.TypeSymlink:
			if err = restoreSymlink(destDir, header.Linkname, target); err != nil {
				return err
			}
		case tar.TypeReg:
			if err = writeFileFrom(tarReader, target, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}
		default:
			// Other entry types (devices, fifos) never appear in runtime archives.
		}
	}
}

// extractZip unpacks a .zip archive into destDir with the same
// top-level strip semantics as extractTarGz.
func extractZip(ctx context.Context, archivePath, destDir string) error {
	reader, err := zip.OpenReader(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = reader.Close()
	}()

	for _, entry := range reader.File {
		if err = ctx.Err(); err != nil {
			return err
		}

		target, ok, pathErr := stripTarget(destDir, entry.Name)
		if pathErr != nil {
			return pathErr
		}

		if !ok {
			continue
		}

		if entry.FileInfo().IsDir() {
			if err = os.MkdirAll(target, entry.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			continue
		}

		var contents io.ReadCloser

		contents, err = entry.Open()
		if err != nil {
			return fmt.Errorf("open archive entry: %w", err)
		}

		err = writeFileFrom(contents, target, entry.Mode().Perm())

		_ = contents.Close()

		if err != nil {
			return err
		}
	}

	return nil
}

// stripTarget drops the first path component of an archive entry name
// and resolves the remainder under destDir. ok is false for the
// top-level directory itself.
func stripTarget(destDir, name string) (target string, ok bool, err error) {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")

	_, remainder, found := strings.Cut(name, "/")
	if !found || remainder == "" {
		return "", false, nil
	}

	target = filepath.Join(destDir, filepath.FromSlash(remainder))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", false, fmt.Errorf("%w: %s", errUnsafeArchivePath, name)
	}

	return target, true, nil
}

// writeFileFrom streams an archive entry to target, creating parent directories.
func writeFileFrom(contents io.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	if mode == 0 {
		mode = 0o644
	}

	out, err := os.OpenFile(filepath.Clean(target), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err = io.Copy(out, contents); err != nil {
		_ = out.Close()

		return fmt.Errorf("write file: %w", err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	return nil
}

// restoreSymlink recreates a symlink entry, replacing a stale one if present.
// The link destination must resolve inside destDir; entries written through
// an escaping link would bypass the path checks on regular entries.
func restoreSymlink(destDir, linkname, target string) error {
	resolved := linkname
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(target), resolved)
	}

	if !strings.HasPrefix(filepath.Clean(resolved), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("%w: %s -> %s", errUnsafeArchivePath, target, linkname)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	if _, err := os.Lstat(target); err == nil {
		_ = os.Remove(target)
	}

	if err := os.Symlink(linkname, target); err != nil {
		return fmt.Errorf("restore symlink: %w", err)
	}

	return nil
}
