package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestToFileAndToString covers the happy path for both transfer modes.
func TestToFileAndToString(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	t.Cleanup(server.Close)

	d := NewDownloader(0)

	dest := filepath.Join(t.TempDir(), "artifact.bin")
	require.NoError(t, d.ToFile(context.Background(), server.URL, dest))

	contents, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "payload", string(contents))

	body, err := d.ToString(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "payload", body)
}

// TestBadStatus maps non-200 responses to ErrDownload.
func TestBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	d := NewDownloader(0)

	err := d.ToFile(context.Background(), server.URL, filepath.Join(t.TempDir(), "x"))
	require.ErrorIs(t, err, ErrDownload)
	require.NotErrorIs(t, err, ErrNotFound)

	_, err = d.ToString(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrDownload)
}

// TestNotFound distinguishes an absent remote file from other failures.
func TestNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	d := NewDownloader(0)

	_, err := d.ToString(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, ErrDownload)
}

// TestScratchDirCleanup ensures the scratch directory disappears after cleanup.
func TestScratchDirCleanup(t *testing.T) {
	t.Parallel()

	dir, cleanup, err := NewScratchDir()
	require.NoError(t, err)
	require.DirExists(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "leftover"), []byte("x"), 0o600))

	cleanup()

	_, err = os.Stat(dir)
	require.ErrorIs(t, err, os.ErrNotExist)
}
