package download

import (
	"fmt"
	"os"
)

// NewScratchDir creates a private scratch directory for one invocation.
// The returned cleanup must be deferred immediately by the caller so the
// directory is removed on every exit path, including interruption.
func NewScratchDir() (dir string, cleanup func(), err error) {
	dir, err = os.MkdirTemp("", "trueasync-setup-")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch directory: %w", err)
	}

	cleanup = func() {
		_ = os.RemoveAll(dir)
	}

	return dir, cleanup, nil
}
