package version

import (
	"fmt"
	"runtime/debug"
)

//nolint:gochecknoglobals // Overridden via -ldflags at release build time.
var (
	// Version is the tool's own release version, distinct from the runtime
	// versions it installs.
	Version = "0.1.0"
	// Commit is the short revision the binary was built from.
	Commit = ""
	// BuildTime is the UTC timestamp of the build.
	BuildTime = ""
)

// Short returns just the version number.
func Short() string {
	return Version
}

// Full returns the version with revision and build time when known.
// Module-aware builds fill the revision from VCS stamping even when
// ldflags were not passed.
func Full() string {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}

	s := Version

	if commit != "" {
		s = fmt.Sprintf("%s (%s)", s, commit)
	}

	if BuildTime != "" {
		s = fmt.Sprintf("%s, built %s", s, BuildTime)
	}

	return s
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return setting.Value[:7]
		}
	}

	return ""
}
