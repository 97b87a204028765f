package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the inputs accepted by every setup operation.
// Values come from an optional YAML settings file, the environment
// (including a .env file in the working directory), and CLI flags,
// in increasing order of precedence.
type Config struct {
	// InstallDir is the absolute path of the managed installation tree.
	InstallDir string `yaml:"install_dir"`
	// Version is the release selector: "latest" or an explicit tag like "v0.6.0".
	Version string `yaml:"version"`
	// PHPVersion pins the embedded PHP version axis used in asset names (e.g. "8.4").
	// When empty, the asset is located by pattern-matching the release asset list.
	PHPVersion string `yaml:"php_version"`
	// Repository is the GitHub "owner/name" the releases are published under.
	Repository string `yaml:"repository"`
	// SkipVerify disables checksum verification and the manifest download entirely.
	SkipVerify bool `yaml:"skip_verify"`
	// DebugBuild selects the debug build variant of the runtime archive.
	DebugBuild bool `yaml:"debug_build"`
	// NoPath disables shell-profile PATH edits and management-binary placement.
	NoPath bool `yaml:"no_path"`
	// Timeout bounds every single network transfer.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for persisted setup settings.
	DefaultConfigFilename = "trueasync-setup.yaml"

	// DefaultVersionSelector resolves to the most recent published release.
	DefaultVersionSelector = "latest"

	// DefaultRepository hosts the prebuilt runtime releases.
	DefaultRepository = "trueasync/php-trueasync"

	// DefaultTimeout is generous because release archives are large.
	DefaultTimeout = 10 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// DefaultDirPermissions is used when creating installation directories.
	DefaultDirPermissions os.FileMode = 0o755
)

// Environment variable names recognized by Load.
const (
	EnvInstallDir = "INSTALL_DIR"
	EnvVersion    = "VERSION"
	EnvSkipVerify = "SKIP_VERIFY"
	EnvNoPath     = "NO_PATH"
	EnvDebugBuild = "DEBUG_BUILD"
	EnvPHPVersion = "PHP_VERSION"
	EnvRepository = "TRUEASYNC_REPO"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadRepository is returned when the repository is not "owner/name".
	errBadRepository = errors.New("repository must be in owner/name form")
)

// DefaultInstallDir returns the installation root used when INSTALL_DIR is not set.
func DefaultInstallDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".trueasync")
	}

	return filepath.Join(os.TempDir(), "trueasync")
}

// Load builds a Config from the optional YAML settings file at path and the
// environment. A missing file is only an error when the path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// No settings file, environment and defaults apply.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = applyEnvironment(cfg); err != nil {
		return nil, err
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings for formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.InstallDir == "" {
		cfg.InstallDir = DefaultInstallDir()
	}

	if abs, err := filepath.Abs(cfg.InstallDir); err == nil {
		cfg.InstallDir = abs
	}

	if cfg.Version == "" {
		cfg.Version = DefaultVersionSelector
	}

	if cfg.Repository == "" {
		cfg.Repository = DefaultRepository
	}

	owner, name, found := strings.Cut(cfg.Repository, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", errBadRepository, cfg.Repository)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return nil
}

// applyEnvironment overlays recognized environment variables onto cfg.
// A .env file in the working directory is loaded first if present.
func applyEnvironment(cfg *Config) error {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv(EnvInstallDir)); v != "" {
		cfg.InstallDir = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvVersion)); v != "" {
		cfg.Version = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvPHPVersion)); v != "" {
		cfg.PHPVersion = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvRepository)); v != "" {
		cfg.Repository = v
	}

	for _, entry := range []struct {
		name   string
		target *bool
	}{
		{EnvSkipVerify, &cfg.SkipVerify},
		{EnvNoPath, &cfg.NoPath},
		{EnvDebugBuild, &cfg.DebugBuild},
	} {
		raw := strings.TrimSpace(os.Getenv(entry.name))
		if raw == "" {
			continue
		}

		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", entry.name, err)
		}

		*entry.target = parsed
	}

	return nil
}
