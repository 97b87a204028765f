// Package checksum parses sha256sum-format manifests and verifies
// downloaded archives against them before anything is installed.
package checksum
