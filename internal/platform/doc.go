// Package platform resolves the host OS/architecture into the normalized
// key used in asset names and provides the per-OS-family capabilities of
// the install pipeline: archive format, extraction with top-level strip,
// and replacement of a possibly locked installation directory.
package platform
