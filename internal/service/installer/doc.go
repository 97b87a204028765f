// Package installer implements the end-to-end installation pipeline:
// resolve the requested release, download and verify its archive, extract
// into a staging directory next to the target, atomically swap the
// directories, and record what was installed. The target directory is
// never touched until a fully verified staged copy exists.
package installer
