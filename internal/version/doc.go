// Package version exposes build metadata injected via ldflags and a
// cobra helper to print it.
package version
