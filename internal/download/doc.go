// Package download fetches release artifacts into a scoped scratch
// directory that is guaranteed to be removed on every exit path.
package download
