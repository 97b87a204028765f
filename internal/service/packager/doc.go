// Package packager generates the checksum manifest published alongside
// release archives. It is the producer half of the integrity gate the
// install pipeline verifies against.
package packager
