// Package record persists the installation record: a hidden marker file
// whose whole content is the installed release tag.
package record
