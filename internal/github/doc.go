// Package github is a thin read-only consumer of the GitHub releases API,
// exposing just the tag names and asset lists the installer needs.
package github
