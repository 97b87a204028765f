// Package release resolves version selectors into concrete tags and
// locates the platform/variant-specific archive within a release.
package release
