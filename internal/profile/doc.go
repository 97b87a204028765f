// Package profile is the explicit collaborator for shell-profile PATH
// edits. It owns a marker-delimited block in a static list of profile
// files and can add or remove it without touching anything else.
package profile
