// Package config defines the settings shared by the setup binaries and
// provides helpers to load, validate and save them.
//
// Settings are layered: YAML file, then environment (with optional .env),
// then CLI flags applied by the command layer. A zero-argument invocation
// always succeeds because every field has a documented default.
package config
