// Package uninstaller removes a managed installation: shell-profile PATH
// entries first, then the installation directory, retrying removal and
// terminating processes started from it when files are held open.
package uninstaller
