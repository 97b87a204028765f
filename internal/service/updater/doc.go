// Package updater decides whether an installation needs to change.
// It compares the recorded tag against the resolved selector and delegates
// to the install pipeline only when they differ, so a current installation
// is never touched.
package updater
