// Package storage loads files served by handlers.
//
// LoadBytes and LoadString read a file in one call. Dir resolves names below
// a root directory and refuses paths that would leave it. Cache keeps
// contents in memory and uses fsnotify to drop entries whose files change.
package storage
