// Package fsutil holds the filesystem helpers svault needs: crash-safe file
// replacement and home directory expansion.
package fsutil
