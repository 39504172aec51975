// Package textdiff compares a vault's decrypted document with a local file
// for svault diff. Diffs are line based (github.com/sergi/go-diff).
package textdiff
