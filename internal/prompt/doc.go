// Package prompt reads passwords and confirmations from the terminal.
package prompt
