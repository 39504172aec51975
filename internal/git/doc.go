// Package git checks whether a plaintext input file is exposed to git.
//
// svault save -i <file> reads secrets from a file on disk. When that file
// sits inside a git work tree, svault warns if it is:
//   - tracked by git (should not be)
//   - missing from .gitignore (should be in it)
//
// These checks help users avoid accidentally committing unencrypted secrets.
package git
