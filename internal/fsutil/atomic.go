package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
)

const DirPermSecure = 0700 // Directory: owner rwx only

// rename is swapped out in tests to simulate a crash before commit.
var rename = os.Rename

// WriteFileAtomic replaces path with data so that readers observe either the
// previous file (or its absence) or the complete new file, never a partial
// write. Missing parent directories are created.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermSecure); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Same directory as the target, so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tmp.Close() // may already be closed
		if rerr := os.Remove(tmpPath); rerr != nil && !os.IsNotExist(rerr) {
			err = multierror.Append(err, fmt.Errorf("failed to remove temp file: %w", rerr))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	committed = true

	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry so the rename survives power loss.
// Not every platform supports fsync on directories; failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
