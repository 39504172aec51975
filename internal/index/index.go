package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/illarion/svault/internal/crypto"
	"github.com/illarion/svault/internal/fsutil"
)

// Bucket names
var (
	ConfigBucket = []byte("config") // schema version, timestamps
	VaultsBucket = []byte("vaults") // absolute vault path -> Entry (JSON)
)

// Config keys
var (
	ConfigVersion = []byte("version")
	ConfigCreated = []byte("created")
)

const schemaVersion = "1"

var (
	ErrNotInitialized = errors.New("index not initialized")
	ErrNotFound       = errors.New("vault not in index")
)

// Entry is the public record kept for every vault saved through the CLI.
// It never holds secret material.
type Entry struct {
	Path     string        `json:"path"`
	ID       string        `json:"id"`
	Size     int64         `json:"size"`
	Codec    string        `json:"codec,omitempty"`
	Params   crypto.Params `json:"params"`
	Created  time.Time     `json:"created"`
	Modified time.Time     `json:"modified"`
}

// Index is a BBolt-backed registry of known vault files.
type Index struct {
	db *bolt.DB
}

// lockWait bounds how long Open waits for another svault process to release
// the database file lock.
var lockWait = 3 * time.Second

// Open opens or creates the index database at path. Missing parent
// directories are created. While another process holds the database, Open
// retries with exponential backoff for up to lockWait.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirPermSecure); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	var db *bolt.DB
	open := func() error {
		var err error
		db, err = bolt.Open(path, 0600, &bolt.Options{Timeout: 100 * time.Millisecond})
		if err != nil && !errors.Is(err, bolt.ErrTimeout) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxElapsedTime = lockWait
	if err := backoff.Retry(open, b); err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	return &Index{db: db}, nil
}

// Path returns the database file path.
func (x *Index) Path() string {
	return x.db.Path()
}

// Close closes the database
func (x *Index) Close() error {
	return x.db.Close()
}

// Initialize creates the bucket structure. It is safe to call on an already
// initialized index; the creation time is kept.
func (x *Index) Initialize() error {
	return x.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, VaultsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if err := config.Put(ConfigVersion, []byte(schemaVersion)); err != nil {
			return err
		}

		if config.Get(ConfigCreated) != nil {
			return nil
		}
		created, _ := time.Now().MarshalBinary()
		return config.Put(ConfigCreated, created)
	})
}

// IsInitialized checks if the database has been initialized
func (x *Index) IsInitialized() (bool, error) {
	var initialized bool
	err := x.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// Created returns the time the index was first initialized.
func (x *Index) Created() (time.Time, error) {
	var created time.Time
	err := x.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigCreated)
		if data == nil {
			return ErrNotInitialized
		}
		return created.UnmarshalBinary(data)
	})
	return created, err
}

// Record inserts or updates the entry for a vault after a successful save.
// ID and Created are preserved from any existing entry, or generated for a
// new one.
func (x *Index) Record(e Entry) (*Entry, error) {
	err := x.db.Update(func(tx *bolt.Tx) error {
		vaults := tx.Bucket(VaultsBucket)
		if vaults == nil {
			return ErrNotInitialized
		}

		now := time.Now().UTC()
		if data := vaults.Get([]byte(e.Path)); data != nil {
			var prev Entry
			if err := json.Unmarshal(data, &prev); err != nil {
				return fmt.Errorf("corrupt index entry for %s: %w", e.Path, err)
			}
			e.ID = prev.ID
			e.Created = prev.Created
		}
		if e.ID == "" {
			id, err := newID()
			if err != nil {
				return err
			}
			e.ID = id
		}
		if e.Created.IsZero() {
			e.Created = now
		}
		e.Modified = now

		return putEntry(vaults, e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get returns the entry for path, or ErrNotFound.
func (x *Index) Get(path string) (*Entry, error) {
	var entry *Entry
	err := x.db.View(func(tx *bolt.Tx) error {
		vaults := tx.Bucket(VaultsBucket)
		if vaults == nil {
			return ErrNotInitialized
		}
		data := vaults.Get([]byte(path))
		if data == nil {
			return ErrNotFound
		}
		entry = &Entry{}
		return json.Unmarshal(data, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns all entries ordered by path.
func (x *Index) List() ([]Entry, error) {
	var entries []Entry
	err := x.db.View(func(tx *bolt.Tx) error {
		vaults := tx.Bucket(VaultsBucket)
		if vaults == nil {
			return nil
		}
		return vaults.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt index entry for %s: %w", k, err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, err
}

// Remove deletes the entry for path. Removing an unknown path returns
// ErrNotFound.
func (x *Index) Remove(path string) (*Entry, error) {
	var removed *Entry
	err := x.db.Update(func(tx *bolt.Tx) error {
		vaults := tx.Bucket(VaultsBucket)
		if vaults == nil {
			return ErrNotInitialized
		}
		data := vaults.Get([]byte(path))
		if data == nil {
			return ErrNotFound
		}
		removed = &Entry{}
		if err := json.Unmarshal(data, removed); err != nil {
			return err
		}
		return vaults.Delete([]byte(path))
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// VaultID returns the ID for path, creating a bare entry with a fresh ID when
// the vault is not yet known. The ID keys the vault's password in the OS
// keyring.
func (x *Index) VaultID(path string) (string, error) {
	entry, err := x.Get(path)
	if err == nil {
		return entry.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	id, err := newID()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	err = x.db.Update(func(tx *bolt.Tx) error {
		vaults := tx.Bucket(VaultsBucket)
		if vaults == nil {
			return ErrNotInitialized
		}
		// Lost a race with another writer; keep theirs.
		if data := vaults.Get([]byte(path)); data != nil {
			var existing Entry
			if err := json.Unmarshal(data, &existing); err != nil {
				return err
			}
			id = existing.ID
			return nil
		}
		return putEntry(vaults, Entry{Path: path, ID: id, Created: now, Modified: now})
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after forgetting vaults to reclaim disk space.
func (x *Index) Compact() error {
	srcPath := x.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	if err := bolt.Compact(dst, x.db, 0); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := x.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	x.db, err = bolt.Open(srcPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}

func putEntry(b *bolt.Bucket, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.Put([]byte(e.Path), data)
}

func newID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate vault ID: %w", err)
	}
	return id.String(), nil
}
