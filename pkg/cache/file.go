package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// entryExt marks cache entry files; Clear and Prune touch nothing else.
const entryExt = ".entry"

// headerLen is the size of the expiry prefix in each entry file.
const headerLen = 8

// FileCache stores entries as files under dir, sharded into 256
// subdirectories by key hash. Each file is an 8-byte big-endian expiry
// (unix nanoseconds, zero for none) followed by the raw value.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates dir if needed and returns a cache rooted there.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Get returns the value for key. Truncated and expired entries are removed
// and reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	data, ok := c.decode(raw)
	if !ok {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set writes the entry through a temp file so readers never see a partial
// value.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	raw := make([]byte, headerLen+len(data))
	if ttl > 0 {
		binary.BigEndian.PutUint64(raw, uint64(c.now().Add(ttl).UnixNano()))
	}
	copy(raw[headerLen:], data)

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// FileStats summarizes the entries on disk.
type FileStats struct {
	Entries int
	Expired int
	Bytes   int64
}

// Stats walks the cache and counts entries, expired entries and their
// total size on disk.
func (c *FileCache) Stats() (FileStats, error) {
	var st FileStats
	err := c.walk(func(path string, info fs.FileInfo) error {
		st.Entries++
		st.Bytes += info.Size()
		if c.expired(path) {
			st.Expired++
		}
		return nil
	})
	return st, err
}

// Clear removes every entry and returns how many were removed.
func (c *FileCache) Clear() (int, error) {
	return c.removeIf(func(string) bool { return true })
}

// Prune removes expired and unreadable entries and returns how many were
// removed.
func (c *FileCache) Prune() (int, error) {
	return c.removeIf(c.expired)
}

func (c *FileCache) removeIf(match func(path string) bool) (int, error) {
	n := 0
	err := c.walk(func(path string, _ fs.FileInfo) error {
		if !match(path) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

// walk visits every entry file. A missing cache directory is empty.
func (c *FileCache) walk(fn func(path string, info fs.FileInfo) error) error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != entryExt {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(path, info)
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *FileCache) expired(path string) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	_, ok := c.decode(raw)
	return !ok
}

func (c *FileCache) decode(raw []byte) ([]byte, bool) {
	if len(raw) < headerLen {
		return nil, false
	}
	if exp := int64(binary.BigEndian.Uint64(raw)); exp != 0 && c.now().UnixNano() > exp {
		return nil, false
	}
	return raw[headerLen:], true
}

func (c *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, name[:2], name[2:]+entryExt)
}

var _ Cache = (*FileCache)(nil)
