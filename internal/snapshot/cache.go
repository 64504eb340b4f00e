// Package snapshot caches the state rebuilt from a generated output file, so
// an unchanged output does not have to be re-scanned on the next run.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"annogen/internal/store"
)

// Bump when the payload layout or the rendered output format changes.
const schemaVersion uint16 = 1

// Digest is the SHA-256 of an output file's bytes.
type Digest [32]byte

// Key hashes the bytes of an output file.
func Key(content []byte) Digest {
	return sha256.Sum256(content)
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Cache stores state images on disk, one file per output digest.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type payload struct {
	Schema uint16
	Key    Digest
	Image  store.Image
}

// Open returns a cache rooted at dir. An empty dir selects
// $XDG_CACHE_HOME/annogen (or ~/.cache/annogen).
func Open(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "annogen")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "snapshots", key.String()+".mp")
}

// Put writes the state for key, replacing any previous entry atomically.
func (c *Cache) Put(key Digest, st *store.State) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err = enc.Encode(&payload{Schema: schemaVersion, Key: key, Image: st.Image()}); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the state stored for key. A missing entry, a stale schema or a
// key mismatch is a miss, not an error.
func (c *Cache) Get(key Digest) (*store.State, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var pl payload
	if err := msgpack.Unmarshal(data, &pl); err != nil {
		return nil, false, err
	}
	if pl.Schema != schemaVersion || pl.Key != key {
		return nil, false, nil
	}
	return store.FromImage(pl.Image), true, nil
}

// DropAll invalidates the whole cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
