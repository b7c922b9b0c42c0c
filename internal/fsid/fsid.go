// Package fsid implements the file-identity cache used by the event
// normalizer to pair rename-from/rename-to and remove+create sequences
// that refer to the same underlying file across two paths.
package fsid

import (
	"fmt"
	"os"
	"sync"
)

// ID is an opaque OS-level file identity. Two paths that resolve to the
// same ID refer to the same underlying file, even across a rename/move.
type ID struct {
	dev uint64
	ino uint64
}

// String renders the identity for logging; it is not a stable format.
func (id ID) String() string {
	return fmt.Sprintf("%d:%d", id.dev, id.ino)
}

// Lookup resolves the current OS file identity for path. It returns
// (ID{}, false) if path cannot be stat'd (e.g. it no longer exists).
func Lookup(path string) (ID, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return ID{}, false
	}
	return idFromFileInfo(info)
}

// Cache maps paths to the file identity last observed at that path, and
// identities back to the most recent path at which they were observed.
// It mirrors the notify_debouncer_full file-id cache this pipeline needs
// its own copy of: the normalizer must still be able to look up the
// identity of a path that has just been removed, after the backend
// watcher has already forgotten it.
type Cache struct {
	mu        sync.RWMutex
	pathToID  map[string]ID
	idToPath  map[ID]string
	watchRoot map[string]struct{}
}

// NewCache creates an empty identity cache.
func NewCache() *Cache {
	return &Cache{
		pathToID:  make(map[string]ID),
		idToPath:  make(map[ID]string),
		watchRoot: make(map[string]struct{}),
	}
}

// AddRoot registers path as a watch root whose subtree should be tracked.
func (c *Cache) AddRoot(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchRoot[path] = struct{}{}
}

// RemoveRoot unregisters path and drops any cached identities under it.
func (c *Cache) RemoveRoot(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.watchRoot, path)
	for p, id := range c.pathToID {
		if p == path || (len(p) > len(path) && p[:len(path)] == path && p[len(path)] == os.PathSeparator) {
			delete(c.pathToID, p)
			if c.idToPath[id] == p {
				delete(c.idToPath, id)
			}
		}
	}
}

// Put records the identity currently observed at path.
func (c *Cache) Put(path string, id ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.pathToID[path]; ok {
		delete(c.idToPath, old)
	}
	if oldPath, ok := c.idToPath[id]; ok && oldPath != path {
		delete(c.pathToID, oldPath)
	}
	c.pathToID[path] = id
	c.idToPath[id] = path
}

// Remove drops any cached identity for path, returning it if present.
func (c *Cache) Remove(path string) (ID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.pathToID[path]
	if !ok {
		return ID{}, false
	}
	delete(c.pathToID, path)
	delete(c.idToPath, id)
	return id, true
}

// CachedID returns the identity last recorded for path, without touching
// the filesystem.
func (c *Cache) CachedID(path string) (ID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.pathToID[path]
	return id, ok
}

// PathForID returns the most recently recorded path for id.
func (c *Cache) PathForID(id ID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	path, ok := c.idToPath[id]
	return path, ok
}

// Rescan clears the cache entirely. Callers must repopulate it by walking
// the watched roots; this is invoked when the backend watcher reports it
// may have dropped events (the §5 "OutOfSync" condition).
func (c *Cache) Rescan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pathToID = make(map[string]ID)
	c.idToPath = make(map[ID]string)
}
