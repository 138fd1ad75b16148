package storage

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/MINAqwq/LibWebli/internal/logging"
)

// Cache keeps file contents in memory and drops an entry as soon as the
// file changes on disk.
type Cache struct {
	dir     Dir
	watcher *fsnotify.Watcher
	read    func(path string) ([]byte, error)

	mu      sync.RWMutex
	entries map[string][]byte
	gens    map[string]uint64 // bumped on every change event for a path
	watched map[string]bool

	done chan struct{}
}

// NewCache creates a cache over files below root.
func NewCache(root string) (*Cache, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	c := &Cache{
		dir:     Dir{Root: root},
		watcher: w,
		read:    LoadBytes,
		entries: make(map[string][]byte),
		gens:    make(map[string]uint64),
		watched: make(map[string]bool),
		done:    make(chan struct{}),
	}
	go c.watch()
	return c, nil
}

// Load returns the contents of name, reading from disk on a miss.
func (c *Cache) Load(name string) ([]byte, error) {
	path, err := c.dir.Resolve(name)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	data, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}

	if err := c.watchDir(filepath.Dir(path)); err != nil {
		logging.Warn("Storage cache cannot watch directory, serving uncached",
			zap.String("path", path),
			zap.Error(err),
		)
		return c.read(path)
	}

	// A change event that lands while the file is read bumps the
	// generation, and the possibly stale bytes are not stored.
	c.mu.RLock()
	gen := c.gens[path]
	c.mu.RUnlock()

	data, err = c.read(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gens[path] == gen {
		c.entries[path] = data
	}
	c.mu.Unlock()
	return data, nil
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops watching and empties the cache.
func (c *Cache) Close() error {
	err := c.watcher.Close()
	<-c.done

	c.mu.Lock()
	c.entries = make(map[string][]byte)
	c.mu.Unlock()
	return err
}

func (c *Cache) watchDir(dir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watched[dir] {
		return nil
	}
	if err := c.watcher.Add(dir); err != nil {
		return err
	}
	c.watched[dir] = true
	return nil
}

func (c *Cache) watch() {
	defer close(c.done)

	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.invalidate(filepath.Clean(event.Name))
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("Storage cache watcher error", zap.Error(err))
		}
	}
}

func (c *Cache) invalidate(path string) {
	c.mu.Lock()
	_, ok := c.entries[path]
	delete(c.entries, path)
	c.gens[path]++
	c.mu.Unlock()

	if ok {
		logging.Debug("Storage cache entry invalidated", zap.String("path", path))
	}
}
