package parser

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"panorama-rule-finder/internal/model"
)

// Snapshot is one immutable parsed document plus its identity. Everything
// derived from it is rebuilt per scan, so handing the same snapshot to
// concurrent scans is safe.
type Snapshot struct {
	ID       string
	Doc      *model.Document
	LoadedAt time.Time

	modTime time.Time
}

// SnapshotCache reloads a Panorama export when its modification time
// changes. It is explicitly owned and injectable; Invalidate forces a reload
// on the next Get, and SetPath switches to a different config file.
type SnapshotCache struct {
	mu   sync.Mutex
	path string
	snap *Snapshot
}

func NewSnapshotCache(path string) *SnapshotCache {
	return &SnapshotCache{path: path}
}

// Path returns the config file currently backing the cache.
func (c *SnapshotCache) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// SetPath switches the cache to a different config file and drops the
// current snapshot.
func (c *SnapshotCache) SetPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = path
	c.snap = nil
}

// Invalidate drops the current snapshot so the next Get reparses.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = nil
}

// Get returns the current snapshot, reparsing the config file if it has
// never been loaded or its modification time changed since the last load.
func (c *SnapshotCache) Get() (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if c.snap != nil && c.snap.modTime.Equal(info.ModTime()) {
		return c.snap, nil
	}

	doc, err := LoadPanoramaFile(c.path)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:       uuid.New().String(),
		Doc:      doc,
		LoadedAt: time.Now(),
		modTime:  info.ModTime(),
	}
	c.snap = snap
	slog.Info("Loaded config snapshot",
		"path", c.path,
		"snapshot_id", snap.ID,
		"device_groups", len(doc.DeviceGroups))
	return snap, nil
}
