// Package data provides thread-safe storage for the diagnosis search
// service. The Container holds the current vocabulary snapshot behind an
// atomic pointer so reloads replace it wholesale with zero downtime.
package data

import (
	"sync/atomic"
	"time"

	"github.com/idea4rc/diagnosis-search/interfaces"
	"github.com/idea4rc/diagnosis-search/logging"
	"github.com/idea4rc/diagnosis-search/search"
)

// Compile-time checks: the container is both the service's DataStore
// and the engine's snapshot source.
var (
	_ interfaces.DataStore  = (*Container)(nil)
	_ search.SnapshotSource = (*Container)(nil)
)

// Container holds the published snapshot with atomic operations for
// zero-downtime reloads.
type Container struct {
	snapshot        atomic.Value // *search.Snapshot
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewContainer creates a Container holding an empty snapshot.
func NewContainer() *Container {
	c := &Container{}
	c.snapshot.Store(search.NewSnapshot(nil, nil))
	c.lastUpdated.Store(time.Time{})
	c.serverStartTime.Store(time.Time{})
	return c
}

// GetSnapshot returns the current snapshot. Queries call this exactly
// once per evaluation and never observe a half-built state.
func (c *Container) GetSnapshot() *search.Snapshot {
	if v := c.snapshot.Load(); v != nil {
		if snap, ok := v.(*search.Snapshot); ok {
			return snap
		}
	}

	logging.Warn("Snapshot is empty or invalid")
	return search.NewSnapshot(nil, nil)
}

// UpdateSnapshot atomically publishes a new snapshot. The previous one
// is garbage-collected once the last in-flight query drops it.
func (c *Container) UpdateSnapshot(snap *search.Snapshot) {
	c.snapshot.Store(snap)
	c.lastUpdated.Store(time.Now())
}

// GetLastUpdated returns the timestamp of the last published snapshot.
func (c *Container) GetLastUpdated() time.Time {
	if v := c.lastUpdated.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true while a reload is in progress.
func (c *Container) IsUpdating() bool {
	return c.updating.Load()
}

// BeginUpdate marks the start of a reload. It returns false when
// another reload is already running.
func (c *Container) BeginUpdate() bool {
	return c.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a reload.
func (c *Container) EndUpdate() {
	c.updating.Store(false)
}

// SetServerStartTime records when the process started serving.
func (c *Container) SetServerStartTime(startTime time.Time) {
	c.serverStartTime.Store(startTime)
}

// GetServerStartTime returns when the process started serving.
func (c *Container) GetServerStartTime() time.Time {
	if v := c.serverStartTime.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}
