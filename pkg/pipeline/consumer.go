package pipeline

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ufwtail/pkg/filter"
	"github.com/DeBrosOfficial/ufwtail/pkg/ifaces"
	"github.com/DeBrosOfficial/ufwtail/pkg/logging"
	"github.com/DeBrosOfficial/ufwtail/pkg/netclass"
	"github.com/DeBrosOfficial/ufwtail/pkg/services"
	"github.com/DeBrosOfficial/ufwtail/pkg/store"
	"github.com/DeBrosOfficial/ufwtail/pkg/view"
)

// IngestCounters exposes the background counters. *Ingester implements it.
type IngestCounters interface {
	Parsed() uint64
	Skipped() uint64
	Rotations() uint64
}

// Stats is a point-in-time view of every pipeline counter.
type Stats struct {
	Visible   int    `json:"visible"`
	Stored    int    `json:"stored"`
	Capacity  int    `json:"capacity"`
	Queued    int    `json:"queued"`
	Parsed    uint64 `json:"parsed"`
	Skipped   uint64 `json:"skipped"`
	Dropped   uint64 `json:"dropped"`
	Evicted   uint64 `json:"evicted"`
	Rotations uint64 `json:"rotations"`
	Paused    bool   `json:"paused"`
}

// State is what the consumer publishes for readers on other goroutines.
type State struct {
	View       *view.Snapshot
	Stats      Stats
	Filters    [filter.NumSlots]string
	Toggles    view.Toggles
	Interfaces []string
	Selected   string
	Published  time.Time
}

// ConsumerOptions configures a Consumer.
type ConsumerOptions struct {
	Capacity int
	Catalog  *services.Catalog
	Filters  *filter.Set // initial slots; copied
	Toggles  view.Toggles
	Logger   *logging.ColoredLogger
}

// Consumer owns the store, interface registry, filter set and projection.
// All methods except State must be called from one goroutine, normally the
// viewer's.
type Consumer struct {
	queue    *Queue
	counters IngestCounters
	logger   *logging.ColoredLogger

	store      *store.Store
	registry   *ifaces.Registry
	filters    *filter.Set
	toggles    view.Toggles
	projection *view.Projection
	paused     bool

	state     atomic.Pointer[State]
	onPublish func(*State)
}

// NewConsumer creates a consumer draining queue. counters may be nil.
func NewConsumer(queue *Queue, counters IngestCounters, opts ConsumerOptions) *Consumer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	filters := filter.NewSet()
	if opts.Filters != nil {
		filters = opts.Filters.Clone()
	}

	c := &Consumer{
		queue:      queue,
		counters:   counters,
		logger:     logger,
		store:      store.New(opts.Capacity),
		registry:   ifaces.New(),
		filters:    filters,
		toggles:    opts.Toggles,
		projection: view.New(opts.Catalog),
	}
	c.recompute()
	return c
}

// OnPublish registers fn to be called after every publish. It must be set
// before the consumer starts draining.
func (c *Consumer) OnPublish(fn func(*State)) {
	c.onPublish = fn
}

// Drain moves every queued entry into the store and refreshes the
// projection. It returns the number of entries moved. While paused nothing
// is moved, but the counters are republished so queued and dropped keep
// advancing.
func (c *Consumer) Drain() int {
	if c.paused {
		c.publish()
		return 0
	}

	n := 0
	added := false
	for {
		e, ok := c.queue.TryPop()
		if !ok {
			break
		}
		c.store.Append(e)
		if c.registry.Observe(&e) {
			added = true
			c.logger.ComponentDebug(logging.ComponentPipeline, "new interface",
				zap.String("interface", e.Interface()))
		}
		n++
	}

	if added {
		c.syncSelection()
	}
	if n > 0 {
		c.recompute()
	} else {
		c.publish()
	}
	return n
}

func (c *Consumer) recompute() {
	c.projection.Recompute(c.store, c.filters, c.toggles)
	c.publish()
}

func (c *Consumer) publish() {
	selected, _ := c.registry.Selected()
	s := &State{
		View:       c.projection.Snapshot(),
		Stats:      c.Stats(),
		Filters:    c.filters.Values(),
		Toggles:    c.toggles,
		Interfaces: c.registry.Names(),
		Selected:   selected,
		Published:  time.Now(),
	}
	c.state.Store(s)
	if c.onPublish != nil {
		c.onPublish(s)
	}
}

// State returns the last published state. Safe for concurrent use.
func (c *Consumer) State() *State {
	return c.state.Load()
}

// Stats collects the current counters.
func (c *Consumer) Stats() Stats {
	s := Stats{
		Visible:  c.projection.Len(),
		Stored:   c.store.Len(),
		Capacity: c.store.Cap(),
		Queued:   c.queue.Len(),
		Dropped:  c.queue.Dropped(),
		Evicted:  c.store.Evicted(),
		Paused:   c.paused,
	}
	if c.counters != nil {
		s.Parsed = c.counters.Parsed()
		s.Skipped = c.counters.Skipped()
		s.Rotations = c.counters.Rotations()
	}
	return s
}

// Projection returns the projection for rendering.
func (c *Consumer) Projection() *view.Projection { return c.projection }

// Store returns the entry store.
func (c *Consumer) Store() *store.Store { return c.store }

// Registry returns the interface registry.
func (c *Consumer) Registry() *ifaces.Registry { return c.registry }

// Filters returns a copy of the active filter set.
func (c *Consumer) Filters() *filter.Set { return c.filters.Clone() }

// Toggles returns the active toggles.
func (c *Consumer) Toggles() view.Toggles { return c.toggles }

// Paused reports whether draining is suspended.
func (c *Consumer) Paused() bool { return c.paused }

// SetPaused suspends or resumes draining. The ingester keeps reading while
// paused; queued entries drain in order on resume.
func (c *Consumer) SetPaused(paused bool) {
	if c.paused == paused {
		return
	}
	c.paused = paused
	c.logger.ComponentInfo(logging.ComponentPipeline, "pause toggled", zap.Bool("paused", paused))
	c.publish()
}

// TogglePause flips the pause flag and returns the new value.
func (c *Consumer) TogglePause() bool {
	c.SetPaused(!c.paused)
	return c.paused
}

// SetFilter validates and applies value to slot. Editing the interface slot
// also moves the registry selection.
func (c *Consumer) SetFilter(slot filter.Slot, value string) error {
	if err := c.filters.SetSlot(slot, value); err != nil {
		return err
	}
	if slot == filter.SlotInterface {
		c.syncSelection()
	}
	c.logger.ComponentDebug(logging.ComponentViewer, "filter set",
		zap.String("slot", slot.String()), zap.String("value", value))
	c.recompute()
	return nil
}

// ClearFilter empties one slot.
func (c *Consumer) ClearFilter(slot filter.Slot) {
	c.filters.ClearSlot(slot)
	if slot == filter.SlotInterface {
		c.registry.Clear()
	}
	c.recompute()
}

// ClearFilters empties every slot and drops the interface selection.
func (c *Consumer) ClearFilters() {
	c.filters.ClearAll()
	c.registry.Clear()
	c.recompute()
}

// syncSelection points the registry at the interface slot value when that
// interface is known, and clears the selection otherwise.
func (c *Consumer) syncSelection() {
	v, ok := c.filters.Slot(filter.SlotInterface)
	if !ok || !c.registry.Select(v.Raw) {
		c.registry.Clear()
	}
}

// NextInterface selects the next known interface and filters on it.
func (c *Consumer) NextInterface() (string, bool) {
	return c.selectInterface(c.registry.Next())
}

// PreviousInterface selects the previous known interface and filters on it.
func (c *Consumer) PreviousInterface() (string, bool) {
	return c.selectInterface(c.registry.Previous())
}

// SelectWANInterface filters on the interface most likely to be the uplink.
func (c *Consumer) SelectWANInterface() (string, bool) {
	name, ok := netclass.DefaultWANInterface(c.registry.Names())
	if !ok {
		return "", false
	}
	c.registry.Select(name)
	return c.selectInterface(name, true)
}

func (c *Consumer) selectInterface(name string, ok bool) (string, bool) {
	if !ok {
		return "", false
	}
	// Known interface names are single tokens, so this cannot fail.
	_ = c.filters.SetSlot(filter.SlotInterface, name)
	c.recompute()
	return name, true
}

// AllInterfaces drops the interface selection and clears slot 1.
func (c *Consumer) AllInterfaces() {
	c.ClearFilter(filter.SlotInterface)
}

// CycleDirection advances the direction toggle.
func (c *Consumer) CycleDirection() netclass.DirectionFilter {
	c.toggles.Direction = c.toggles.Direction.Next()
	c.recompute()
	return c.toggles.Direction
}

// CycleFlow advances the flow toggle.
func (c *Consumer) CycleFlow() netclass.Flow {
	c.toggles.Flow = c.toggles.Flow.Next()
	c.recompute()
	return c.toggles.Flow
}

// ToggleLocal shows or hides entries from local sources and returns whether
// they are now hidden.
func (c *Consumer) ToggleLocal() bool {
	c.toggles.HideLocal = !c.toggles.HideLocal
	c.recompute()
	return c.toggles.HideLocal
}

// ToggleWAN shows or hides entries from WAN sources and returns whether they
// are now hidden.
func (c *Consumer) ToggleWAN() bool {
	c.toggles.HideWAN = !c.toggles.HideWAN
	c.recompute()
	return c.toggles.HideWAN
}

// MoveCursor moves the projection cursor and republishes.
func (c *Consumer) MoveCursor(delta int) {
	c.projection.MoveCursor(delta)
	c.publish()
}
