package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector counts component tree activity with no external dependencies
type Collector struct {
	treeMetrics       *TreeMetrics
	operationCounters map[string]*int64
	mu                sync.RWMutex
	startTime         time.Time
}

// TreeMetrics tracks the lifecycle and rendering work of a component tree
type TreeMetrics struct {
	// Component lifecycle
	ComponentsCreated       int64 `json:"components_created"`
	ComponentsDestroyed     int64 `json:"components_destroyed"`
	ActiveComponents        int64 `json:"active_components"`
	MaxConcurrentComponents int64 `json:"max_concurrent_components"`

	// Rendering
	StyleRenders  int64 `json:"style_renders"`
	StyleFailures int64 `json:"style_failures"`

	// Builders
	Rebuilds  int64 `json:"rebuilds"`
	Reindexes int64 `json:"reindexes"`

	// Two-way binding
	ModelWrites int64 `json:"model_writes"`
	LocalWrites int64 `json:"local_writes"`

	// Uptime
	StartTime time.Time     `json:"start_time"`
	Uptime    time.Duration `json:"uptime"`
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		treeMetrics: &TreeMetrics{
			StartTime: time.Now(),
		},
		operationCounters: make(map[string]*int64),
		startTime:         time.Now(),
	}
}

// IncrementComponentCreated records a new component
func (c *Collector) IncrementComponentCreated() {
	atomic.AddInt64(&c.treeMetrics.ComponentsCreated, 1)
	currentActive := atomic.AddInt64(&c.treeMetrics.ActiveComponents, 1)

	// Update max concurrent if needed
	for {
		max := atomic.LoadInt64(&c.treeMetrics.MaxConcurrentComponents)
		if currentActive <= max {
			break
		}
		if atomic.CompareAndSwapInt64(&c.treeMetrics.MaxConcurrentComponents, max, currentActive) {
			break
		}
	}
}

// IncrementComponentDestroyed records a component teardown
func (c *Collector) IncrementComponentDestroyed() {
	atomic.AddInt64(&c.treeMetrics.ComponentsDestroyed, 1)
	atomic.AddInt64(&c.treeMetrics.ActiveComponents, -1)
}

// IncrementStyleRender records one style computation
func (c *Collector) IncrementStyleRender() {
	atomic.AddInt64(&c.treeMetrics.StyleRenders, 1)
}

// IncrementStyleFailure records a style computation that returned an error
func (c *Collector) IncrementStyleFailure() {
	atomic.AddInt64(&c.treeMetrics.StyleFailures, 1)
}

// IncrementRebuild records a builder reacting to a condition or list change
func (c *Collector) IncrementRebuild() {
	atomic.AddInt64(&c.treeMetrics.Rebuilds, 1)
}

// IncrementReindex records n children re-stamped with a new index
func (c *Collector) IncrementReindex(n int64) {
	atomic.AddInt64(&c.treeMetrics.Reindexes, n)
}

// IncrementModelWrite records a local value pushed into the model
func (c *Collector) IncrementModelWrite() {
	atomic.AddInt64(&c.treeMetrics.ModelWrites, 1)
}

// IncrementLocalWrite records a model value pushed into a widget
func (c *Collector) IncrementLocalWrite() {
	atomic.AddInt64(&c.treeMetrics.LocalWrites, 1)
}

// IncrementCustomCounter increments a custom named counter
func (c *Collector) IncrementCustomCounter(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, exists := c.operationCounters[name]; exists {
		atomic.AddInt64(counter, 1)
	} else {
		var newCounter int64 = 1
		c.operationCounters[name] = &newCounter
	}
}

// GetMetrics returns current tree metrics
func (c *Collector) GetMetrics() TreeMetrics {
	return TreeMetrics{
		ComponentsCreated:       atomic.LoadInt64(&c.treeMetrics.ComponentsCreated),
		ComponentsDestroyed:     atomic.LoadInt64(&c.treeMetrics.ComponentsDestroyed),
		ActiveComponents:        atomic.LoadInt64(&c.treeMetrics.ActiveComponents),
		MaxConcurrentComponents: atomic.LoadInt64(&c.treeMetrics.MaxConcurrentComponents),
		StyleRenders:            atomic.LoadInt64(&c.treeMetrics.StyleRenders),
		StyleFailures:           atomic.LoadInt64(&c.treeMetrics.StyleFailures),
		Rebuilds:                atomic.LoadInt64(&c.treeMetrics.Rebuilds),
		Reindexes:               atomic.LoadInt64(&c.treeMetrics.Reindexes),
		ModelWrites:             atomic.LoadInt64(&c.treeMetrics.ModelWrites),
		LocalWrites:             atomic.LoadInt64(&c.treeMetrics.LocalWrites),
		StartTime:               c.treeMetrics.StartTime,
		Uptime:                  time.Since(c.startTime),
	}
}

// GetCustomCounters returns all custom counters
func (c *Collector) GetCustomCounters() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]int64)
	for name, counter := range c.operationCounters {
		result[name] = atomic.LoadInt64(counter)
	}
	return result
}

// Snapshot returns the metrics and custom counters as JSON
func (c *Collector) Snapshot() ([]byte, error) {
	return json.Marshal(struct {
		Tree     TreeMetrics      `json:"tree"`
		Counters map[string]int64 `json:"counters"`
	}{
		Tree:     c.GetMetrics(),
		Counters: c.GetCustomCounters(),
	})
}

// Reset resets all metrics to zero
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	atomic.StoreInt64(&c.treeMetrics.ComponentsCreated, 0)
	atomic.StoreInt64(&c.treeMetrics.ComponentsDestroyed, 0)
	atomic.StoreInt64(&c.treeMetrics.ActiveComponents, 0)
	atomic.StoreInt64(&c.treeMetrics.MaxConcurrentComponents, 0)
	atomic.StoreInt64(&c.treeMetrics.StyleRenders, 0)
	atomic.StoreInt64(&c.treeMetrics.StyleFailures, 0)
	atomic.StoreInt64(&c.treeMetrics.Rebuilds, 0)
	atomic.StoreInt64(&c.treeMetrics.Reindexes, 0)
	atomic.StoreInt64(&c.treeMetrics.ModelWrites, 0)
	atomic.StoreInt64(&c.treeMetrics.LocalWrites, 0)

	c.operationCounters = make(map[string]*int64)

	c.startTime = time.Now()
	c.treeMetrics.StartTime = time.Now()
}

// GetStyleFailureRate returns the percentage of style computations that failed
func (c *Collector) GetStyleFailureRate() float64 {
	renders := atomic.LoadInt64(&c.treeMetrics.StyleRenders)
	failures := atomic.LoadInt64(&c.treeMetrics.StyleFailures)

	if renders+failures == 0 {
		return 0.0
	}

	return float64(failures) / float64(renders+failures) * 100.0
}
