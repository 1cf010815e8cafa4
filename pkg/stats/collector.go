package stats

import (
	"context"
	"sync"

	"github.com/dukex/flowrun/pkg/eventbus"
	"github.com/dukex/flowrun/pkg/events"
)

// WorkflowStats holds aggregated outcome counters for one workflow.
type WorkflowStats struct {
	WorkflowID string `json:"workflow_id"`
	Succeeded  int64  `json:"succeeded"`
	Failed     int64  `json:"failed"`
}

// Collector subscribes to workflow stats events and aggregates per-workflow
// success and failure counts in memory.
type Collector struct {
	mu       sync.RWMutex
	counters map[string]*WorkflowStats
}

func NewCollector() *Collector {
	return &Collector{
		counters: make(map[string]*WorkflowStats),
	}
}

// Attach registers the collector as a handler on the given subscriber.
func (c *Collector) Attach(subscriber eventbus.EventSubscriber) error {
	return subscriber.Handle(events.WorkflowStatsEvent, c.handle)
}

func (c *Collector) handle(ctx context.Context, event interface{}) error {
	statsEvent, ok := event.(*events.WorkflowStats)
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	counter, exists := c.counters[statsEvent.WorkflowID]
	if !exists {
		counter = &WorkflowStats{WorkflowID: statsEvent.WorkflowID}
		c.counters[statsEvent.WorkflowID] = counter
	}

	if statsEvent.Success {
		counter.Succeeded++
	} else {
		counter.Failed++
	}

	return nil
}

// Snapshot returns a copy of the counters for one workflow. Workflows with no
// recorded outcomes return zeroed counters.
func (c *Collector) Snapshot(workflowID string) WorkflowStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counter, exists := c.counters[workflowID]
	if !exists {
		return WorkflowStats{WorkflowID: workflowID}
	}

	return *counter
}
