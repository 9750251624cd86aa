// Package metrics collects in-process timing and token statistics and
// optionally mirrors them to Prometheus.
package metrics

import (
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation names for the collector.
const (
	OpTranscribe  = "transcribe"
	OpLLMGenerate = "llm_generate"
	OpDBQuery     = "db_query"
	OpBlobUpload  = "blob_upload"
	OpBlobDelete  = "blob_delete"
	OpPipeline    = "pipeline"
	OpToolCall    = "mcp_tool_call"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// LLM only
	TotalInputTokens  int64
	TotalOutputTokens int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	Errors      int64   `json:"errors"`
	TotalTimeMs int64   `json:"totalTimeMs"`
	AvgTimeMs   float64 `json:"avgTimeMs"`
	MinTimeMs   int64   `json:"minTimeMs"`
	MaxTimeMs   int64   `json:"maxTimeMs"`

	TotalInputTokens  *int64 `json:"totalInputTokens,omitempty"`
	TotalOutputTokens *int64 `json:"totalOutputTokens,omitempty"`
}

// Snapshot is the full statistics view at a point in time.
type Snapshot struct {
	UptimeSeconds float64                       `json:"uptimeSeconds"`
	Operations    map[string]*OperationSnapshot `json:"operations"`
}

// Collector aggregates runtime statistics. All methods are safe for
// concurrent use and are no-ops on a nil *Collector.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
	prom      *promMetrics
}

// NewCollector creates a collector. When reg is non-nil every observation
// is also exported through it.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
	if reg != nil {
		c.prom = newPromMetrics(reg)
	}
	return c
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

func (m *OperationMetrics) observe(d time.Duration) {
	m.Count++
	m.TotalTime += d
	if d < m.MinTime {
		m.MinTime = d
	}
	if d > m.MaxTime {
		m.MaxTime = d
	}
}

// RecordTiming records a successful operation.
func (c *Collector) RecordTiming(op string, d time.Duration) {
	c.record(op, d, nil)
}

// RecordResult records an operation and whether it failed.
func (c *Collector) RecordResult(op string, d time.Duration, err error) {
	c.record(op, d, err)
}

func (c *Collector) record(op string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	m := c.getOrCreate(op)
	m.observe(d)
	if err != nil {
		m.Errors++
	}
	c.mu.Unlock()

	c.prom.observe(op, d, err)
}

// RecordLLMUsage records timing and token usage for a model call.
func (c *Collector) RecordLLMUsage(op string, d time.Duration, inputTokens, outputTokens int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	m := c.getOrCreate(op)
	m.observe(d)
	m.TotalInputTokens += inputTokens
	m.TotalOutputTokens += outputTokens
	c.mu.Unlock()

	c.prom.observe(op, d, nil)
	c.prom.tokens(inputTokens, outputTokens)
}

func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	snap := &OperationSnapshot{
		Count:       m.Count,
		Errors:      m.Errors,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
	if m.TotalInputTokens > 0 || m.TotalOutputTokens > 0 {
		in, out := m.TotalInputTokens, m.TotalOutputTokens
		snap.TotalInputTokens = &in
		snap.TotalOutputTokens = &out
	}
	return snap
}

// Snapshot returns a point-in-time copy of all metrics. Operations that
// never ran are omitted.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{Operations: map[string]*OperationSnapshot{}}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	ops := make(map[string]*OperationSnapshot, len(c.ops))
	for name, m := range c.ops {
		if m.Count > 0 {
			ops[name] = snapshotOp(m)
		}
	}
	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Operations:    ops,
	}
}
