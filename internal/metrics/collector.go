package metrics

import (
	"sort"
	"sync"
	"time"
)

// Collector counts how often follow rules matched a focused window and how
// their dispatches went.
type Collector struct {
	mu      sync.RWMutex
	enabled bool
	started time.Time
	events  uint64
	rules   map[string]*RuleMetrics
}

// RuleMetrics holds the counters of one follow rule.
type RuleMetrics struct {
	Rule           string    `json:"rule"`
	Matched        uint64    `json:"matched"`
	Applied        uint64    `json:"applied"`
	DispatchErrors uint64    `json:"dispatchErrors"`
	LastMatched    time.Time `json:"lastMatched,omitempty"`
	LastApplied    time.Time `json:"lastApplied,omitempty"`
	LastErrored    time.Time `json:"lastErrored,omitempty"`
}

// Totals sums the rule counters of a snapshot.
type Totals struct {
	Events         uint64 `json:"events"`
	Matched        uint64 `json:"matched"`
	Applied        uint64 `json:"applied"`
	DispatchErrors uint64 `json:"dispatchErrors"`
}

// Snapshot is a point-in-time copy of the counters, rules sorted by key.
type Snapshot struct {
	Enabled bool          `json:"enabled"`
	Started time.Time     `json:"started,omitempty"`
	Totals  Totals        `json:"totals"`
	Rules   []RuleMetrics `json:"rules,omitempty"`
}

func NewCollector(enabled bool) *Collector {
	c := &Collector{}
	c.SetEnabled(enabled)
	return c
}

func (c *Collector) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// SetEnabled toggles collection. Enabling starts from zeroed counters.
func (c *Collector) SetEnabled(enabled bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled == enabled {
		return
	}
	c.enabled = enabled
	c.events = 0
	if !enabled {
		c.rules = nil
		c.started = time.Time{}
		return
	}
	c.started = time.Now()
	c.rules = make(map[string]*RuleMetrics)
}

// RecordEvent counts a focus event handed to the engine.
func (c *Collector) RecordEvent() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled {
		c.events++
	}
}

func (c *Collector) RecordMatch(rule string) {
	c.update(rule, func(m *RuleMetrics, now time.Time) {
		m.Matched++
		m.LastMatched = now
	})
}

// RecordApplied counts one successfully dispatched command.
func (c *Collector) RecordApplied(rule string) {
	c.update(rule, func(m *RuleMetrics, now time.Time) {
		m.Applied++
		m.LastApplied = now
	})
}

func (c *Collector) RecordDispatchError(rule string) {
	c.update(rule, func(m *RuleMetrics, now time.Time) {
		m.DispatchErrors++
		m.LastErrored = now
	})
}

func (c *Collector) update(rule string, mutate func(*RuleMetrics, time.Time)) {
	if c == nil {
		return
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	m, ok := c.rules[rule]
	if !ok {
		m = &RuleMetrics{Rule: rule}
		c.rules[rule] = m
	}
	mutate(m, now)
}

func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{Enabled: c.enabled}
	if !c.enabled {
		return snap
	}
	snap.Started = c.started
	snap.Totals.Events = c.events
	for _, m := range c.rules {
		snap.Rules = append(snap.Rules, *m)
		snap.Totals.Matched += m.Matched
		snap.Totals.Applied += m.Applied
		snap.Totals.DispatchErrors += m.DispatchErrors
	}
	sort.Slice(snap.Rules, func(i, j int) bool {
		return snap.Rules[i].Rule < snap.Rules[j].Rule
	})
	return snap
}
