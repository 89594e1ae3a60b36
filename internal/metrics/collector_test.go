package metrics

import (
	"testing"
	"time"
)

func TestCollectorRecordsCounters(t *testing.T) {
	c := NewCollector(true)
	c.RecordEvent()
	c.RecordMatch("firefox|Picture-in-Picture")
	c.RecordApplied("firefox|Picture-in-Picture")
	c.RecordApplied("firefox|Picture-in-Picture")
	c.RecordDispatchError("firefox|Picture-in-Picture")
	snap := c.Snapshot()
	if !snap.Enabled {
		t.Fatalf("expected snapshot to be enabled")
	}
	want := Totals{Events: 1, Matched: 1, Applied: 2, DispatchErrors: 1}
	if snap.Totals != want {
		t.Fatalf("unexpected totals: %#v", snap.Totals)
	}
	if len(snap.Rules) != 1 {
		t.Fatalf("expected one rule in snapshot, got %d", len(snap.Rules))
	}
	rule := snap.Rules[0]
	if rule.Rule != "firefox|Picture-in-Picture" {
		t.Fatalf("unexpected rule key: %#v", rule)
	}
	if rule.LastMatched.IsZero() || rule.LastApplied.IsZero() || rule.LastErrored.IsZero() {
		t.Fatalf("expected timestamps to be recorded: %#v", rule)
	}
}

func TestCollectorSnapshotSorted(t *testing.T) {
	c := NewCollector(true)
	c.RecordMatch("mpv|video")
	c.RecordMatch("firefox|Picture-in-Picture")
	c.RecordMatch("kitty|htop")
	snap := c.Snapshot()
	var keys []string
	for _, r := range snap.Rules {
		keys = append(keys, r.Rule)
	}
	if len(keys) != 3 || keys[0] != "firefox|Picture-in-Picture" || keys[1] != "kitty|htop" || keys[2] != "mpv|video" {
		t.Fatalf("unexpected order: %v", keys)
	}
}

func TestCollectorToggle(t *testing.T) {
	c := NewCollector(false)
	c.RecordEvent()
	c.RecordMatch("kitty|htop")
	if snap := c.Snapshot(); snap.Enabled || len(snap.Rules) != 0 || snap.Totals.Events != 0 {
		t.Fatalf("expected disabled snapshot: %#v", snap)
	}
	c.SetEnabled(true)
	c.RecordMatch("kitty|htop")
	c.RecordApplied("kitty|htop")
	snap := c.Snapshot()
	if !snap.Enabled || snap.Totals.Matched != 1 || snap.Totals.Applied != 1 {
		t.Fatalf("unexpected enabled snapshot: %#v", snap)
	}
	c.SetEnabled(false)
	snap = c.Snapshot()
	if snap.Enabled || !snap.Started.IsZero() {
		t.Fatalf("expected disabled snapshot with reset start, got %#v", snap)
	}
	time.Sleep(10 * time.Millisecond)
	c.SetEnabled(true)
	c.RecordMatch("kitty|htop")
	snap = c.Snapshot()
	if snap.Totals.Matched != 1 {
		t.Fatalf("expected counters to reset after re-enable: %#v", snap)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.RecordEvent()
	c.RecordMatch("a|b")
	if c.Enabled() {
		t.Fatal("nil collector must report disabled")
	}
	if snap := c.Snapshot(); snap.Enabled {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
}
