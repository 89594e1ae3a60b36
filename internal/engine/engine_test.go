package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hyprpal/hyprrules/internal/config"
	"github.com/hyprpal/hyprrules/internal/ipc"
	"github.com/hyprpal/hyprrules/internal/metrics"
	"github.com/hyprpal/hyprrules/internal/rules"
	"github.com/hyprpal/hyprrules/internal/util"
)

type fakeHyprctl struct {
	window      ipc.Window
	windowErr   error
	failing     map[string]bool
	dispatched  []string
	activeCalls int
}

func (f *fakeHyprctl) ActiveWindow() (ipc.Window, error) {
	f.activeCalls++
	return f.window, f.windowErr
}

func (f *fakeHyprctl) Dispatch(command string) error {
	if f.failing[command] {
		return errors.New("connection refused")
	}
	f.dispatched = append(f.dispatched, command)
	return nil
}

var pipRule = rules.RuntimeRule{
	Title:     "Picture-in-Picture",
	Class:     "firefox",
	Fragments: []string{"setfloating ", "movewindowpixel exact 100 300,"},
}

var pipWindow = ipc.Window{Address: 0xabc, Title: "Picture-in-Picture", Class: "firefox"}

func TestApplyDispatchesMatchingRules(t *testing.T) {
	hc := &fakeHyprctl{}
	pin := rules.RuntimeRule{Title: "Picture-in-Picture", Class: "firefox", Fragments: []string{"pin "}}
	other := rules.RuntimeRule{Title: "htop", Class: "kitty", Fragments: []string{"centerwindow "}}
	eng := New(hc, nil, []rules.RuntimeRule{pipRule, other, pin}, nil)

	if n := eng.Apply(pipWindow); n != 3 {
		t.Fatalf("expected 3 dispatches, got %d", n)
	}
	want := []string{
		"setfloating address:0xabc",
		"movewindowpixel exact 100 300,address:0xabc",
		"pin address:0xabc",
	}
	if diff := cmp.Diff(want, hc.dispatched); diff != "" {
		t.Fatalf("unexpected dispatches (-want +got):\n%s", diff)
	}
}

func TestApplyIgnoresNonMatchingWindow(t *testing.T) {
	hc := &fakeHyprctl{}
	eng := New(hc, nil, []rules.RuntimeRule{pipRule}, nil)
	if n := eng.Apply(ipc.Window{Address: 1, Title: "Mozilla Firefox", Class: "firefox"}); n != 0 {
		t.Fatalf("expected no dispatches, got %d", n)
	}
	if len(hc.dispatched) != 0 {
		t.Fatalf("unexpected dispatches: %v", hc.dispatched)
	}
}

func TestApplyContinuesAfterDispatchError(t *testing.T) {
	hc := &fakeHyprctl{failing: map[string]bool{"setfloating address:0xabc": true}}
	collector := metrics.NewCollector(true)
	eng := New(hc, nil, []rules.RuntimeRule{pipRule}, collector)

	if n := eng.Apply(pipWindow); n != 1 {
		t.Fatalf("expected 1 successful dispatch, got %d", n)
	}
	snap := collector.Snapshot()
	if len(snap.Rules) != 1 {
		t.Fatalf("expected one rule in snapshot, got %d", len(snap.Rules))
	}
	got := snap.Rules[0]
	if got.Rule != pipRule.Key() || got.Matched != 1 || got.Applied != 1 || got.DispatchErrors != 1 {
		t.Fatalf("unexpected counters: %#v", got)
	}
}

func TestApplyLogsRuleKey(t *testing.T) {
	var buf bytes.Buffer
	logger := util.NewLoggerWithWriter(util.LevelDebug, &buf)
	eng := New(&fakeHyprctl{}, logger, []rules.RuntimeRule{pipRule}, nil)

	eng.Apply(pipWindow)
	out := buf.String()
	if !strings.Contains(out, "rule=firefox|Picture-in-Picture") {
		t.Fatalf("expected rule field in log, got %q", out)
	}
	if !strings.Contains(out, "dispatched: setfloating address:0xabc") {
		t.Fatalf("expected dispatch log, got %q", out)
	}
}

func TestApplyFollowsNumericTitle(t *testing.T) {
	blocks, err := config.Parse([]byte("- match: {title: 2048, class: game, follow-title: true}\n  properties: {float: true}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	set, err := rules.Compile(blocks)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	win, err := ipc.ParseActiveWindow("Window 1f -> 2048:\n\tclass: game\n\ttitle: 2048\n")
	if err != nil {
		t.Fatalf("ParseActiveWindow: %v", err)
	}
	hc := &fakeHyprctl{}
	if n := New(hc, nil, set.Runtime, nil).Apply(win); n != 1 {
		t.Fatalf("expected 1 dispatch, got %d", n)
	}
	if diff := cmp.Diff([]string{"setfloating address:0x1f"}, hc.dispatched); diff != "" {
		t.Fatalf("unexpected dispatches (-want +got):\n%s", diff)
	}
}

func TestHandleFocusQueriesWindow(t *testing.T) {
	hc := &fakeHyprctl{window: pipWindow}
	collector := metrics.NewCollector(true)
	eng := New(hc, nil, []rules.RuntimeRule{pipRule}, collector)

	eng.HandleFocus("abc")
	if hc.activeCalls != 1 {
		t.Fatalf("expected one window query, got %d", hc.activeCalls)
	}
	if len(hc.dispatched) != 2 {
		t.Fatalf("expected two dispatches, got %v", hc.dispatched)
	}
	if snap := collector.Snapshot(); snap.Totals.Events != 1 {
		t.Fatalf("expected one event counted, got %d", snap.Totals.Events)
	}
}

func TestHandleFocusWithoutWindow(t *testing.T) {
	var buf bytes.Buffer
	logger := util.NewLoggerWithWriter(util.LevelDebug, &buf)
	hc := &fakeHyprctl{windowErr: ipc.ErrNoWindow}
	eng := New(hc, logger, []rules.RuntimeRule{pipRule}, nil)

	eng.HandleFocus("")
	if len(hc.dispatched) != 0 {
		t.Fatalf("unexpected dispatches: %v", hc.dispatched)
	}
	if !strings.Contains(buf.String(), "no active window") {
		t.Fatalf("expected debug log, got %q", buf.String())
	}
}

func TestPrime(t *testing.T) {
	hc := &fakeHyprctl{window: pipWindow}
	eng := New(hc, nil, []rules.RuntimeRule{pipRule}, nil)
	if n := eng.Prime(); n != 2 {
		t.Fatalf("expected 2 dispatches, got %d", n)
	}

	hc = &fakeHyprctl{windowErr: errors.New("dial failed")}
	eng = New(hc, nil, []rules.RuntimeRule{pipRule}, nil)
	if n := eng.Prime(); n != 0 {
		t.Fatalf("expected no dispatches, got %d", n)
	}
}

func TestRunSubscribesToActiveWindowV2(t *testing.T) {
	stream := "activewindow>>firefox,Picture-in-Picture\nactivewindowv2>>abc\n"
	listener := ipc.NewEventListener(io.NopCloser(strings.NewReader(stream)), nil)
	hc := &fakeHyprctl{window: pipWindow}
	eng := New(hc, nil, []rules.RuntimeRule{pipRule}, nil)

	if err := eng.Run(context.Background(), listener); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if hc.activeCalls != 1 {
		t.Fatalf("expected only the activewindowv2 record to trigger a query, got %d", hc.activeCalls)
	}
}
