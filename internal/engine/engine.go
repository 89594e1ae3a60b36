package engine

import (
	"context"
	"errors"

	"github.com/hyprpal/hyprrules/internal/ipc"
	"github.com/hyprpal/hyprrules/internal/metrics"
	"github.com/hyprpal/hyprrules/internal/rules"
	"github.com/hyprpal/hyprrules/internal/util"
)

type hyprctlClient interface {
	ActiveWindow() (ipc.Window, error)
	Dispatch(command string) error
}

type eventSource interface {
	Subscribe(kind ipc.EventKind, h ipc.Handler)
	Listen(ctx context.Context) error
}

// Engine re-applies follow rules whenever focus moves to a matching window.
type Engine struct {
	hyprctl   hyprctlClient
	logger    *util.Logger
	runtime   []rules.RuntimeRule
	collector *metrics.Collector
}

// New creates an engine for the given runtime rules. collector may be nil.
func New(hyprctl hyprctlClient, logger *util.Logger, runtime []rules.RuntimeRule, collector *metrics.Collector) *Engine {
	return &Engine{
		hyprctl:   hyprctl,
		logger:    logger,
		runtime:   append([]rules.RuntimeRule(nil), runtime...),
		collector: collector,
	}
}

// Run subscribes to focus changes and blocks until the event stream ends.
func (e *Engine) Run(ctx context.Context, events eventSource) error {
	events.Subscribe(ipc.EventActiveWindowV2, e.HandleFocus)
	e.logger.Infof("following %d rules", len(e.runtime))
	return events.Listen(ctx)
}

// Prime applies the rules to the window focused at startup.
func (e *Engine) Prime() int {
	win, err := e.hyprctl.ActiveWindow()
	if err != nil {
		e.logger.Debugf("startup pass skipped: %v", err)
		return 0
	}
	return e.Apply(win)
}

// HandleFocus reacts to a focus change by querying the focused window.
func (e *Engine) HandleFocus(payload string) {
	e.collector.RecordEvent()
	e.logger.Tracef("focus changed to %s", payload)
	win, err := e.hyprctl.ActiveWindow()
	if err != nil {
		if errors.Is(err, ipc.ErrNoWindow) {
			e.logger.Debugf("no active window after focus change")
		} else {
			e.logger.Warnf("active window query failed: %v", err)
		}
		return
	}
	e.Apply(win)
}

// Apply dispatches the commands of every rule matching win, in rule order.
// It returns the number of commands dispatched successfully.
func (e *Engine) Apply(win ipc.Window) int {
	applied := 0
	for _, rule := range e.runtime {
		if !rule.Matches(win.Title, win.Class) {
			continue
		}
		key := rule.Key()
		logger := e.logger.With("rule", key)
		e.collector.RecordMatch(key)
		logger.Debugf("matched window 0x%x", win.Address)
		for _, cmd := range rule.Commands(win.Address) {
			if err := e.hyprctl.Dispatch(cmd); err != nil {
				e.collector.RecordDispatchError(key)
				continue
			}
			e.collector.RecordApplied(key)
			logger.Infof("dispatched: %s", cmd)
			applied++
		}
	}
	return applied
}
