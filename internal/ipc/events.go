package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/hyprpal/hyprrules/internal/util"
)

// EventKind is the vocabulary of event names the listener can route.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventActiveWindow
	EventActiveWindowV2
	EventConfigReloaded
)

var eventNames = map[string]EventKind{
	"activewindow":   EventActiveWindow,
	"activewindowv2": EventActiveWindowV2,
	"configreloaded": EventConfigReloaded,
}

// ParseEventKind maps an event name to its kind. Unrecognized names map to EventUnknown.
func ParseEventKind(name string) EventKind {
	return eventNames[name]
}

func (k EventKind) String() string {
	for name, kind := range eventNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Event is a decoded record from the event socket.
type Event struct {
	Kind    EventKind
	Name    string
	Payload string
}

// DecodeEvent splits a record at the first ">>". Records without the delimiter are rejected.
func DecodeEvent(line string) (Event, bool) {
	name, payload, ok := strings.Cut(line, ">>")
	if !ok {
		return Event{}, false
	}
	return Event{Kind: ParseEventKind(name), Name: name, Payload: payload}, true
}

// Handler reacts to an event payload.
type Handler func(payload string)

// EventListener routes records from the event socket to subscribed handlers.
type EventListener struct {
	conn     io.ReadCloser
	logger   *util.Logger
	handlers map[EventKind][]Handler
	received int
}

// DialEvents connects to the event socket of the running Hyprland instance.
func DialEvents(logger *util.Logger) (*EventListener, error) {
	path, err := socketPath(eventSocketName)
	if err != nil {
		return nil, err
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("connect event socket: %w", err)
	}
	return NewEventListener(conn, logger), nil
}

// NewEventListener reads records from conn.
func NewEventListener(conn io.ReadCloser, logger *util.Logger) *EventListener {
	return &EventListener{
		conn:     conn,
		logger:   logger,
		handlers: make(map[EventKind][]Handler),
	}
}

// Subscribe registers h for kind. Handlers run in registration order.
func (l *EventListener) Subscribe(kind EventKind, h Handler) {
	if kind == EventUnknown || h == nil {
		return
	}
	l.handlers[kind] = append(l.handlers[kind], h)
}

// Received returns the number of records routed to at least one handler.
func (l *EventListener) Received() int {
	return l.received
}

// Listen processes records until the stream ends, a read fails, or ctx is
// cancelled. Handlers run on the calling goroutine. The connection is closed on return.
func (l *EventListener) Listen(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			l.conn.Close()
		case <-done:
		}
	}()
	defer l.conn.Close()

	err := l.readRecords(bufio.NewReaderSize(l.conn, 64*1024))
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}

// maxRecordSize bounds a single event record. Longer records are skipped.
const maxRecordSize = 1 << 20

func (l *EventListener) readRecords(r *bufio.Reader) error {
	var line []byte
	oversized := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !oversized {
			line = append(line, chunk...)
			if len(line) > maxRecordSize {
				oversized = true
				line = line[:0]
			}
		}
		switch {
		case err == nil:
			if oversized {
				l.logger.Warnf("skipping event record longer than %d bytes", maxRecordSize)
				oversized = false
			} else {
				l.route(trimRecord(line))
			}
			line = line[:0]
		case errors.Is(err, bufio.ErrBufferFull):
		default:
			if errors.Is(err, io.EOF) && len(line) > 0 && !oversized {
				l.route(trimRecord(line))
			}
			return err
		}
	}
}

func trimRecord(line []byte) string {
	return strings.TrimSuffix(strings.TrimSuffix(string(line), "\n"), "\r")
}

func (l *EventListener) route(line string) {
	ev, ok := DecodeEvent(line)
	if !ok {
		l.logger.Tracef("dropping record without delimiter: %q", line)
		return
	}
	handlers := l.handlers[ev.Kind]
	if ev.Kind == EventUnknown || len(handlers) == 0 {
		return
	}
	l.received++
	l.logger.Tracef("event %s>>%s", ev.Name, ev.Payload)
	for _, h := range handlers {
		h(ev.Payload)
	}
}
