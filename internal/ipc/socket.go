package ipc

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyprpal/hyprrules/internal/util"
)

const (
	commandSocketName = ".socket.sock"
	eventSocketName   = ".socket2.sock"
)

// ErrNoWindow is returned by ActiveWindow when nothing is focused or the response cannot be decoded.
var ErrNoWindow = errors.New("no active window")

// NotifyIcon selects the icon of a desktop notification.
type NotifyIcon int

const (
	IconNone     NotifyIcon = -1
	IconWarning  NotifyIcon = 0
	IconInfo     NotifyIcon = 1
	IconHint     NotifyIcon = 2
	IconError    NotifyIcon = 3
	IconConfused NotifyIcon = 4
	IconOK       NotifyIcon = 5
)

// Hyprctl talks to the Hyprland control socket. Every request uses its own connection.
type Hyprctl struct {
	path   string
	logger *util.Logger
}

// NewHyprctl resolves the control socket of the running Hyprland instance.
func NewHyprctl(logger *util.Logger) (*Hyprctl, error) {
	path, err := socketPath(commandSocketName)
	if err != nil {
		return nil, err
	}
	return NewHyprctlAt(path, logger), nil
}

// NewHyprctlAt returns a client for the control socket at path.
func NewHyprctlAt(path string, logger *util.Logger) *Hyprctl {
	return &Hyprctl{path: path, logger: logger}
}

// SocketPath returns the control socket path.
func (h *Hyprctl) SocketPath() string {
	return h.path
}

// Probe checks that the control socket accepts connections.
func (h *Hyprctl) Probe() error {
	conn, err := net.Dial("unix", h.path)
	if err != nil {
		return fmt.Errorf("connect control socket: %w", err)
	}
	return conn.Close()
}

// Send writes command and returns the full response.
func (h *Hyprctl) Send(command string) (string, error) {
	conn, err := net.Dial("unix", h.path)
	if err != nil {
		return "", fmt.Errorf("connect control socket: %w", err)
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, command); err != nil {
		return "", fmt.Errorf("write %q: %w", command, err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		if err := uc.CloseWrite(); err != nil {
			return "", fmt.Errorf("close write side: %w", err)
		}
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read response to %q: %w", command, err)
	}
	return string(data), nil
}

// Dispatch runs a dispatcher command. Failures are logged and returned for accounting.
func (h *Hyprctl) Dispatch(command string) error {
	resp, err := h.Send("dispatch " + command)
	if err != nil {
		h.logger.Warnf("dispatch %s: %v", command, err)
		return err
	}
	h.logger.Tracef("dispatch %s -> %s", command, strings.TrimSpace(resp))
	return nil
}

// Notify shows a desktop notification through Hyprland.
func (h *Hyprctl) Notify(icon NotifyIcon, d time.Duration, color, message string) error {
	cmd := fmt.Sprintf("notify %d %d %s %s", icon, d.Milliseconds(), color, message)
	if _, err := h.Send(cmd); err != nil {
		h.logger.Warnf("notify: %v", err)
		return err
	}
	return nil
}

// ActiveWindow queries the focused window.
func (h *Hyprctl) ActiveWindow() (Window, error) {
	resp, err := h.Send("activewindow")
	if err != nil {
		return Window{}, err
	}
	win, err := ParseActiveWindow(resp)
	if err != nil {
		h.logger.Debugf("decode activewindow response: %v", err)
		return Window{}, ErrNoWindow
	}
	return win, nil
}

func socketPath(name string) (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE not set")
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("XDG_RUNTIME_DIR not set")
	}
	return filepath.Join(runtimeDir, "hypr", sig, name), nil
}
