// Package notify posts desktop notifications on mute changes through the
// org.freedesktop.Notifications D-Bus interface.
package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
	notifyCall = busName + ".Notify"

	callTimeout = time.Second
	// expireMs is how long the notification stays on screen.
	expireMs int32 = 2000
)

// caller is the subset of dbus.BusObject used here.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Notifier shows one notification per mute change. Each new notification
// replaces the previous one so they do not stack up.
type Notifier struct {
	obj     caller
	appName string
	logger  *log.Logger
	enabled atomic.Bool

	mu       sync.Mutex
	replaces uint32
}

// New connects to the session bus.
func New(enabled bool, logger *log.Logger) (*Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	return newNotifier(conn.Object(busName, objectPath), enabled, logger), nil
}

func newNotifier(obj caller, enabled bool, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	n := &Notifier{obj: obj, appName: "micmute", logger: logger}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled turns notifications on or off.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// MuteChanged posts "Microphone muted" or "Microphone live".
func (n *Notifier) MuteChanged(muted bool) {
	if !n.enabled.Load() {
		return
	}
	summary, icon := "Microphone live", "audio-input-microphone"
	if muted {
		summary, icon = "Microphone muted", "microphone-sensitivity-muted"
	}
	if err := n.post(summary, icon); err != nil {
		n.logger.Printf("notify: %v", err)
	}
}

func (n *Notifier) post(summary, icon string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	hints := map[string]dbus.Variant{
		"category":  dbus.MakeVariant("device"),
		"transient": dbus.MakeVariant(true),
	}
	call := n.obj.CallWithContext(ctx, notifyCall, 0,
		n.appName, n.replaces, icon, summary, "", []string{}, hints, expireMs)
	if call.Err != nil {
		return fmt.Errorf("notify %q: %w", summary, call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify %q: read id: %w", summary, err)
	}
	n.replaces = id
	return nil
}
