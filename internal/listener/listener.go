// Package listener forwards OS notifications about the default input device
// to a single delegate.
package listener

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Danondso/micmute/internal/mixer"
)

// Delegate receives default input device changes. Callbacks may run on an
// OS-owned thread; implementations marshal UI work themselves. A delegate
// must not call Stop from inside a callback.
type Delegate interface {
	OnDefaultInputDeviceChanged(id mixer.DeviceID)
	OnDefaultInputDeviceMuted(muted bool)
	OnDefaultInputDeviceVolumeChanged(volume float32)
}

// Listener subscribes to default-device, mute and volume notifications and
// invokes exactly one delegate callback per notification.
type Listener struct {
	ctrl   *mixer.Controller
	logger *log.Logger

	mu       sync.Mutex
	delegate Delegate
	started  bool
	// bound counts device bindings; property callbacks from an earlier
	// binding are dropped.
	bound        uint64
	removeDevice func()
	removeProps  []func()

	// dispatchMu serializes delegate calls and lets Stop wait for an
	// in-flight one.
	dispatchMu sync.Mutex
}

// New creates a Listener reading values through ctrl.
func New(ctrl *mixer.Controller, logger *log.Logger) *Listener {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Listener{ctrl: ctrl, logger: logger}
}

// SetDelegate registers d as the single delegate, replacing any previous
// one. The listener does not manage the delegate's lifetime; Stop drops it.
func (l *Listener) SetDelegate(d Delegate) {
	l.mu.Lock()
	l.delegate = d
	l.mu.Unlock()
}

// Start registers the OS listeners. Calling Start on a running listener is
// a no-op.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return nil
	}

	remove, err := l.ctrl.Listen(mixer.SystemObject, mixer.PropDefaultInputDevice, l.deviceChanged)
	if err != nil {
		return fmt.Errorf("listen for default input device: %w", err)
	}
	l.removeDevice = remove
	l.started = true

	if l.ctrl.DefaultInputDeviceValid() {
		l.bindDevice(l.ctrl.DefaultInputDevice())
	}
	l.logger.Printf("listener: started")
	return nil
}

// bindDevice moves the mute and volume listeners to id and returns the new
// binding. Called with l.mu held.
func (l *Listener) bindDevice(id mixer.DeviceID) uint64 {
	l.unbindDevice()
	l.bound++
	gen := l.bound
	if id == mixer.InvalidDevice {
		return gen
	}

	remove, err := l.ctrl.Listen(id, mixer.PropMute, func() { l.muteChanged(gen) })
	if err != nil {
		l.logger.Printf("listener: mute notifications for device %s: %v", id, err)
	} else {
		l.removeProps = append(l.removeProps, remove)
	}

	remove, err = l.ctrl.Listen(id, mixer.PropVolume, func() { l.volumeChanged(gen) })
	if err != nil {
		l.logger.Printf("listener: volume notifications for device %s: %v", id, err)
	} else {
		l.removeProps = append(l.removeProps, remove)
	}
	return gen
}

// unbindDevice removes the per-device listeners. Called with l.mu held.
func (l *Listener) unbindDevice() {
	for _, remove := range l.removeProps {
		remove()
	}
	l.removeProps = nil
}

// delegateFor returns the delegate if the listener runs and gen is the
// live binding. gen 0 matches any binding.
func (l *Listener) delegateFor(gen uint64) Delegate {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started || (gen != 0 && gen != l.bound) {
		return nil
	}
	return l.delegate
}

func (l *Listener) deviceChanged() {
	id := mixer.InvalidDevice
	if l.ctrl.DefaultInputDeviceValid() {
		id = l.ctrl.DefaultInputDevice()
	}

	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return
	}
	l.bindDevice(id)
	l.mu.Unlock()

	l.logger.Printf("listener: default input device changed to %s", id)
	l.dispatch(0, func(d Delegate) { d.OnDefaultInputDeviceChanged(id) })
}

func (l *Listener) muteChanged(gen uint64) {
	if l.delegateFor(gen) == nil {
		return
	}
	muted := l.ctrl.Muted()
	l.dispatch(gen, func(d Delegate) { d.OnDefaultInputDeviceMuted(muted) })
}

func (l *Listener) volumeChanged(gen uint64) {
	if l.delegateFor(gen) == nil {
		return
	}
	volume := l.ctrl.Volume()
	l.dispatch(gen, func(d Delegate) { d.OnDefaultInputDeviceVolumeChanged(volume) })
}

// dispatch invokes call on the delegate unless the listener stopped or
// rebound to another device in the meantime.
func (l *Listener) dispatch(gen uint64, call func(Delegate)) {
	l.dispatchMu.Lock()
	defer l.dispatchMu.Unlock()
	if d := l.delegateFor(gen); d != nil {
		call(d)
	}
}

// Stop removes every OS listener and drops the delegate. No delegate
// callback runs after Stop returns.
func (l *Listener) Stop() {
	l.mu.Lock()
	wasStarted := l.started
	l.started = false
	l.delegate = nil
	l.unbindDevice()
	if l.removeDevice != nil {
		l.removeDevice()
		l.removeDevice = nil
	}
	l.mu.Unlock()

	// A callback that passed its check before Stop finishes first.
	l.dispatchMu.Lock()
	defer l.dispatchMu.Unlock()
	if wasStarted {
		l.logger.Printf("listener: stopped")
	}
}
