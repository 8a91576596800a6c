// Package app ties the mixer, the change listener and a status surface
// together: it tracks the volume a mute zeroed so unmute can restore it.
package app

import (
	"io"
	"log"
	"sync"

	"github.com/Danondso/micmute/internal/mixer"
	"github.com/Danondso/micmute/internal/state"
)

// Surface renders the microphone state. Its methods are only called through
// the Dispatcher.
type Surface interface {
	SetDevice(id mixer.DeviceID, name string, valid bool)
	SetMuted(muted bool)
	SetVolume(volume float32)
}

// Dispatcher runs UI work on the UI-owning thread.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(fn func())

func (f DispatchFunc) Dispatch(fn func()) { f(fn) }

// Inline runs UI work on the calling goroutine. Use it when the surface
// serializes updates itself.
var Inline = DispatchFunc(func(fn func()) { fn() })

// Feedback is told about mute transitions (sounds, desktop notifications).
type Feedback interface {
	MuteChanged(muted bool)
}

// StateStore persists the last device and volume.
type StateStore interface {
	Load() (state.State, bool, error)
	Save(state.State) error
}

// Options configures a Muter. Zero values are usable.
type Options struct {
	Dispatcher Dispatcher
	Feedback   []Feedback
	Store      StateStore
	Logger     *log.Logger
}

// Muter implements listener.Delegate and the mute toggle.
type Muter struct {
	ctrl     *mixer.Controller
	surface  Surface
	dispatch Dispatcher
	feedback []Feedback
	store    StateStore
	logger   *log.Logger

	mu sync.Mutex
	// programmatic is set while ToggleMute changes the volume so those
	// volume notifications do not overwrite lastVolume. The next mute
	// notification clears it.
	programmatic bool
	lastVolume   float32
	lastDevice   mixer.DeviceID
	muted        bool
	mutedKnown   bool
}

// New creates a Muter that renders to surface.
func New(ctrl *mixer.Controller, surface Surface, opts Options) *Muter {
	m := &Muter{
		ctrl:       ctrl,
		surface:    surface,
		dispatch:   opts.Dispatcher,
		feedback:   opts.Feedback,
		store:      opts.Store,
		logger:     opts.Logger,
		lastDevice: mixer.InvalidDevice,
	}
	if m.dispatch == nil {
		m.dispatch = Inline
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard, "", 0)
	}
	return m
}

// LastVolume returns the volume an unmute restores.
func (m *Muter) LastVolume() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastVolume
}

// LastDevice returns the last known default input device.
func (m *Muter) LastDevice() mixer.DeviceID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastDevice
}

// LoadCurrentState reads the default device and pushes it to the surface.
func (m *Muter) LoadCurrentState() {
	if !m.ctrl.DefaultInputDeviceValid() {
		m.logger.Printf("app: no default input device")
		m.ui(func() { m.surface.SetDevice(mixer.InvalidDevice, "", false) })
		return
	}

	id := m.ctrl.DefaultInputDevice()
	volume := m.ctrl.Volume()
	muted := m.ctrl.Muted()
	name := m.ctrl.DeviceName()

	m.mu.Lock()
	m.programmatic = false
	m.lastDevice = id
	m.lastVolume = volume
	m.mu.Unlock()

	m.logger.Printf("app: device %s %q muted=%v volume=%.2f", id, name, muted, volume)
	m.ui(func() {
		m.surface.SetDevice(id, name, true)
		m.surface.SetVolume(volume)
	})
	m.OnDefaultInputDeviceMuted(muted)
}

// Restore takes the persisted volume when the persisted device is still the
// default. Call it after LoadCurrentState.
func (m *Muter) Restore() {
	if m.store == nil || !m.ctrl.DefaultInputDeviceValid() {
		return
	}
	st, ok, err := m.store.Load()
	if err != nil {
		m.logger.Printf("app: load state: %v", err)
		return
	}
	if !ok || mixer.DeviceID(st.LastInputDevice) != m.ctrl.DefaultInputDevice() {
		return
	}

	volume := st.LastVolume
	if volume <= 0 {
		volume = m.ctrl.Volume()
	}
	m.mu.Lock()
	m.lastVolume = volume
	m.mu.Unlock()
	m.logger.Printf("app: restored last volume %.2f for device %d", volume, st.LastInputDevice)
}

// Save persists the last device and volume when both are usable.
func (m *Muter) Save() error {
	if m.store == nil {
		return nil
	}
	m.mu.Lock()
	id, volume := m.lastDevice, m.lastVolume
	m.mu.Unlock()
	if id == mixer.InvalidDevice || volume <= 0 {
		return nil
	}
	return m.store.Save(state.State{LastInputDevice: uint32(id), LastVolume: volume})
}

// ToggleMute mutes by zeroing the volume and setting mute, or unmutes by
// restoring the last volume. It reports whether the device accepted it.
func (m *Muter) ToggleMute() bool {
	if !m.ctrl.DefaultInputDeviceValid() {
		return false
	}

	if !m.ctrl.Muted() {
		m.setProgrammatic(true)
		m.ctrl.SetVolume(0)
		if !m.ctrl.SetMuted(true) {
			m.setProgrammatic(false)
			return false
		}
		return true
	}

	m.mu.Lock()
	last := m.lastVolume
	m.mu.Unlock()
	if last > 0 {
		m.setProgrammatic(true)
		m.ctrl.SetVolume(last)
	}
	if !m.ctrl.SetMuted(false) {
		m.setProgrammatic(false)
		return false
	}
	return true
}

// AdjustVolume changes the input volume by delta.
func (m *Muter) AdjustVolume(delta float32) bool {
	if !m.ctrl.DefaultInputDeviceValid() {
		return false
	}
	return m.ctrl.SetVolume(m.ctrl.Volume() + delta)
}

func (m *Muter) setProgrammatic(v bool) {
	m.mu.Lock()
	m.programmatic = v
	m.mu.Unlock()
}

func (m *Muter) ui(fn func()) {
	if m.surface == nil {
		return
	}
	m.dispatch.Dispatch(fn)
}

// OnDefaultInputDeviceChanged implements listener.Delegate.
func (m *Muter) OnDefaultInputDeviceChanged(id mixer.DeviceID) {
	m.mu.Lock()
	m.lastDevice = id
	m.mutedKnown = false
	m.mu.Unlock()
	m.LoadCurrentState()
}

// OnDefaultInputDeviceVolumeChanged implements listener.Delegate.
func (m *Muter) OnDefaultInputDeviceVolumeChanged(volume float32) {
	m.mu.Lock()
	if !m.programmatic {
		m.lastVolume = volume
	}
	m.mu.Unlock()
	m.ui(func() { m.surface.SetVolume(volume) })
}

// OnDefaultInputDeviceMuted implements listener.Delegate.
func (m *Muter) OnDefaultInputDeviceMuted(muted bool) {
	m.mu.Lock()
	m.programmatic = false
	changed := m.mutedKnown && m.muted != muted
	m.muted, m.mutedKnown = muted, true
	m.mu.Unlock()

	m.ui(func() { m.surface.SetMuted(muted) })
	if changed {
		for _, f := range m.feedback {
			f.MuteChanged(muted)
		}
	}
}
