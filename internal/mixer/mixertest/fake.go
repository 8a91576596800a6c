// Package mixertest provides an in-memory mixer.Backend for tests.
package mixertest

import (
	"sync"

	"github.com/Danondso/micmute/internal/mixer"
)

// Device is the simulated state of one input device.
type Device struct {
	Name   string
	Muted  bool
	Volume float32
	// NoMute and NoVolume simulate hardware without those controls.
	NoMute   bool
	NoVolume bool
}

type listener struct {
	target mixer.DeviceID
	prop   mixer.Property
	fn     func()
}

// Backend simulates the OS audio subsystem. Setters notify registered
// listeners synchronously, the way an OS property change would.
type Backend struct {
	mu        sync.Mutex
	devices   map[mixer.DeviceID]*Device
	def       mixer.DeviceID
	listeners map[int]listener
	nextID    int

	// KeepRemovedListeners makes remove funcs no-ops, simulating an OS that
	// still delivers notifications after unregistration.
	KeepRemovedListeners bool

	DefaultCalls int
	SetVolumes   []float32
	AddCalls     int
}

// New creates a Backend with no devices.
func New() *Backend {
	return &Backend{
		devices:   make(map[mixer.DeviceID]*Device),
		def:       mixer.InvalidDevice,
		listeners: make(map[int]listener),
	}
}

// AddDevice registers a device. The first device added becomes the default.
func (b *Backend) AddDevice(id mixer.DeviceID, d Device) {
	b.mu.Lock()
	dev := d
	b.devices[id] = &dev
	first := b.def == mixer.InvalidDevice
	if first {
		b.def = id
	}
	b.mu.Unlock()
	if first {
		b.Emit(mixer.SystemObject, mixer.PropDefaultInputDevice)
	}
}

// SetDefault switches the default input device and notifies.
func (b *Backend) SetDefault(id mixer.DeviceID) {
	b.mu.Lock()
	b.def = id
	b.mu.Unlock()
	b.Emit(mixer.SystemObject, mixer.PropDefaultInputDevice)
}

// RemoveDevice unplugs id. If it was the default, the lowest remaining
// device (or none) becomes the default and one notification fires.
func (b *Backend) RemoveDevice(id mixer.DeviceID) {
	b.mu.Lock()
	delete(b.devices, id)
	changed := b.def == id
	if changed {
		b.def = mixer.InvalidDevice
		for other := range b.devices {
			if b.def == mixer.InvalidDevice || other < b.def {
				b.def = other
			}
		}
	}
	b.mu.Unlock()
	if changed {
		b.Emit(mixer.SystemObject, mixer.PropDefaultInputDevice)
	}
}

// Device returns a copy of the simulated device state.
func (b *Backend) Device(id mixer.DeviceID) (Device, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[id]
	if !ok {
		return Device{}, false
	}
	return *d, true
}

// ListenerCount reports the active registrations.
func (b *Backend) ListenerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Emit delivers a property notification to every matching listener.
func (b *Backend) Emit(target mixer.DeviceID, prop mixer.Property) {
	b.mu.Lock()
	var fns []func()
	for _, l := range b.listeners {
		if l.target == target && l.prop == prop {
			fns = append(fns, l.fn)
		}
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (b *Backend) DefaultInputDevice() (mixer.DeviceID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.DefaultCalls++
	if b.def == mixer.InvalidDevice {
		return mixer.InvalidDevice, mixer.ErrNoDevice
	}
	return b.def, nil
}

func (b *Backend) lookup(id mixer.DeviceID) (*Device, error) {
	d, ok := b.devices[id]
	if !ok {
		return nil, mixer.ErrNoDevice
	}
	return d, nil
}

func (b *Backend) Muted(id mixer.DeviceID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.lookup(id)
	if err != nil {
		return false, err
	}
	if d.NoMute {
		return false, mixer.ErrUnsupported
	}
	return d.Muted, nil
}

func (b *Backend) SetMuted(id mixer.DeviceID, muted bool) error {
	b.mu.Lock()
	d, err := b.lookup(id)
	if err == nil && d.NoMute {
		err = mixer.ErrUnsupported
	}
	if err != nil {
		b.mu.Unlock()
		return err
	}
	changed := d.Muted != muted
	d.Muted = muted
	b.mu.Unlock()
	if changed {
		b.Emit(id, mixer.PropMute)
	}
	return nil
}

func (b *Backend) Volume(id mixer.DeviceID) (float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.lookup(id)
	if err != nil {
		return 0, err
	}
	if d.NoVolume {
		return 0, mixer.ErrUnsupported
	}
	return d.Volume, nil
}

func (b *Backend) SetVolume(id mixer.DeviceID, volume float32) error {
	b.mu.Lock()
	b.SetVolumes = append(b.SetVolumes, volume)
	d, err := b.lookup(id)
	if err == nil && d.NoVolume {
		err = mixer.ErrUnsupported
	}
	if err != nil {
		b.mu.Unlock()
		return err
	}
	changed := d.Volume != volume
	d.Volume = volume
	b.mu.Unlock()
	if changed {
		b.Emit(id, mixer.PropVolume)
	}
	return nil
}

func (b *Backend) DeviceName(id mixer.DeviceID) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.lookup(id)
	if err != nil {
		return "", err
	}
	return d.Name, nil
}

func (b *Backend) AddListener(target mixer.DeviceID, prop mixer.Property, fn func()) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.AddCalls++
	if prop != mixer.PropDefaultInputDevice {
		if _, err := b.lookup(target); err != nil {
			return nil, err
		}
	}
	id := b.nextID
	b.nextID++
	b.listeners[id] = listener{target: target, prop: prop, fn: fn}
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.KeepRemovedListeners {
			delete(b.listeners, id)
		}
	}, nil
}

func (b *Backend) Close() error { return nil }
