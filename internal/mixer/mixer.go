// Package mixer controls mute and volume of the system default audio input
// device. The operating system stays the source of truth: every query goes
// to the Backend, nothing is cached here.
package mixer

import (
	"errors"
	"math"
	"strconv"
)

// DeviceID is the OS handle for an audio device.
type DeviceID uint32

// InvalidDevice is reported when there is no usable default input device.
const InvalidDevice DeviceID = math.MaxUint32

// SystemObject is the listener target for system-wide properties such as
// the default input device.
const SystemObject DeviceID = 1

func (id DeviceID) String() string {
	if id == InvalidDevice {
		return "none"
	}
	return strconv.FormatUint(uint64(id), 10)
}

// Property identifies an observable audio property.
type Property int

const (
	PropDefaultInputDevice Property = iota
	PropMute
	PropVolume
)

func (p Property) String() string {
	switch p {
	case PropDefaultInputDevice:
		return "default-input-device"
	case PropMute:
		return "mute"
	case PropVolume:
		return "volume"
	default:
		return "unknown"
	}
}

var (
	// ErrNoDevice means there is no default input device, or the handle
	// no longer refers to a live device.
	ErrNoDevice = errors.New("no input device")
	// ErrUnsupported means the device (or platform) lacks the property.
	ErrUnsupported = errors.New("property not supported")
	// ErrPermission means the OS refused access.
	ErrPermission = errors.New("permission denied")
)

// Backend is the adapter over the OS audio subsystem.
type Backend interface {
	// DefaultInputDevice resolves the current default input device.
	DefaultInputDevice() (DeviceID, error)
	Muted(id DeviceID) (bool, error)
	SetMuted(id DeviceID, muted bool) error
	// Volume returns the scalar input volume in [0,1].
	Volume(id DeviceID) (float32, error)
	SetVolume(id DeviceID, volume float32) error
	DeviceName(id DeviceID) (string, error)
	// AddListener registers fn for changes of prop on target. fn may run on
	// an OS-owned thread. The returned func removes the registration and is
	// safe to call more than once.
	AddListener(target DeviceID, prop Property, fn func()) (remove func(), err error)
	Close() error
}

// clampVolume limits v to [0,1]. NaN maps to 0.
func clampVolume(v float32) float32 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
