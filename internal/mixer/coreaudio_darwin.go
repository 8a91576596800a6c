//go:build darwin

package mixer

/*
#cgo LDFLAGS: -framework CoreAudio -framework CoreFoundation
#include "coreaudio_darwin.h"
*/
import "C"

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// CoreAudio is a Backend over the macOS CoreAudio property API.
type CoreAudio struct {
	logger *log.Logger
}

// NewCoreAudio creates a CoreAudio backend.
func NewCoreAudio(logger *log.Logger) *CoreAudio {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &CoreAudio{logger: logger}
}

// osStatusError maps an OSStatus onto the mixer error taxonomy.
func osStatusError(op string, st C.OSStatus) error {
	if st == 0 {
		return nil
	}
	switch st {
	case C.kAudioHardwareBadObjectError, C.kAudioHardwareBadDeviceError:
		return fmt.Errorf("%s: status %d: %w", op, int32(st), ErrNoDevice)
	case C.kAudioHardwareUnknownPropertyError, C.kAudioHardwareUnsupportedOperationError:
		return fmt.Errorf("%s: status %d: %w", op, int32(st), ErrUnsupported)
	case C.kAudioHardwareIllegalOperationError, C.kAudioDevicePermissionsError:
		return fmt.Errorf("%s: status %d: %w", op, int32(st), ErrPermission)
	}
	return fmt.Errorf("%s: status %d", op, int32(st))
}

// device validates that id still names a live device.
func (c *CoreAudio) device(id DeviceID) (C.AudioObjectID, error) {
	if id == InvalidDevice || id == 0 {
		return 0, ErrNoDevice
	}
	dev := C.AudioObjectID(id)
	if C.mm_device_alive(dev) == 0 {
		return 0, fmt.Errorf("device %s: %w", id, ErrNoDevice)
	}
	return dev, nil
}

func (c *CoreAudio) DefaultInputDevice() (DeviceID, error) {
	var dev C.AudioObjectID
	if err := osStatusError("default input device", C.mm_default_input_device(&dev)); err != nil {
		return InvalidDevice, err
	}
	if dev == C.kAudioObjectUnknown {
		return InvalidDevice, ErrNoDevice
	}
	return DeviceID(dev), nil
}

func (c *CoreAudio) Muted(id DeviceID) (bool, error) {
	dev, err := c.device(id)
	if err != nil {
		return false, err
	}
	var muted C.UInt32
	if err := osStatusError("get mute", C.mm_get_mute(dev, &muted)); err != nil {
		return false, err
	}
	return muted != 0, nil
}

func (c *CoreAudio) SetMuted(id DeviceID, muted bool) error {
	dev, err := c.device(id)
	if err != nil {
		return err
	}
	var v C.UInt32
	if muted {
		v = 1
	}
	return osStatusError("set mute", C.mm_set_mute(dev, v))
}

func (c *CoreAudio) Volume(id DeviceID) (float32, error) {
	dev, err := c.device(id)
	if err != nil {
		return 0, err
	}
	var v C.Float32
	if err := osStatusError("get volume", C.mm_get_volume(dev, &v)); err != nil {
		return 0, err
	}
	return float32(v), nil
}

func (c *CoreAudio) SetVolume(id DeviceID, volume float32) error {
	dev, err := c.device(id)
	if err != nil {
		return err
	}
	return osStatusError("set volume", C.mm_set_volume(dev, C.Float32(clampVolume(volume))))
}

func (c *CoreAudio) DeviceName(id DeviceID) (string, error) {
	dev, err := c.device(id)
	if err != nil {
		return "", err
	}
	var buf [256]C.char
	if err := osStatusError("device name", C.mm_device_name(dev, &buf[0], C.UInt32(len(buf)))); err != nil {
		return "", err
	}
	return C.GoString(&buf[0]), nil
}

// listenerRegistry maps the opaque client data handed to CoreAudio back to
// Go callbacks. CoreAudio may deliver a notification that was already in
// flight when the listener was removed; unknown handles are ignored.
var listenerRegistry = struct {
	sync.Mutex
	next uintptr
	fns  map[uintptr]func()
}{fns: make(map[uintptr]func())}

//export mixerPropertyChanged
func mixerPropertyChanged(handle C.uintptr_t) {
	listenerRegistry.Lock()
	fn := listenerRegistry.fns[uintptr(handle)]
	listenerRegistry.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *CoreAudio) AddListener(target DeviceID, prop Property, fn func()) (func(), error) {
	obj := C.AudioObjectID(target)
	if prop != PropDefaultInputDevice {
		dev, err := c.device(target)
		if err != nil {
			return nil, err
		}
		obj = dev
	}

	listenerRegistry.Lock()
	listenerRegistry.next++
	handle := listenerRegistry.next
	listenerRegistry.fns[handle] = fn
	listenerRegistry.Unlock()

	var elem C.UInt32
	st := C.mm_add_listener(obj, C.int(prop), C.uintptr_t(handle), &elem)
	if err := osStatusError("add "+prop.String()+" listener", st); err != nil {
		listenerRegistry.Lock()
		delete(listenerRegistry.fns, handle)
		listenerRegistry.Unlock()
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			listenerRegistry.Lock()
			delete(listenerRegistry.fns, handle)
			listenerRegistry.Unlock()
			st := C.mm_remove_listener(obj, C.int(prop), elem, C.uintptr_t(handle))
			if err := osStatusError("remove "+prop.String()+" listener", st); err != nil {
				c.logger.Printf("coreaudio: %v", err)
			}
		})
	}, nil
}

func (c *CoreAudio) Close() error { return nil }
