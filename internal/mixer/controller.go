package mixer

import (
	"io"
	"log"
)

// Controller reads and writes mute/volume of the default input device.
// Failures never panic: getters degrade to false/0 and setters report false.
type Controller struct {
	backend Backend
	logger  *log.Logger
}

// New creates a Controller over backend. A nil logger discards output.
func New(backend Backend, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Controller{backend: backend, logger: logger}
}

// DefaultInputDeviceValid reports whether the OS currently resolves a
// default input device.
func (c *Controller) DefaultInputDeviceValid() bool {
	id, err := c.backend.DefaultInputDevice()
	return err == nil && id != InvalidDevice
}

// DefaultInputDevice returns the current default input device handle, or
// InvalidDevice. Callers check DefaultInputDeviceValid first.
func (c *Controller) DefaultInputDevice() DeviceID {
	id, err := c.backend.DefaultInputDevice()
	if err != nil {
		c.logger.Printf("mixer: default input device: %v", err)
		return InvalidDevice
	}
	return id
}

// current resolves the device for a single get/set call.
func (c *Controller) current(op string) (DeviceID, bool) {
	id, err := c.backend.DefaultInputDevice()
	if err != nil || id == InvalidDevice {
		if err == nil {
			err = ErrNoDevice
		}
		c.logger.Printf("mixer: %s: %v", op, err)
		return InvalidDevice, false
	}
	return id, true
}

// Muted returns the mute state of the default input device. It reports
// false when the device is unavailable.
func (c *Controller) Muted() bool {
	id, ok := c.current("get mute")
	if !ok {
		return false
	}
	muted, err := c.backend.Muted(id)
	if err != nil {
		c.logger.Printf("mixer: get mute on device %s: %v", id, err)
		return false
	}
	return muted
}

// SetMuted sets the mute state and reports whether the OS accepted it.
func (c *Controller) SetMuted(muted bool) bool {
	id, ok := c.current("set mute")
	if !ok {
		return false
	}
	if err := c.backend.SetMuted(id, muted); err != nil {
		c.logger.Printf("mixer: set mute=%v on device %s: %v", muted, id, err)
		return false
	}
	return true
}

// Volume returns the scalar volume (0..1) of the default input device, or
// 0 when unavailable.
func (c *Controller) Volume() float32 {
	id, ok := c.current("get volume")
	if !ok {
		return 0
	}
	v, err := c.backend.Volume(id)
	if err != nil {
		c.logger.Printf("mixer: get volume on device %s: %v", id, err)
		return 0
	}
	return clampVolume(v)
}

// SetVolume clamps volume to [0,1], applies it and reports success.
func (c *Controller) SetVolume(volume float32) bool {
	id, ok := c.current("set volume")
	if !ok {
		return false
	}
	v := clampVolume(volume)
	if err := c.backend.SetVolume(id, v); err != nil {
		c.logger.Printf("mixer: set volume=%.2f on device %s: %v", v, id, err)
		return false
	}
	return true
}

// DeviceName returns a human-readable name for the default input device.
func (c *Controller) DeviceName() string {
	id, ok := c.current("device name")
	if !ok {
		return ""
	}
	name, err := c.backend.DeviceName(id)
	if err != nil {
		c.logger.Printf("mixer: device name for %s: %v", id, err)
		return ""
	}
	return name
}

// Listen registers fn for changes of prop on target.
func (c *Controller) Listen(target DeviceID, prop Property, fn func()) (func(), error) {
	return c.backend.AddListener(target, prop, fn)
}
