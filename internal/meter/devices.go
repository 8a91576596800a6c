package meter

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Device describes a capture-capable audio device.
type Device struct {
	Name       string
	HostAPI    string
	Channels   int
	SampleRate float64
	Default    bool
}

// InputDevices lists the devices that can capture audio, marking the
// default input. portaudio.Initialize() must have been called.
func InputDevices() ([]Device, error) {
	all, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	def, err := portaudio.DefaultInputDevice()
	if err != nil {
		def = nil
	}
	return inputDevices(all, def), nil
}

func inputDevices(all []*portaudio.DeviceInfo, def *portaudio.DeviceInfo) []Device {
	var out []Device
	for _, d := range all {
		if d == nil || d.MaxInputChannels <= 0 {
			continue
		}
		dev := Device{
			Name:       d.Name,
			Channels:   d.MaxInputChannels,
			SampleRate: d.DefaultSampleRate,
			Default:    def != nil && d.Name == def.Name && d.HostApi == def.HostApi,
		}
		if d.HostApi != nil {
			dev.HostAPI = d.HostApi.Name
		}
		out = append(out, dev)
	}
	return out
}

// MicAvailable returns true if PortAudio can find a default input device.
// portaudio.Initialize() must have been called before using this.
func MicAvailable() bool {
	dev, err := portaudio.DefaultInputDevice()
	return err == nil && dev != nil && dev.MaxInputChannels > 0
}

// MicName returns the PortAudio name of the default input device, or "" if
// unavailable.
func MicName() string {
	dev, err := portaudio.DefaultInputDevice()
	if err != nil || dev == nil {
		return ""
	}
	return dev.Name
}
