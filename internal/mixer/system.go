package mixer

import (
	"fmt"
	"log"
)

// Backend names accepted by NewSystemBackend.
const (
	BackendAuto      = "auto"
	BackendCoreAudio = "coreaudio"
	BackendPulse     = "pulse"
)

// NewSystemBackend returns the backend called name, or the platform
// default for "auto" and "".
func NewSystemBackend(name string, logger *log.Logger) (Backend, error) {
	switch name {
	case "", BackendAuto:
		return defaultBackend(logger), nil
	case BackendPulse:
		return NewPulse(logger), nil
	case BackendCoreAudio:
		return newCoreAudioBackend(logger)
	}
	return nil, fmt.Errorf("unknown audio backend %q (valid: auto, coreaudio, pulse)", name)
}
