//go:build !darwin

package mixer

import (
	"fmt"
	"log"
	"runtime"
)

// defaultBackend uses pactl on every non-darwin platform; where pactl is
// missing its calls fail with ErrUnsupported.
func defaultBackend(logger *log.Logger) Backend {
	if runtime.GOOS == "windows" {
		return Unsupported{}
	}
	return NewPulse(logger)
}

func newCoreAudioBackend(*log.Logger) (Backend, error) {
	return nil, fmt.Errorf("coreaudio backend on %s: %w", runtime.GOOS, ErrUnsupported)
}
