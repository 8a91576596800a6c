//go:build darwin

package mixer

import "log"

func defaultBackend(logger *log.Logger) Backend {
	return NewCoreAudio(logger)
}

func newCoreAudioBackend(logger *log.Logger) (Backend, error) {
	return NewCoreAudio(logger), nil
}
