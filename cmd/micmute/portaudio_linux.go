//go:build linux

package main

import (
	"os"

	"github.com/gordonklaus/portaudio"
	"golang.org/x/sys/unix"
)

// initPortAudio suppresses ALSA/JACK noise during PortAudio initialization
// by temporarily redirecting stderr to /dev/null, then calls portaudio.Initialize().
func initPortAudio() error {
	stderrFd := int(os.Stderr.Fd()) //nolint:gosec // fd fits in int on all supported platforms
	savedStderr, err := unix.Dup(stderrFd)
	if err != nil {
		// If we can't dup stderr, just initialize without suppression
		return portaudio.Initialize()
	}
	devNull, err := os.Open(os.DevNull)
	if err != nil {
		_ = unix.Close(savedStderr)
		return portaudio.Initialize()
	}
	_ = unix.Dup2(int(devNull.Fd()), stderrFd)
	_ = devNull.Close()

	initErr := portaudio.Initialize()

	// Restore stderr
	_ = unix.Dup2(savedStderr, stderrFd)
	_ = unix.Close(savedStderr)

	return initErr
}
