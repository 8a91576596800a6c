//go:build !linux

package main

import "github.com/gordonklaus/portaudio"

// initPortAudio initializes PortAudio. Only ALSA/JACK print init noise, so
// no stderr suppression is needed here.
func initPortAudio() error {
	return portaudio.Initialize()
}
