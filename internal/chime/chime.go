// Package chime plays a short tone when the microphone is muted or unmuted.
package chime

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

// Player manages audio chime playback.
type Player struct {
	muteData   []byte
	unmuteData []byte
	enabled    atomic.Bool
	logger     *log.Logger
	initOnce   sync.Once
	initErr    error
}

// New creates a Player. If mutePath/unmutePath are empty, synthesized tones
// are used. If enabled is false, MuteChanged is a no-op.
func New(mutePath, unmutePath string, enabled bool, logger *log.Logger) (*Player, error) {
	p := &Player{logger: logger}
	p.enabled.Store(enabled)

	var err error
	if p.muteData, err = load(mutePath, muteTone); err != nil {
		return nil, fmt.Errorf("mute chime: %w", err)
	}
	if p.unmuteData, err = load(unmutePath, unmuteTone); err != nil {
		return nil, fmt.Errorf("unmute chime: %w", err)
	}
	return p, nil
}

func load(path string, fallback func() ([]byte, error)) ([]byte, error) {
	if path == "" {
		return fallback()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// SetEnabled turns playback on or off.
func (p *Player) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// Enabled reports whether playback is on.
func (p *Player) Enabled() bool {
	return p.enabled.Load()
}

func (p *Player) initSpeaker(format beep.Format) {
	p.initOnce.Do(func() {
		p.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
}

func (p *Player) play(data []byte) {
	if !p.enabled.Load() || len(data) == 0 {
		return
	}

	go func() {
		streamer, format, err := wav.Decode(bytes.NewReader(data))
		if err != nil {
			if p.logger != nil {
				p.logger.Printf("chime: wav decode error: %v", err)
			}
			return
		}
		defer streamer.Close()

		p.initSpeaker(format)
		if p.initErr != nil {
			if p.logger != nil {
				p.logger.Printf("chime: speaker init error: %v", p.initErr)
			}
			return
		}

		done := make(chan struct{})
		speaker.Play(beep.Seq(streamer, beep.Callback(func() {
			close(done)
		})))
		<-done
	}()
}

// MuteChanged plays the mute or unmute chime (non-blocking).
func (p *Player) MuteChanged(muted bool) {
	if muted {
		p.play(p.muteData)
		return
	}
	p.play(p.unmuteData)
}
