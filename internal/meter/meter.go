// Package meter samples the default input device through PortAudio to show
// a live level, and lists the available input devices.
package meter

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// ErrRunning is returned by Start on a running meter.
var ErrRunning = errors.New("meter already running")

// Meter captures audio from the default input device and keeps the RMS of
// the most recent chunk. Samples are discarded. Call portaudio.Initialize()
// before using this.
type Meter struct {
	mu       sync.Mutex
	stream   *portaudio.Stream
	running  bool
	done     chan struct{} // closed when readLoop should exit
	loopDone chan struct{} // closed when readLoop has exited
	level    uint64        // atomic float64 bits; RMS of last chunk (0.0–1.0)
}

// New creates an idle Meter.
func New() *Meter {
	return &Meter{}
}

// Start opens the default input stream and begins sampling.
func (m *Meter) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrRunning
	}

	defIn, err := portaudio.DefaultInputDevice()
	if err != nil {
		return fmt.Errorf("default input device: %w", err)
	}

	channels := defIn.MaxInputChannels
	if channels > 2 {
		channels = 2
	}
	if channels < 1 {
		channels = 1
	}

	sampleRate := defIn.DefaultSampleRate
	framesPerBuffer := int(sampleRate / 10) // ~100ms chunks
	inputBuf := make([]int16, framesPerBuffer*channels)

	stream, err := portaudio.OpenDefaultStream(channels, 0, sampleRate, framesPerBuffer, &inputBuf)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start stream: %w", err)
	}

	m.stream = stream
	m.running = true
	m.done = make(chan struct{})
	m.loopDone = make(chan struct{})

	go m.readLoop(stream, inputBuf, channels, m.done, m.loopDone)
	return nil
}

func (m *Meter) readLoop(stream *portaudio.Stream, inputBuf []int16, channels int, done, loopDone chan struct{}) {
	defer close(loopDone)

	for {
		select {
		case <-done:
			return
		default:
		}

		if err := stream.Read(); err != nil {
			// Overflow drops a chunk; anything else ends sampling.
			if errors.Is(err, portaudio.InputOverflowed) {
				continue
			}
			atomic.StoreUint64(&m.level, math.Float64bits(0))
			return
		}
		atomic.StoreUint64(&m.level, math.Float64bits(computeRMS(inputBuf, channels)))
	}
}

// Stop ends sampling and closes the stream. Stopping an idle meter is a no-op.
func (m *Meter) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	done, loopDone, stream := m.done, m.loopDone, m.stream
	m.stream = nil
	m.mu.Unlock()

	// Wait for readLoop before closing so stream.Read() never races Close.
	close(done)
	<-loopDone

	stream.Stop()
	stream.Close()
	atomic.StoreUint64(&m.level, math.Float64bits(0))
}

// Running reports whether the meter is sampling.
func (m *Meter) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Level returns the RMS amplitude of the most recently captured chunk,
// in the range [0.0, 1.0]. Safe to call from any goroutine.
func (m *Meter) Level() float64 {
	return math.Float64frombits(atomic.LoadUint64(&m.level))
}

// computeRMS computes the root-mean-square of int16 samples normalized to [0.0, 1.0].
// For stereo input, averages the two channels before computing.
func computeRMS(buf []int16, channels int) float64 {
	if len(buf) == 0 || channels < 1 {
		return 0
	}
	var sum float64
	n := len(buf) / channels
	if n == 0 {
		return 0
	}
	for i := 0; i+channels-1 < len(buf); i += channels {
		var v float64
		if channels == 2 {
			v = float64(int32(buf[i])+int32(buf[i+1])) / 2.0
		} else {
			v = float64(buf[i])
		}
		v /= 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}
