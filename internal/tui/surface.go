package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Danondso/micmute/internal/mixer"
)

// Sender delivers a message into a running program. *tea.Program
// implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Surface forwards microphone state changes into the Bubble Tea loop, which
// owns the model. Send blocks until the loop accepts the message and returns
// immediately once the program has exited.
type Surface struct {
	program Sender
}

// NewSurface creates a Surface sending to p.
func NewSurface(p Sender) *Surface {
	return &Surface{program: p}
}

func (s *Surface) SetDevice(id mixer.DeviceID, name string, valid bool) {
	s.program.Send(DeviceMsg{ID: id, Name: name, Valid: valid})
}

func (s *Surface) SetMuted(muted bool) {
	s.program.Send(MuteMsg{Muted: muted})
}

func (s *Surface) SetVolume(volume float32) {
	s.program.Send(VolumeMsg{Volume: volume})
}

// SendFunc adapts a function to Sender.
type SendFunc func(msg tea.Msg)

func (f SendFunc) Send(msg tea.Msg) { f(msg) }
