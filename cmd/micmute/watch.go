package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Danondso/micmute/internal/listener"
	"github.com/Danondso/micmute/internal/mixer"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print device, mute and volume changes until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watch(ctx, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// printer is a listener.Delegate that writes one line per notification.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printer) line(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s  %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

func (p *printer) OnDefaultInputDeviceChanged(id mixer.DeviceID) {
	name := ""
	if id != mixer.InvalidDevice {
		name = ctrl.DeviceName()
	}
	p.line("device  %s", deviceLabel(id, name))
}

func (p *printer) OnDefaultInputDeviceMuted(muted bool) {
	if muted {
		p.line("mute    muted")
		return
	}
	p.line("mute    live")
}

func (p *printer) OnDefaultInputDeviceVolumeChanged(volume float32) {
	p.line("volume  %d%%", percent(volume))
}

func watch(ctx context.Context, out io.Writer) error {
	l := listener.New(ctrl, dbg)
	p := &printer{out: out}
	l.SetDelegate(p)
	if err := l.Start(); err != nil {
		return err
	}
	defer l.Stop()

	if ctrl.DefaultInputDeviceValid() {
		p.line("device  %s", deviceLabel(ctrl.DefaultInputDevice(), ctrl.DeviceName()))
		p.OnDefaultInputDeviceMuted(ctrl.Muted())
		p.OnDefaultInputDeviceVolumeChanged(ctrl.Volume())
	} else {
		p.line("device  none")
	}

	<-ctx.Done()
	return nil
}
