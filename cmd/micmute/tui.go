package main

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/cobra"

	"github.com/Danondso/micmute/internal/app"
	"github.com/Danondso/micmute/internal/chime"
	"github.com/Danondso/micmute/internal/config"
	"github.com/Danondso/micmute/internal/listener"
	"github.com/Danondso/micmute/internal/meter"
	"github.com/Danondso/micmute/internal/notify"
	"github.com/Danondso/micmute/internal/state"
	"github.com/Danondso/micmute/internal/tui"
)

// micCheckerAdapter adapts the package-level meter functions to the
// tui.MicChecker interface.
type micCheckerAdapter struct{}

func (micCheckerAdapter) MicAvailable() bool {
	return meter.MicAvailable()
}

func (micCheckerAdapter) MicName() string {
	return meter.MicName()
}

// startupMuter restores the persisted volume after the first state load.
type startupMuter struct {
	*app.Muter
	restore bool
	once    sync.Once
}

func (s *startupMuter) LoadCurrentState() {
	s.Muter.LoadCurrentState()
	if s.restore {
		s.once.Do(s.Muter.Restore)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Initialize PortAudio (Linux suppresses ALSA/JACK stderr noise)
	var (
		mc  tui.MicChecker
		lvl tui.LevelSampler
		mtr *meter.Meter
	)
	if err := initPortAudio(); err != nil {
		dbg.Printf("portaudio init: %v", err)
	} else {
		defer portaudio.Terminate()
		dbg.Printf("portaudio initialized")
		mc = micCheckerAdapter{}
		if cfg.Audio.MeterEnabled {
			mtr = meter.New()
			if err := mtr.Start(); err != nil {
				dbg.Printf("meter: %v", err)
			} else {
				defer mtr.Stop()
				lvl = mtr
			}
		}
	}

	chimePlayer, err := chime.New(cfg.Audio.ChimeMute, cfg.Audio.ChimeUnmute, cfg.Audio.ChimeEnabled, dbg)
	if err != nil {
		return fmt.Errorf("create chime player: %w", err)
	}
	feedback := []app.Feedback{chimePlayer}

	notifier, err := notify.New(cfg.Notify.Desktop, dbg)
	if err != nil {
		dbg.Printf("notify: desktop notifications unavailable: %v", err)
	} else {
		feedback = append(feedback, notifier)
	}

	opts := app.Options{
		Dispatcher: uiDispatcher(),
		Feedback:   feedback,
		Logger:     dbg,
	}
	store, err := state.NewStore()
	if err != nil {
		dbg.Printf("app: %v", err)
	} else {
		opts.Store = store
	}

	// The surface needs the program and the model needs the muter, so the
	// surface sends through p once it exists.
	var p *tea.Program
	surface := tui.NewSurface(tui.SendFunc(func(msg tea.Msg) { p.Send(msg) }))
	muter := app.New(ctrl, surface, opts)

	controls := &startupMuter{Muter: muter, restore: cfg.Audio.RestoreVolume}
	model := tui.NewModel(cfg, backendName(cfg.Backend), controls, lvl, mc, dbg, globalOpts.debug)
	if cmd.Flags().Changed("backend") {
		model.BackendName = globalOpts.backend
	}
	p = tea.NewProgram(model, tea.WithAltScreen())

	// When debug is enabled, redirect logger output into the TUI debug panel
	if globalOpts.debug {
		dbg.SetOutput(tui.NewLogWriter(p))
	}

	l := listener.New(ctrl, dbg)
	l.SetDelegate(muter)
	if err := l.Start(); err != nil {
		return fmt.Errorf("start listener: %w", err)
	}

	watcher, err := config.NewWatcher(cfgPath, func(c *config.Config) {
		chimePlayer.SetEnabled(c.Audio.ChimeEnabled)
		if notifier != nil {
			notifier.SetEnabled(c.Notify.Desktop)
		}
		p.Send(tui.ConfigMsg{Config: c})
	}, dbg)
	if err != nil {
		dbg.Printf("config: watcher: %v", err)
	} else if err := watcher.Start(); err != nil {
		dbg.Printf("config: watch %s: %v", cfgPath, err)
	}

	_, runErr := p.Run()

	// Clean shutdown
	if watcher != nil {
		_ = watcher.Stop()
	}
	l.Stop()
	if err := muter.Save(); err != nil {
		dbg.Printf("app: save state: %v", err)
	}
	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}
