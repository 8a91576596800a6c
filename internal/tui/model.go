package tui

import (
	"io"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Danondso/micmute/internal/config"
	"github.com/Danondso/micmute/internal/mixer"
)

// Controls are the actions the TUI can trigger on the microphone.
type Controls interface {
	LoadCurrentState()
	ToggleMute() bool
	AdjustVolume(delta float32) bool
}

// LevelSampler can report the current input level.
type LevelSampler interface {
	Level() float64
}

// MicChecker can report whether a capture device is available.
type MicChecker interface {
	MicAvailable() bool
	MicName() string
}

// Messages sent through the Bubble Tea update loop.

// DeviceMsg reports the current default input device.
type DeviceMsg struct {
	ID    mixer.DeviceID
	Name  string
	Valid bool
}

type MuteMsg struct {
	Muted bool
}

type VolumeMsg struct {
	Volume float32
}

// ConfigMsg carries a reloaded config.
type ConfigMsg struct {
	Config *config.Config
}

type actionFailedMsg struct {
	action string
}

type errorTimeoutMsg struct{}

type levelTickMsg struct{}

// StatusCheckMsg carries the result of a capture device availability check.
type StatusCheckMsg struct {
	MicDetected   bool
	MicDeviceName string
}

type statusCheckTickMsg struct{}

// DebugEntry is a structured debug log entry.
type DebugEntry struct {
	Time     string // e.g. "11:27:53"
	Category string // e.g. "mixer", "listener", "app"
	Message  string // the log message
}

// DebugLogMsg carries a structured debug log entry into the TUI.
type DebugLogMsg struct {
	Entry DebugEntry
}

const maxDebugLines = 50

// Model is the Bubble Tea model for the micmute status panel.
type Model struct {
	Device        mixer.DeviceID
	DeviceName    string
	DeviceValid   bool
	Muted         bool
	Volume        float32
	Level         float64
	LastError     string
	BackendName   string
	ThemeName     string
	Config        *config.Config
	Controls      Controls
	Meter         LevelSampler
	MicChecker    MicChecker
	Logger        *log.Logger
	DebugMode     bool
	DebugEntries  []DebugEntry
	MicDetected   bool
	MicDeviceName string
	statusChecked bool
}

// NewModel creates a new TUI model. meter and mc may be nil.
func NewModel(cfg *config.Config, backend string, c Controls, meter LevelSampler, mc MicChecker, logger *log.Logger, debug bool) Model {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	RegisterCustomThemes(cfg.CustomThemes)
	theme := LoadTheme(cfg.Theme)
	applyTheme(theme)
	return Model{
		Device:      mixer.InvalidDevice,
		BackendName: backend,
		ThemeName:   theme.Name,
		Config:      cfg,
		Controls:    c,
		Meter:       meter,
		MicChecker:  mc,
		Logger:      logger,
		DebugMode:   debug,
	}
}

// Init loads the device state and starts the periodic checks.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadStateCmd(), m.statusCheckCmd()}
	if m.Meter != nil {
		cmds = append(cmds, levelTickCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and transitions state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "m", " ":
			if !m.DeviceValid {
				return m, nil
			}
			return m, m.toggleCmd()
		case "+", "=":
			if !m.DeviceValid {
				return m, nil
			}
			return m, m.adjustCmd(m.volumeStep())
		case "-", "_":
			if !m.DeviceValid {
				return m, nil
			}
			return m, m.adjustCmd(-m.volumeStep())
		case "t":
			theme := NextTheme(m.themeKey())
			applyTheme(theme)
			m.ThemeName = theme.Name
		}

	case DeviceMsg:
		m.Device = msg.ID
		m.DeviceName = msg.Name
		m.DeviceValid = msg.Valid
		if !msg.Valid {
			m.Muted = false
			m.Volume = 0
			m.Level = 0
		}

	case MuteMsg:
		m.Muted = msg.Muted

	case VolumeMsg:
		m.Volume = msg.Volume

	case ConfigMsg:
		m.Config = msg.Config
		RegisterCustomThemes(msg.Config.CustomThemes)
		theme := LoadTheme(msg.Config.Theme)
		applyTheme(theme)
		m.ThemeName = theme.Name

	case actionFailedMsg:
		m.LastError = "could not " + msg.action
		return m, scheduleErrorTimeout()

	case errorTimeoutMsg:
		m.LastError = ""

	case levelTickMsg:
		if m.Meter != nil && m.DeviceValid {
			m.Level = m.Meter.Level()
		} else {
			m.Level = 0
		}
		return m, levelTickCmd()

	case StatusCheckMsg:
		m.MicDetected = msg.MicDetected
		m.MicDeviceName = msg.MicDeviceName
		m.statusChecked = true
		return m, scheduleStatusRecheck()

	case statusCheckTickMsg:
		return m, m.statusCheckCmd()

	case DebugLogMsg:
		m.DebugEntries = append(m.DebugEntries, msg.Entry)
		if len(m.DebugEntries) > maxDebugLines {
			m.DebugEntries = m.DebugEntries[len(m.DebugEntries)-maxDebugLines:]
		}
	}

	return m, nil
}

func (m Model) volumeStep() float32 {
	if m.Config == nil || m.Config.Audio.VolumeStep <= 0 {
		return 0.05
	}
	return m.Config.Audio.VolumeStep
}

// themeKey maps the display name back to the themes map key.
func (m Model) themeKey() string {
	for key, t := range themes {
		if t.Name == m.ThemeName {
			return key
		}
	}
	return ""
}

func (m Model) loadStateCmd() tea.Cmd {
	c := m.Controls
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		c.LoadCurrentState()
		return nil
	}
}

func (m Model) toggleCmd() tea.Cmd {
	c := m.Controls
	logger := m.Logger
	return func() tea.Msg {
		if c == nil || !c.ToggleMute() {
			logger.Printf("tui: toggle mute failed")
			return actionFailedMsg{action: "toggle mute"}
		}
		return nil
	}
}

func (m Model) adjustCmd(delta float32) tea.Cmd {
	c := m.Controls
	logger := m.Logger
	return func() tea.Msg {
		if c == nil || !c.AdjustVolume(delta) {
			logger.Printf("tui: adjust volume by %+.2f failed", delta)
			return actionFailedMsg{action: "change volume"}
		}
		return nil
	}
}

func scheduleErrorTimeout() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return errorTimeoutMsg{}
	})
}

const levelTickInterval = 100 * time.Millisecond

func levelTickCmd() tea.Cmd {
	return tea.Tick(levelTickInterval, func(time.Time) tea.Msg {
		return levelTickMsg{}
	})
}

const statusRecheckInterval = 30 * time.Second

func (m Model) statusCheckCmd() tea.Cmd {
	mc := m.MicChecker
	return func() tea.Msg {
		micOk := false
		micName := ""
		if mc != nil {
			micOk = mc.MicAvailable()
			micName = mc.MicName()
		}
		return StatusCheckMsg{MicDetected: micOk, MicDeviceName: micName}
	}
}

func scheduleStatusRecheck() tea.Cmd {
	return tea.Tick(statusRecheckInterval, func(time.Time) tea.Msg {
		return statusCheckTickMsg{}
	})
}
