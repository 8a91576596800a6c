package tui

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Danondso/micmute/internal/config"
	"github.com/Danondso/micmute/internal/mixer"
)

type mockControls struct {
	mu      sync.Mutex
	toggles int
	deltas  []float32
	loads   int
	fail    bool
}

func (c *mockControls) LoadCurrentState() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
}

func (c *mockControls) ToggleMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toggles++
	return !c.fail
}

func (c *mockControls) AdjustVolume(delta float32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deltas = append(c.deltas, delta)
	return !c.fail
}

type mockLevelSampler struct {
	level float64
}

func (m *mockLevelSampler) Level() float64 {
	return m.level
}

type mockSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *mockSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func newTestModel(c Controls) Model {
	cfg := config.Default()
	return NewModel(cfg, "pulse", c, nil, nil, log.New(io.Discard, "", 0), false)
}

func validModel(c Controls) Model {
	m := newTestModel(c)
	updated, _ := m.Update(DeviceMsg{ID: 3, Name: "USB Mic", Valid: true})
	return updated.(Model)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialState(t *testing.T) {
	m := newTestModel(nil)
	if m.DeviceValid {
		t.Error("expected no device before the first DeviceMsg")
	}
	if m.Device != mixer.InvalidDevice {
		t.Errorf("expected InvalidDevice, got %s", m.Device)
	}
	if m.ThemeName != "Synthwave" {
		t.Errorf("expected Synthwave theme, got %s", m.ThemeName)
	}
}

func TestDeviceMsg(t *testing.T) {
	m := validModel(nil)
	if !m.DeviceValid || m.Device != 3 || m.DeviceName != "USB Mic" {
		t.Errorf("unexpected device state: %v %s %q", m.DeviceValid, m.Device, m.DeviceName)
	}
}

func TestDeviceLostResetsState(t *testing.T) {
	m := validModel(nil)
	m.Muted = true
	m.Volume = 0.6
	m.Level = 0.3
	updated, _ := m.Update(DeviceMsg{ID: mixer.InvalidDevice, Valid: false})
	model := updated.(Model)
	if model.DeviceValid || model.Muted || model.Volume != 0 || model.Level != 0 {
		t.Errorf("expected cleared state, got valid=%v muted=%v volume=%v level=%v",
			model.DeviceValid, model.Muted, model.Volume, model.Level)
	}
}

func TestMuteAndVolumeMsgs(t *testing.T) {
	m := validModel(nil)
	updated, _ := m.Update(MuteMsg{Muted: true})
	updated, _ = updated.(Model).Update(VolumeMsg{Volume: 0.25})
	model := updated.(Model)
	if !model.Muted {
		t.Error("expected muted")
	}
	if model.Volume != 0.25 {
		t.Errorf("expected volume 0.25, got %v", model.Volume)
	}
}

func TestToggleKeys(t *testing.T) {
	for _, k := range []string{"m", " "} {
		t.Run(fmt.Sprintf("%q", k), func(t *testing.T) {
			c := &mockControls{}
			m := validModel(c)
			_, cmd := m.Update(key(k))
			if cmd == nil {
				t.Fatal("expected toggle command")
			}
			if msg := cmd(); msg != nil {
				t.Errorf("expected no message on success, got %#v", msg)
			}
			if c.toggles != 1 {
				t.Errorf("expected 1 toggle, got %d", c.toggles)
			}
		})
	}
}

func TestToggleIgnoredWithoutDevice(t *testing.T) {
	c := &mockControls{}
	m := newTestModel(c)
	_, cmd := m.Update(key("m"))
	if cmd != nil {
		t.Error("expected no command without a device")
	}
}

func TestToggleFailureShowsError(t *testing.T) {
	c := &mockControls{fail: true}
	m := validModel(c)
	_, cmd := m.Update(key("m"))
	msg := cmd()
	updated, timeout := m.Update(msg)
	model := updated.(Model)
	if model.LastError != "could not toggle mute" {
		t.Errorf("unexpected error text %q", model.LastError)
	}
	if timeout == nil {
		t.Error("expected error timeout command")
	}
	if !strings.Contains(model.View(), "could not toggle mute") {
		t.Error("expected error in view")
	}

	updated, _ = model.Update(errorTimeoutMsg{})
	if updated.(Model).LastError != "" {
		t.Error("expected error cleared after timeout")
	}
}

func TestVolumeKeys(t *testing.T) {
	c := &mockControls{}
	m := validModel(c)
	for _, k := range []string{"+", "-", "=", "_"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Fatalf("expected command for %q", k)
		}
		cmd()
	}
	want := []float32{0.05, -0.05, 0.05, -0.05}
	if len(c.deltas) != len(want) {
		t.Fatalf("expected %d adjustments, got %d", len(want), len(c.deltas))
	}
	for i := range want {
		if c.deltas[i] != want[i] {
			t.Errorf("adjustment %d: expected %v, got %v", i, want[i], c.deltas[i])
		}
	}
}

func TestVolumeStepFromConfig(t *testing.T) {
	c := &mockControls{}
	m := validModel(c)
	m.Config.Audio.VolumeStep = 0.1
	_, cmd := m.Update(key("+"))
	cmd()
	if len(c.deltas) != 1 || c.deltas[0] != 0.1 {
		t.Errorf("expected step 0.1, got %v", c.deltas)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(nil)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestThemeKeyCycles(t *testing.T) {
	m := newTestModel(nil)
	updated, _ := m.Update(key("t"))
	if got := updated.(Model).ThemeName; got != "On Air" {
		t.Errorf("expected On Air after synthwave, got %s", got)
	}
}

func TestConfigMsgAppliesTheme(t *testing.T) {
	m := newTestModel(nil)
	cfg := config.Default()
	cfg.Theme = "monochrome"
	updated, _ := m.Update(ConfigMsg{Config: cfg})
	model := updated.(Model)
	if model.ThemeName != "Monochrome" {
		t.Errorf("expected Monochrome, got %s", model.ThemeName)
	}
	if model.Config != cfg {
		t.Error("expected config replaced")
	}
}

func TestInitLoadsState(t *testing.T) {
	c := &mockControls{}
	m := newTestModel(c)
	if cmd := m.loadStateCmd(); cmd == nil {
		t.Fatal("expected load command")
	} else {
		cmd()
	}
	if c.loads != 1 {
		t.Errorf("expected 1 load, got %d", c.loads)
	}
	if m.Init() == nil {
		t.Error("expected init command")
	}
}

func TestLevelTick(t *testing.T) {
	m := validModel(nil)
	m.Meter = &mockLevelSampler{level: 0.42}
	updated, cmd := m.Update(levelTickMsg{})
	model := updated.(Model)
	if model.Level != 0.42 {
		t.Errorf("expected level 0.42, got %f", model.Level)
	}
	if cmd == nil {
		t.Error("expected another tick command")
	}
}

func TestLevelTickWithoutDevice(t *testing.T) {
	m := newTestModel(nil)
	m.Meter = &mockLevelSampler{level: 0.42}
	m.Level = 0.5
	updated, _ := m.Update(levelTickMsg{})
	if updated.(Model).Level != 0 {
		t.Errorf("expected level 0 without device, got %f", updated.(Model).Level)
	}
}

func TestStatusCheckMsgUpdatesModel(t *testing.T) {
	m := newTestModel(nil)
	updated, cmd := m.Update(StatusCheckMsg{MicDetected: true, MicDeviceName: "default"})
	model := updated.(Model)
	if !model.MicDetected {
		t.Error("expected MicDetected to be true")
	}
	if !model.statusChecked {
		t.Error("expected statusChecked to be true")
	}
	if cmd == nil {
		t.Error("expected recheck schedule command")
	}
	if !strings.Contains(model.View(), "default") {
		t.Error("expected capture device name in view")
	}
}

func TestViewLive(t *testing.T) {
	m := validModel(nil)
	m.Volume = 0.5
	view := m.View()
	for _, want := range []string{"MICMUTE", "USB Mic", "Live", "50%", "Backend:", "pulse"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestViewMuted(t *testing.T) {
	m := validModel(nil)
	m.Muted = true
	if !strings.Contains(m.View(), "Muted") {
		t.Error("expected view to contain 'Muted'")
	}
}

func TestViewUnavailable(t *testing.T) {
	m := newTestModel(nil)
	view := m.View()
	if !strings.Contains(view, "Unavailable") {
		t.Error("expected view to contain 'Unavailable'")
	}
	if !strings.Contains(view, "no input device") {
		t.Error("expected view to explain the missing device")
	}
}

func TestViewLevelOnlyWithMeter(t *testing.T) {
	m := validModel(nil)
	if strings.Contains(m.View(), "Level:") {
		t.Error("expected no level row without a meter")
	}
	m.Meter = &mockLevelSampler{}
	if !strings.Contains(m.View(), "Level:") {
		t.Error("expected level row with a meter")
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		v      float64
		filled int
	}{
		{0, 0},
		{0.5, 10},
		{1, 20},
		{2, 20},
		{-1, 0},
	}
	for _, tt := range tests {
		got := strings.Count(bar(tt.v), "█")
		if got != tt.filled {
			t.Errorf("bar(%v): expected %d filled, got %d", tt.v, tt.filled, got)
		}
	}
}

func TestDebugLogMsgAddsEntry(t *testing.T) {
	m := newTestModel(nil)
	entry := DebugEntry{Time: "11:00:00", Category: "mixer", Message: "hello"}
	updated, _ := m.Update(DebugLogMsg{Entry: entry})
	model := updated.(Model)
	if len(model.DebugEntries) != 1 {
		t.Fatalf("expected 1 debug entry, got %d", len(model.DebugEntries))
	}
	if model.DebugEntries[0].Message != "hello" {
		t.Errorf("expected 'hello', got %q", model.DebugEntries[0].Message)
	}
}

func TestDebugLogTruncatesToMax(t *testing.T) {
	m := newTestModel(nil)
	for i := 0; i < maxDebugLines+10; i++ {
		entry := DebugEntry{Time: "11:00:00", Category: "debug", Message: fmt.Sprintf("line %d", i)}
		updated, _ := m.Update(DebugLogMsg{Entry: entry})
		m = updated.(Model)
	}
	if len(m.DebugEntries) != maxDebugLines {
		t.Errorf("expected %d debug entries, got %d", maxDebugLines, len(m.DebugEntries))
	}
	if m.DebugEntries[0].Message != "line 10" {
		t.Errorf("expected oldest message to be 'line 10', got %q", m.DebugEntries[0].Message)
	}
}

func TestViewShowsDebugPanel(t *testing.T) {
	m := newTestModel(nil)
	entry := DebugEntry{Time: "11:00:00", Category: "mixer", Message: "test message"}
	updated, _ := m.Update(DebugLogMsg{Entry: entry})
	view := updated.(Model).View()
	if !strings.Contains(view, "Debug") {
		t.Error("expected view to contain 'Debug' panel title")
	}
	if !strings.Contains(view, "test message") {
		t.Error("expected view to contain debug message")
	}
}

func TestViewHidesDebugPanelWhenEmpty(t *testing.T) {
	m := newTestModel(nil)
	if strings.Contains(m.View(), "Debug") {
		t.Error("expected view to NOT contain 'Debug' panel when no debug lines")
	}
}

func TestParseLineStructured(t *testing.T) {
	entry := parseLine("[DEBUG] 11:27:53.777842 mixer: set mute=true on device 3: permission denied")
	if entry.Time != "11:27:53.777842" {
		t.Errorf("expected time '11:27:53.777842', got %q", entry.Time)
	}
	if entry.Category != "mixer" {
		t.Errorf("expected category 'mixer', got %q", entry.Category)
	}
	if entry.Message != "mixer: set mute=true on device 3: permission denied" {
		t.Errorf("unexpected message %q", entry.Message)
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"pulse: subscribe exited", "mixer"},
		{"coreaudio: remove mute listener: status 560947818", "mixer"},
		{"listener: started", "listener"},
		{"app: restored last volume 0.60 for device 3", "app"},
		{"chime: speaker init error", "feedback"},
		{"portaudio initialized", "audio"},
		{"something else", "debug"},
	}
	for _, tt := range tests {
		if got, _ := inferCategory(tt.msg); got != tt.want {
			t.Errorf("inferCategory(%q): expected %q, got %q", tt.msg, tt.want, got)
		}
	}
}

func TestLogWriterSendsEntries(t *testing.T) {
	s := &mockSender{}
	w := NewLogWriter(s)
	logger := log.New(w, "[DEBUG] ", 0)
	logger.Printf("listener: started")

	// LogWriter sends from a goroutine.
	for i := 0; i < 100; i++ {
		s.mu.Lock()
		n := len(s.msgs)
		s.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(s.msgs))
	}
	msg, ok := s.msgs[0].(DebugLogMsg)
	if !ok {
		t.Fatalf("expected DebugLogMsg, got %T", s.msgs[0])
	}
	if msg.Entry.Category != "listener" || msg.Entry.Message != "listener: started" {
		t.Errorf("unexpected entry %+v", msg.Entry)
	}
}

func TestSurfaceSendsMessages(t *testing.T) {
	s := &mockSender{}
	surface := NewSurface(s)

	surface.SetDevice(7, "Headset", true)
	surface.SetMuted(true)
	surface.SetVolume(0.3)

	if len(s.msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(s.msgs))
	}
	if got, want := s.msgs[0], (DeviceMsg{ID: 7, Name: "Headset", Valid: true}); got != want {
		t.Errorf("expected %#v, got %#v", want, got)
	}
	if got, want := s.msgs[1], (MuteMsg{Muted: true}); got != want {
		t.Errorf("expected %#v, got %#v", want, got)
	}
	if got, want := s.msgs[2], (VolumeMsg{Volume: 0.3}); got != want {
		t.Errorf("expected %#v, got %#v", want, got)
	}
}

// resetCustomThemes drops palettes registered by a test.
func resetCustomThemes(t *testing.T) {
	t.Cleanup(func() {
		for key := range themes {
			if !isBuiltin(key) {
				delete(themes, key)
			}
		}
		themeOrder = themeOrder[:len(builtinThemes)]
	})
}

func TestCustomThemeFallsBackToDefaultColors(t *testing.T) {
	resetCustomThemes(t)
	RegisterCustomThemes([]config.CustomTheme{{Name: "Ocean", Muted: "#0077B6"}})

	got := LoadTheme("ocean")
	def := LoadTheme("synthwave")
	if got.Name != "Ocean" {
		t.Errorf("expected Ocean, got %s", got.Name)
	}
	if got.Muted != "#0077B6" {
		t.Errorf("expected muted #0077B6, got %s", got.Muted)
	}
	if got.Live != def.Live || got.Background != def.Background {
		t.Errorf("expected unset colors from default palette, got %+v", got)
	}
}

func TestCustomThemeRegistration(t *testing.T) {
	resetCustomThemes(t)
	RegisterCustomThemes([]config.CustomTheme{
		{Name: "Studio", Live: "#00FF00"},
		{Name: "Monochrome", Live: "#123456"},
		{Name: ""},
	})
	// A reload replaces the palette without adding a second cycle entry.
	RegisterCustomThemes([]config.CustomTheme{{Name: "Studio", Live: "#00AA00"}})

	names := ThemeNames()
	if len(names) != len(builtinThemes)+1 || names[len(names)-1] != "studio" {
		t.Fatalf("unexpected cycle %v", names)
	}
	if got := LoadTheme("studio").Live; got != "#00AA00" {
		t.Errorf("expected replaced live color, got %s", got)
	}
	if got := LoadTheme("monochrome").Live; got != "#FFFFFF" {
		t.Errorf("built-in palette overridden: %s", got)
	}
	if got := NextTheme("monochrome").Name; got != "Studio" {
		t.Errorf("expected Studio after Monochrome, got %s", got)
	}
	if got := NextTheme("studio").Name; got != "Synthwave" {
		t.Errorf("expected cycle to wrap to Synthwave, got %s", got)
	}
}

func TestUnknownThemeUsesDefault(t *testing.T) {
	if got := LoadTheme("nope").Name; got != "Synthwave" {
		t.Errorf("expected Synthwave, got %s", got)
	}
	if got := NextTheme("nope").Name; got != "Synthwave" {
		t.Errorf("expected first theme, got %s", got)
	}
}
