package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles, set by applyTheme.
var (
	titleStyle         lipgloss.Style
	borderStyle        lipgloss.Style
	labelStyle         lipgloss.Style
	deviceStyle        lipgloss.Style
	keysStyle          lipgloss.Style
	quitStyle          lipgloss.Style
	liveBadge          lipgloss.Style
	mutedBadge         lipgloss.Style
	unavailableBadge   lipgloss.Style
	errorBadge         lipgloss.Style
	bodyStyle          lipgloss.Style
	debugTitleStyle    lipgloss.Style
	debugRuleStyle     lipgloss.Style
	debugHeaderStyle   lipgloss.Style
	debugTimeStyle     lipgloss.Style
	debugCategoryStyle lipgloss.Style
	debugMsgStyle      lipgloss.Style
	debugSepStyle      lipgloss.Style
	volumeStyle        lipgloss.Style
	levelStyle         lipgloss.Style
	barLabelStyle      lipgloss.Style
	statusOkStyle      lipgloss.Style
	statusBadStyle     lipgloss.Style
)

func init() {
	applyTheme(builtinThemes[0].theme)
}

// panelWidth is the total outer width of the main panel.
// borderStyle has: border (1+1) = 2, padding (2+2) = 4, total chrome = 6.
// Width() in lipgloss sets width including padding but excluding border.
const panelWidth = 64
const panelWidthForStyle = panelWidth - 2 // passed to borderStyle.Width()
const panelContentWidth = panelWidth - 6  // actual usable text area

// View renders the TUI.
func (m Model) View() string {
	var b strings.Builder

	// Title centered with color bars extending to panel edges
	titleText := "  MICMUTE  "
	barTotal := panelContentWidth - len(titleText)
	barLeft := barTotal / 2
	barRight := barTotal - barLeft
	title := strings.Repeat("▓", barLeft) + titleText + strings.Repeat("▓", barRight)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Device:  "))
	switch {
	case !m.DeviceValid:
		b.WriteString(unavailableBadge.Render("(no input device)"))
	case m.DeviceName != "":
		b.WriteString(deviceStyle.Render(m.DeviceName))
	default:
		b.WriteString(deviceStyle.Render("device " + m.Device.String()))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Status:  "))
	b.WriteString(m.renderBadge())
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Volume:  "))
	b.WriteString(m.renderVolume())
	if m.Meter != nil {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Level:   "))
		b.WriteString(m.renderLevel())
	}
	b.WriteString("\n\n")

	if m.LastError != "" {
		b.WriteString(errorBadge.Render("● " + truncate(m.LastError, 50)))
		b.WriteString("\n\n")
	}

	keys := "m/space: toggle mute  +/-: volume  t: theme"
	if !m.DeviceValid {
		b.WriteString(quitStyle.Render(keys))
	} else {
		b.WriteString(keysStyle.Render(keys))
	}
	b.WriteString("\n")
	b.WriteString(quitStyle.Render("Press q to quit"))

	// Debug sub-panel (inside main panel)
	if m.DebugMode || len(m.DebugEntries) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderDebugPanel())
	}

	return borderStyle.Width(panelWidthForStyle).Render(b.String())
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

const debugPanelMaxLines = 5

// Debug table column widths. Row content must fit within panelContentWidth.
const (
	colTimeWidth     = 15
	colCategoryWidth = 9
	colSepWidth      = 3 // " │ "
	colMsgWidth      = panelContentWidth - colTimeWidth - colCategoryWidth - colSepWidth*2
)

func (m Model) renderDebugPanel() string {
	sep := debugSepStyle.Render(" │ ")
	rule := debugRuleStyle.Render(strings.Repeat("─", panelContentWidth))

	var db strings.Builder

	db.WriteString(debugTitleStyle.Render("Debug"))
	db.WriteString("\n")
	db.WriteString(rule)
	db.WriteString("\n")

	db.WriteString(
		debugHeaderStyle.Width(colTimeWidth).Render("TIME") +
			sep +
			debugHeaderStyle.Width(colCategoryWidth).Render("TYPE") +
			sep +
			debugHeaderStyle.Width(colMsgWidth).Render("MESSAGE"))
	db.WriteString("\n")
	db.WriteString(rule)

	entries := m.DebugEntries
	if len(entries) > debugPanelMaxLines {
		entries = entries[len(entries)-debugPanelMaxLines:]
	}
	for _, entry := range entries {
		timeStr := entry.Time
		if len(timeStr) > colTimeWidth {
			timeStr = timeStr[:colTimeWidth]
		}

		cat := entry.Category
		if len(cat) > colCategoryWidth {
			cat = cat[:colCategoryWidth]
		}

		msg := entry.Message
		if len(msg) > colMsgWidth {
			msg = msg[:colMsgWidth-3] + "..."
		}

		db.WriteString("\n")
		db.WriteString(
			debugTimeStyle.Width(colTimeWidth).Render(timeStr) +
				sep +
				debugCategoryStyle.Width(colCategoryWidth).Render(cat) +
				sep +
				debugMsgStyle.Width(colMsgWidth).Render(msg))
	}

	return db.String()
}

const barWidth = 20

// bar renders a filled/empty gauge for v in [0,1].
func bar(v float64) string {
	if v != v || v < 0 {
		v = 0
	}
	filled := int(math.Round(v * barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func (m Model) renderVolume() string {
	if !m.DeviceValid {
		return barLabelStyle.Render(strings.Repeat("░", barWidth) + "   -")
	}
	pct := fmt.Sprintf(" %3d%%", int(math.Round(float64(m.Volume)*100)))
	return volumeStyle.Render(bar(float64(m.Volume))) + barLabelStyle.Render(pct)
}

func (m Model) renderLevel() string {
	// sqrt makes quiet speech visible on the bar.
	return levelStyle.Render(bar(math.Sqrt(m.Level)))
}

func (m Model) renderStatusBar() string {
	backend := quitStyle.Render(m.BackendName)
	if !m.statusChecked {
		return quitStyle.Render("Capture: ...  Backend: ") + backend + quitStyle.Render("  Theme: "+m.ThemeName)
	}
	var mic string
	if m.MicDetected {
		mic = statusOkStyle.Render("✓")
		if m.MicDeviceName != "" {
			mic += quitStyle.Render(" (" + truncate(m.MicDeviceName, 20) + ")")
		}
	} else {
		mic = statusBadStyle.Render("✗")
	}
	return quitStyle.Render("Capture: ") + mic + quitStyle.Render("  Backend: ") + backend + quitStyle.Render("  Theme: "+m.ThemeName)
}

func (m Model) renderBadge() string {
	switch {
	case !m.DeviceValid:
		return unavailableBadge.Render("● Unavailable")
	case m.Muted:
		return mutedBadge.Render("● Muted")
	default:
		return liveBadge.Render("● Live")
	}
}
