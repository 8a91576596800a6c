package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Danondso/micmute/internal/config"
)

// Theme is a TUI palette keyed by what each color marks on the panel.
type Theme struct {
	Name       string
	Live       lipgloss.Color // live badge, status ok
	Muted      lipgloss.Color // muted badge, title, level bar
	Frame      lipgloss.Color // border, labels, key help
	Volume     lipgloss.Color // volume bar, device name
	Error      lipgloss.Color
	Note       lipgloss.Color // debug categories
	Background lipgloss.Color
	Text       lipgloss.Color
	Dimmed     lipgloss.Color // unavailable badge, bar labels, debug text
	Separator  lipgloss.Color
}

const defaultThemeKey = "synthwave"

// builtinThemes lists the shipped palettes in cycle order.
var builtinThemes = []struct {
	key   string
	theme Theme
}{
	{"synthwave", Theme{
		Name:       "Synthwave",
		Live:       "#64FFDA",
		Muted:      "#FF6AC1",
		Frame:      "#00E5FF",
		Volume:     "#B388FF",
		Error:      "#FF8A80",
		Note:       "#FFAB40",
		Background: "#1A1A2E",
		Text:       "#E0E0E0",
		Dimmed:     "#666666",
		Separator:  "#444444",
	}},
	// Broadcast studio tally colors: green while live, red on-air lamp
	// while muted.
	{"onair", Theme{
		Name:       "On Air",
		Live:       "#3DDC84",
		Muted:      "#E53935",
		Frame:      "#B0BEC5",
		Volume:     "#FFC107",
		Error:      "#FF7043",
		Note:       "#FFC107",
		Background: "#121212",
		Text:       "#ECEFF1",
		Dimmed:     "#78909C",
		Separator:  "#37474F",
	}},
	{"monochrome", Theme{
		Name:       "Monochrome",
		Live:       "#FFFFFF",
		Muted:      "#FFFFFF",
		Frame:      "#CCCCCC",
		Volume:     "#AAAAAA",
		Error:      "#FF0000",
		Note:       "#CCCCCC",
		Background: "#000000",
		Text:       "#FFFFFF",
		Dimmed:     "#888888",
		Separator:  "#444444",
	}},
}

// themes holds built-in and registered custom palettes; themeOrder is the
// cycle order of their keys.
var (
	themes     = map[string]Theme{}
	themeOrder []string
)

func init() {
	for _, b := range builtinThemes {
		themes[b.key] = b.theme
		themeOrder = append(themeOrder, b.key)
	}
}

func isBuiltin(key string) bool {
	for _, b := range builtinThemes {
		if b.key == key {
			return true
		}
	}
	return false
}

// ThemeNames returns the theme keys in cycle order.
func ThemeNames() []string {
	return append([]string(nil), themeOrder...)
}

// LoadTheme returns the theme with the given key, case-insensitive, or the
// default palette.
func LoadTheme(name string) Theme {
	if t, ok := themes[strings.ToLower(name)]; ok {
		return t
	}
	return themes[defaultThemeKey]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) Theme {
	current = strings.ToLower(current)
	for i, key := range themeOrder {
		if key == current {
			return themes[themeOrder[(i+1)%len(themeOrder)]]
		}
	}
	return themes[themeOrder[0]]
}

// RegisterCustomThemes adds or replaces user palettes. Colors left empty
// take the default palette's. Entries without a name or named like a
// built-in are skipped.
func RegisterCustomThemes(custom []config.CustomTheme) {
	base := themes[defaultThemeKey]
	pick := func(v string, fallback lipgloss.Color) lipgloss.Color {
		if v == "" {
			return fallback
		}
		return lipgloss.Color(v)
	}
	for _, ct := range custom {
		key := strings.ToLower(ct.Name)
		if key == "" || isBuiltin(key) {
			continue
		}
		if _, exists := themes[key]; !exists {
			themeOrder = append(themeOrder, key)
		}
		themes[key] = Theme{
			Name:       ct.Name,
			Live:       pick(ct.Live, base.Live),
			Muted:      pick(ct.Muted, base.Muted),
			Frame:      pick(ct.Frame, base.Frame),
			Volume:     pick(ct.Volume, base.Volume),
			Error:      pick(ct.Error, base.Error),
			Note:       pick(ct.Note, base.Note),
			Background: pick(ct.Background, base.Background),
			Text:       pick(ct.Text, base.Text),
			Dimmed:     pick(ct.Dimmed, base.Dimmed),
			Separator:  pick(ct.Separator, base.Separator),
		}
	}
}

// fg is a style in color c on the theme background.
func (t Theme) fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Background(t.Background)
}

// applyTheme rebuilds every panel style from t.
func applyTheme(t Theme) {
	titleStyle = t.fg(t.Muted).Bold(true).MarginBottom(1)
	borderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Frame).
		Padding(1, 2).
		Background(t.Background)

	labelStyle = t.fg(t.Frame).Bold(true)
	keysStyle = t.fg(t.Frame)
	deviceStyle = t.fg(t.Volume).Italic(true)
	bodyStyle = t.fg(t.Text)
	quitStyle = t.fg(t.Dimmed)

	liveBadge = t.fg(t.Live).Bold(true)
	mutedBadge = t.fg(t.Muted).Bold(true)
	unavailableBadge = t.fg(t.Dimmed).Bold(true)
	errorBadge = t.fg(t.Error).Bold(true)
	statusOkStyle = t.fg(t.Live).Bold(true)
	statusBadStyle = t.fg(t.Error).Bold(true)

	volumeStyle = t.fg(t.Volume)
	levelStyle = t.fg(t.Muted)
	barLabelStyle = t.fg(t.Dimmed)

	debugTitleStyle = t.fg(t.Dimmed).Bold(true)
	debugHeaderStyle = t.fg(t.Dimmed).Bold(true)
	debugRuleStyle = t.fg(t.Dimmed)
	debugTimeStyle = t.fg(t.Dimmed)
	debugMsgStyle = t.fg(t.Dimmed)
	debugCategoryStyle = t.fg(t.Note)
	debugSepStyle = t.fg(t.Separator)
}
