package display

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/hammamikhairi/ottobrew/internal/theme"
)

// palette is one full set of styles. The UI swaps between them when the
// theme attribute changes.
type palette struct {
	name string

	bar         lipgloss.Style
	timerRun    lipgloss.Style
	timerDone   lipgloss.Style
	timerWait   lipgloss.Style
	label       lipgloss.Style
	sep         lipgloss.Style
	prompt      lipgloss.Style
	cursor      lipgloss.Style
	banner      lipgloss.Style
	chat        lipgloss.Style
	stage       lipgloss.Style
	primary     lipgloss.Style
	secondary   lipgloss.Style
	urgent      lipgloss.Style
	echo        lipgloss.Style
	tableHeader lipgloss.Style
	tableCell   lipgloss.Style
	accent      lipgloss.Style
}

func fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// darkPalette is the soft zinc palette for dark terminals.
func darkPalette() *palette {
	return &palette{
		name:        theme.Dark.String(),
		bar:         lipgloss.NewStyle().Background(lipgloss.Color("#27272a")).Foreground(lipgloss.Color("#a1a1aa")),
		timerRun:    fg("#fde68a"),
		timerDone:   fg("#fca5a5"),
		timerWait:   fg("#71717a").Italic(true),
		label:       fg("#a1a1aa"),
		sep:         fg("#52525b"),
		prompt:      fg("#d6b38a"),
		cursor:      fg("#d6b38a"),
		banner:      fg("#c8a27a"),
		chat:        fg("#bae6fd"),
		stage:       fg("#bbf7d0"),
		primary:     fg("#d4d4d8"),
		secondary:   fg("#71717a"),
		urgent:      fg("#fca5a5"),
		echo:        fg("#a1a1aa"),
		tableHeader: fg("#d6b38a").Bold(true),
		tableCell:   fg("#d4d4d8"),
		accent:      fg("#fde68a").Bold(true),
	}
}

// lightPalette keeps contrast on light backgrounds.
func lightPalette() *palette {
	return &palette{
		name:        theme.Light.String(),
		bar:         lipgloss.NewStyle().Background(lipgloss.Color("#e7e5e4")).Foreground(lipgloss.Color("#44403c")),
		timerRun:    fg("#92400e"),
		timerDone:   fg("#b91c1c"),
		timerWait:   fg("#78716c").Italic(true),
		label:       fg("#57534e"),
		sep:         fg("#a8a29e"),
		prompt:      fg("#7c2d12"),
		cursor:      fg("#7c2d12"),
		banner:      fg("#78350f"),
		chat:        fg("#075985"),
		stage:       fg("#166534"),
		primary:     fg("#1c1917"),
		secondary:   fg("#78716c"),
		urgent:      fg("#b91c1c"),
		echo:        fg("#57534e"),
		tableHeader: fg("#7c2d12").Bold(true),
		tableCell:   fg("#1c1917"),
		accent:      fg("#92400e").Bold(true),
	}
}

// plainPalette renders no colour at all.
func plainPalette(name string) *palette {
	s := lipgloss.NewStyle()
	return &palette{
		name: name, bar: s, timerRun: s, timerDone: s, timerWait: s, label: s, sep: s,
		prompt: s, cursor: s, banner: s, chat: s, stage: s, primary: s, secondary: s,
		urgent: s, echo: s, tableHeader: s, tableCell: s, accent: s,
	}
}

// paletteFor picks the palette for a scheme name.
func paletteFor(scheme string, color bool) *palette {
	if !color {
		return plainPalette(scheme)
	}
	if scheme == theme.Light.String() {
		return lightPalette()
	}
	return darkPalette()
}

// ColorEnabled reports whether stdout can show colour. NO_COLOR always
// wins.
func ColorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// SetAttribute implements theme.AttributeSetter. Only the scheme
// attribute is understood; anything else is ignored.
func (u *UI) SetAttribute(name, value string) {
	if name != theme.Attribute {
		return
	}
	u.pal.Store(paletteFor(value, u.color))
}

// Scheme returns the name of the active palette.
func (u *UI) Scheme() string {
	return u.pal.Load().name
}
