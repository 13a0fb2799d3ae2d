package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// banner.txt holds the logo art; its last line is the tagline.
//
//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the logo centred for the current terminal width,
// in the active palette.
func (u *UI) RenderBanner() string {
	return renderBanner(u.pal.Load(), termWidth())
}

func renderBanner(p *palette, width int) string {
	lines := strings.Split(strings.TrimRight(bannerRaw, "\n"), "\n")
	if len(lines) == 0 {
		return ""
	}

	styled := make([]string, len(lines))
	last := len(lines) - 1
	for i, l := range lines {
		if i == last {
			styled[i] = p.secondary.Render(l)
		} else {
			styled[i] = p.banner.Render(l)
		}
	}

	// PlaceHorizontal leaves the block alone when it is wider than width.
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(styled, "\n")) + "\n"
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
