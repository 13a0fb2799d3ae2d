package display

import (
	"fmt"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// RenderPlan formats a brew plan as a styled table: a summary line
// followed by one row per stage.
func (u *UI) RenderPlan(in domain.BrewInput, out domain.BrewOutput) string {
	return renderPlan(u.pal.Load(), in, out)
}

// PrintPlan prints the plan table above the prompt.
func (u *UI) PrintPlan(in domain.BrewInput, out domain.BrewOutput) {
	u.Println(u.RenderPlan(in, out))
}

func renderPlan(p *palette, in domain.BrewInput, out domain.BrewOutput) string {
	dv := brew.Display(in, out)

	var b strings.Builder
	strength := "standard"
	if in.UseStrongRatio {
		strength = "strong"
	}
	b.WriteString("  ")
	b.WriteString(p.accent.Render(fmt.Sprintf("%sml", brew.FormatDisplay(in.TotalVolumeML))))
	b.WriteString(p.secondary.Render(fmt.Sprintf("  %s %s  ", strength, dv.Ratio)))
	b.WriteString(p.label.Render("dose "))
	b.WriteString(p.accent.Render(dv.Dose))
	b.WriteByte('\n')

	b.WriteString("  ")
	b.WriteString(p.tableHeader.Render(fmt.Sprintf("%-12s %8s %14s", "Step", "Volume", "Scale Weight")))
	for _, s := range dv.Stages {
		b.WriteString("\n  ")
		b.WriteString(p.tableCell.Render(fmt.Sprintf("%-12s %8s %14s", s.Name, s.Volume+"ml", s.ScaleWeight+"g")))
	}
	return b.String()
}

// PrintStage prints a stage header and its instruction.
func (u *UI) PrintStage(st domain.Stage, total int) {
	header := fmt.Sprintf("Stage %d/%d: %s", st.Order, total, st.Kind)
	if st.Wait != nil {
		header += fmt.Sprintf(" (then wait %s)", st.Wait.Duration)
	}
	u.PrintStep(header)
	u.PrintInstruction(st.Instruction)
}
