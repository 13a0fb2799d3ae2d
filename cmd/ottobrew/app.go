package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/engine"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/theme"
	"github.com/hammamikhairi/ottobrew/internal/voice"
)

const historyLimit = 10

type cliApp struct {
	engine    *engine.Engine
	parser    domain.IntentParser
	ear       *voice.Ear // nil when voice input is disabled
	log       *logger.Logger
	ui        *display.UI
	input     domain.BrewInput // plan the next brew will use
	sessionID string           // current active session
}

func (a *cliApp) run(ctx context.Context) {
	a.ui.PrintChat("Morning. Here's the plan for your next brew.")
	a.showPlan()

	// Receiving on a nil channel blocks forever, so without an ear only
	// the keyboard case fires.
	var voiceCh <-chan string
	if a.ear != nil {
		voiceCh = a.ear.C()
	}
	uiCh := a.ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		case input = <-voiceCh:
			a.ui.PrintVoice(input)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		var session *domain.Session
		if a.sessionID != "" {
			if s, err := a.engine.Status(ctx, a.sessionID); err == nil {
				session = s
			}
		}

		intent, err := a.parser.Parse(ctx, input, session)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}

		a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)
		if a.handleIntent(ctx, intent) {
			return
		}
	}
}

// handleIntent dispatches one intent. It reports true when the app
// should exit.
func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	switch intent.Type {
	case domain.IntentSetVolume:
		a.setVolume(intent.Payload)
	case domain.IntentSetStrong:
		a.setStrength(true)
	case domain.IntentSetStandard:
		a.setStrength(false)
	case domain.IntentToggleRatio:
		a.setStrength(!a.input.UseStrongRatio)
	case domain.IntentShowPlan:
		a.showPlan()
	case domain.IntentComparePlans:
		a.comparePlans()
	case domain.IntentStartBrew:
		a.startBrew(ctx)
	case domain.IntentAdvance:
		a.advance(ctx)
	case domain.IntentSkip:
		a.skip(ctx)
	case domain.IntentRepeat:
		a.showCurrentStage(ctx)
	case domain.IntentPause:
		a.pause(ctx)
	case domain.IntentResume:
		a.resume(ctx)
	case domain.IntentStatus:
		a.status(ctx)
	case domain.IntentStartTimer:
		a.startTimer(ctx)
	case domain.IntentDismissTimer:
		a.dismissTimer(ctx, intent.Payload)
	case domain.IntentListCocktails:
		a.showCocktails(ctx)
	case domain.IntentShowCocktail:
		a.showCocktail(ctx, intent.Payload)
	case domain.IntentToggleTheme:
		a.switchTheme(intent.Payload)
	case domain.IntentHistory:
		a.showHistory(ctx)
	case domain.IntentHelp:
		a.showHelp()
	case domain.IntentQuit:
		a.quit(ctx)
		return true
	default:
		a.ui.PrintHint(fmt.Sprintf("Didn't catch %q. Type 'help' for commands.", intent.Payload))
	}
	return false
}

// ── plan ─────────────────────────────────────────────────────────

func (a *cliApp) setVolume(payload string) {
	v, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("%q is not a volume.", payload))
		return
	}

	next := domain.BrewInput{TotalVolumeML: v, UseStrongRatio: a.input.UseStrongRatio}
	if _, err := a.engine.Calculate(next); err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Can't use that: %v", err))
		if !brew.IsPreset(v) {
			a.ui.PrintHint(fmt.Sprintf("Closest preset is %sml.", brew.FormatDisplay(brew.NearestPreset(v))))
		}
		return
	}
	a.input = next
	a.showPlan()
}

func (a *cliApp) setStrength(strong bool) {
	a.input = domain.BrewInput{TotalVolumeML: a.input.TotalVolumeML, UseStrongRatio: strong}
	a.showPlan()
}

func (a *cliApp) showPlan() {
	out, err := a.engine.Calculate(a.input)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	a.ui.PrintPlan(a.input, out)
}

func (a *cliApp) comparePlans() {
	diff, err := brew.Compare(a.input.TotalVolumeML)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	a.ui.PrintStep(fmt.Sprintf("Strong vs standard at %sml:", brew.FormatDisplay(a.input.TotalVolumeML)))
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			a.ui.PrintUrgent(line)
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			a.ui.PrintChat(line)
		default:
			a.ui.PrintHint(line)
		}
	}
}

// ── guided brew ──────────────────────────────────────────────────

func (a *cliApp) startBrew(ctx context.Context) {
	if a.sessionID != "" {
		a.ui.PrintChat("A brew is already going. Say 'status' to see where you are.")
		return
	}

	session, err := a.engine.StartSession(ctx, a.input)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error starting brew: %v", err))
		return
	}

	a.sessionID = session.ID
	a.ui.PrintChat(fmt.Sprintf("Brewing %s. Weigh out %s of coffee, rinse the filter, tare the scale.",
		session.Label(), brew.FormatDose(session.Output.CoffeeDoseGrams)))
	a.showCurrentStage(ctx)
}

func (a *cliApp) showCurrentStage(ctx context.Context) {
	if a.sessionID == "" {
		a.noSession()
		return
	}

	stage, _, err := a.engine.CurrentStage(ctx, a.sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNoMoreSteps) {
			a.finished()
			return
		}
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}

	session, err := a.engine.Status(ctx, a.sessionID)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	a.ui.PrintStage(*stage, len(session.Stages))

	if pending, _ := a.engine.HasPendingTimers(ctx, a.sessionID); pending {
		a.ui.PrintHint("Say 'timer' once you've poured to start the wait.")
	}
	if next, _ := a.engine.NextStage(ctx, a.sessionID); next == nil {
		a.ui.PrintHint("Last pour. Say 'next' when the bed has drained.")
	}
}

func (a *cliApp) advance(ctx context.Context) {
	if a.sessionID == "" {
		a.noSession()
		return
	}

	if _, err := a.engine.Advance(ctx, a.sessionID); err != nil {
		a.stepFailed(ctx, err)
		return
	}
	a.showCurrentStage(ctx)
}

func (a *cliApp) skip(ctx context.Context) {
	if a.sessionID == "" {
		a.noSession()
		return
	}

	if _, err := a.engine.Skip(ctx, a.sessionID); err != nil {
		a.stepFailed(ctx, err)
		return
	}
	a.ui.PrintHint("Skipped.")
	a.showCurrentStage(ctx)
}

func (a *cliApp) stepFailed(ctx context.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNoMoreSteps):
		a.finished()
	case errors.Is(err, domain.ErrSessionNotActive):
		a.ui.PrintChat(a.notActiveMessage(ctx))
	default:
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
	}
}

// notActiveMessage explains why the current brew refused to move. A
// finished brew is also forgotten so 'brew' can start a new one.
func (a *cliApp) notActiveMessage(ctx context.Context) string {
	s, err := a.engine.Status(ctx, a.sessionID)
	if err != nil {
		return "The brew isn't running."
	}
	if s.Status == domain.SessionPaused {
		return "The brew is paused. Say 'resume' first."
	}
	a.sessionID = ""
	return fmt.Sprintf("That brew is already %s. Say 'brew' to start another.", s.Status)
}

func (a *cliApp) finished() {
	a.ui.PrintChat("That's the last pour. Swirl, let it drain, and enjoy.")
	a.sessionID = ""
}

func (a *cliApp) pause(ctx context.Context) {
	if a.sessionID == "" {
		a.noSession()
		return
	}
	if err := a.engine.Pause(ctx, a.sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotActive) {
			a.ui.PrintHint("Already paused.")
			return
		}
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	a.ui.PrintChat("Paused. Timers are on hold.")
}

func (a *cliApp) resume(ctx context.Context) {
	if a.sessionID == "" {
		a.noSession()
		return
	}
	if _, err := a.engine.Resume(ctx, a.sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionPaused) {
			a.ui.PrintHint("Not paused.")
			return
		}
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	a.ui.PrintChat("Back at it.")
	a.showCurrentStage(ctx)
}

func (a *cliApp) status(ctx context.Context) {
	if a.sessionID == "" {
		a.noSession()
		return
	}

	session, err := a.engine.Status(ctx, a.sessionID)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}

	a.ui.PrintStep(fmt.Sprintf("Brew %s", session.ID))
	a.ui.PrintInstruction(fmt.Sprintf("Plan:    %s, dose %s", session.Label(), brew.FormatDose(session.Output.CoffeeDoseGrams)))
	a.ui.PrintInstruction(fmt.Sprintf("Status:  %s", session.Status))
	a.ui.PrintInstruction(fmt.Sprintf("Stage:   %d/%d", session.CurrentStageIndex+1, len(session.Stages)))
	a.ui.PrintHint(fmt.Sprintf("Started: %s ago", formatDuration(time.Since(session.StartedAt))))

	active := 0
	for _, ts := range session.TimerStates {
		switch ts.Status {
		case domain.TimerRunning, domain.TimerPaused:
			a.ui.PrintChat(fmt.Sprintf("%s: %s left (%s)", ts.Label, formatDuration(ts.Remaining), ts.Status))
			active++
		case domain.TimerFired:
			a.ui.PrintUrgent(fmt.Sprintf("%s: DONE", ts.Label))
			active++
		}
	}
	if active == 0 {
		a.ui.PrintHint("Timers:  none active")
	}
}

func (a *cliApp) startTimer(ctx context.Context) {
	if a.sessionID == "" {
		a.noSession()
		return
	}

	n, err := a.engine.StartPendingTimers(ctx, a.sessionID)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	if n == 0 {
		a.ui.PrintHint("No pending timers to start.")
		return
	}
	a.ui.PrintChat("Timer started.")
}

func (a *cliApp) dismissTimer(ctx context.Context, payload string) {
	if a.sessionID == "" {
		a.noSession()
		return
	}

	if payload != "" {
		if err := a.engine.DismissTimer(ctx, a.sessionID, payload); err != nil {
			a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
			return
		}
		a.ui.PrintChat("Dismissed.")
		return
	}

	active, err := a.engine.ActiveTimers(ctx, a.sessionID)
	if err != nil || len(active) == 0 {
		a.ui.PrintHint("No active timers.")
		return
	}

	// A bare "ok" is a reaction to whatever fired. Fall back to everything
	// when nothing has.
	targets := make([]*domain.TimerState, 0, len(active))
	for _, t := range active {
		if t.Status == domain.TimerFired {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		targets = active
	}

	var labels []string
	for _, t := range targets {
		if err := a.engine.DismissTimer(ctx, a.sessionID, t.ID); err != nil {
			a.log.Error("dismiss timer %s: %v", t.ID, err)
			continue
		}
		labels = append(labels, t.Label)
	}
	if len(labels) > 0 {
		a.ui.PrintChat("Dismissed " + strings.Join(labels, ", ") + ".")
	}
}

// ── cocktails ────────────────────────────────────────────────────

func (a *cliApp) showCocktails(ctx context.Context) {
	list, err := a.engine.ListCocktails(ctx)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error loading cocktails: %v", err))
		return
	}

	a.ui.PrintStep("On the bar:")
	for i, c := range list {
		line := fmt.Sprintf("[%d] %s", i+1, c.Name)
		a.ui.PrintInstruction(line)
		if len(c.Tags) > 0 {
			a.ui.PrintHint("    " + strings.Join(c.Tags, ", "))
		}
	}
	a.ui.PrintChat("Say 'cocktail <number or name>' for the recipe.")
}

func (a *cliApp) showCocktail(ctx context.Context, payload string) {
	c, err := a.findCocktail(ctx, payload)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.ui.PrintHint(fmt.Sprintf("No cocktail matches %q.", payload))
			return
		}
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}

	a.ui.PrintStep(fmt.Sprintf("=== %s ===", c.Name))
	for _, ing := range c.Ingredients {
		a.ui.PrintInstruction(fmt.Sprintf("  - %s oz %s", strconv.FormatFloat(ing.VolumeOz, 'f', -1, 64), ing.Name))
	}
	if len(c.Tags) > 0 {
		a.ui.PrintHint("Tags: " + strings.Join(c.Tags, ", "))
	}
}

// findCocktail resolves a list number, an ID, or the first search hit.
func (a *cliApp) findCocktail(ctx context.Context, payload string) (*domain.Cocktail, error) {
	if n, err := strconv.Atoi(payload); err == nil {
		list, err := a.engine.ListCocktails(ctx)
		if err != nil {
			return nil, err
		}
		if n < 1 || n > len(list) {
			return nil, domain.ErrNotFound
		}
		return a.engine.GetCocktail(ctx, list[n-1].ID)
	}

	if c, err := a.engine.GetCocktail(ctx, strings.ToLower(payload)); err == nil {
		return c, nil
	}

	hits, err := a.engine.SearchCocktails(ctx, payload)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, domain.ErrNotFound
	}
	return a.engine.GetCocktail(ctx, hits[0].ID)
}

// ── misc ─────────────────────────────────────────────────────────

func (a *cliApp) switchTheme(payload string) {
	current, err := theme.ParseScheme(a.ui.Scheme())
	if err != nil {
		current = theme.Dark
	}

	next := theme.Next(current)
	if payload != "" {
		if next, err = theme.ParseScheme(payload); err != nil {
			a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
			return
		}
	}
	theme.Apply(a.ui, next)
	a.ui.PrintHint(fmt.Sprintf("Theme: %s", next))
}

func (a *cliApp) showHistory(ctx context.Context) {
	entries, err := a.engine.History(ctx, historyLimit)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupported) {
			a.ui.PrintHint("History is off. Set storage.historyDb or -db to keep a log.")
			return
		}
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	if len(entries) == 0 {
		a.ui.PrintHint("No brews logged yet.")
		return
	}

	a.ui.PrintStep("Recent brews:")
	for _, e := range entries {
		a.ui.PrintInstruction(fmt.Sprintf("%s  %sml %s  %s  %s",
			e.FinishedAt.Local().Format("Jan 02 15:04"),
			brew.FormatDisplay(e.TotalVolumeML),
			brew.RatioLabel(e.Strong),
			brew.FormatDose(e.DoseGrams),
			e.Status,
		))
	}
}

func (a *cliApp) quit(ctx context.Context) {
	if a.sessionID != "" {
		if err := a.engine.Abandon(ctx, a.sessionID); err != nil {
			a.log.Error("abandoning session: %v", err)
		}
		a.ui.PrintChat("Brew abandoned.")
		a.sessionID = ""
	}
	a.ui.PrintChat("Bye.")
}

func (a *cliApp) noSession() {
	a.ui.PrintHint("No brew running. Say 'brew' to start one.")
}

func (a *cliApp) showHelp() {
	a.ui.PrintStep("Plan:")
	a.ui.PrintInstruction("  500 / volume 500   Set the total volume (200-1000 ml, 50 ml steps)")
	a.ui.PrintInstruction("  strong / 1:15      Use the strong ratio")
	a.ui.PrintInstruction("  standard / 1:17    Use the standard ratio")
	a.ui.PrintInstruction("  ratio              Toggle between the two")
	a.ui.PrintInstruction("  plan / table       Show the pour table")
	a.ui.PrintInstruction("  compare            Diff strong against standard")
	a.ui.Println("")
	a.ui.PrintStep("Brewing:")
	a.ui.PrintInstruction("  brew / go          Start a guided brew")
	a.ui.PrintInstruction("  next / done        Move to the next pour")
	a.ui.PrintInstruction("  skip               Skip the current pour")
	a.ui.PrintInstruction("  repeat / again     Show the current pour again")
	a.ui.PrintInstruction("  pause / resume     Hold or continue the brew and its timers")
	a.ui.PrintInstruction("  status             Show progress and timers")
	a.ui.PrintInstruction("  timer / ready      Start the wait after a pour")
	a.ui.PrintInstruction("  dismiss / ok       Acknowledge a timer")
	a.ui.Println("")
	a.ui.PrintStep("Other:")
	a.ui.PrintInstruction("  cocktails          List the bar")
	a.ui.PrintInstruction("  cocktail <n|name>  Show a cocktail recipe")
	a.ui.PrintInstruction("  theme / dark / light")
	a.ui.PrintInstruction("  history            Recent brews")
	a.ui.PrintInstruction("  quit / exit        Abandon the brew and exit")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
