// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent timer status bar and an input
// prompt at the bottom of the terminal. All application output is
// printed above the rendered area via Program.Println / Printf,
// so concurrent writes never garble the display.
package display

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/theme"
)

const (
	promptText  = "brew> "
	windowTitle = "OttoBrew"
)

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may
// safely call [UI.Println], [UI.Printf], and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	store   domain.SessionStore
	done    atomic.Bool

	color bool
	pal   atomic.Pointer[palette]
}

// NewUI creates the display in the given scheme. Call Run() to start.
func NewUI(store domain.SessionStore, scheme theme.Scheme) *UI {
	u := &UI{
		store:   store,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
		color:   ColorEnabled(),
	}
	theme.Apply(u, scheme)
	return u
}

// Println prints a line above the prompt. Thread-safe.
// Falls back to fmt.Println before the program starts.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt on its own line. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// Submit feeds a line into the input channel as if typed. Used by the
// voice listener.
func (u *UI) Submit(line string) {
	select {
	case u.inputCh <- line:
	default:
	}
}

// PrintChat prints a conversational line.
func (u *UI) PrintChat(text string) {
	u.Println(u.pal.Load().chat.Render("  " + text))
}

// PrintStep prints a stage header like "Stage 2/4: First Pour".
func (u *UI) PrintStep(text string) {
	u.Println(u.pal.Load().stage.Render("  " + text))
}

// PrintInstruction prints the main instruction text.
func (u *UI) PrintInstruction(text string) {
	u.Println(u.pal.Load().primary.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(u.pal.Load().secondary.Render("  " + text))
}

// PrintUrgent prints an urgent/error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(u.pal.Load().urgent.Render("  " + text))
}

// PrintVoice prints a voice-recognised input line.
func (u *UI) PrintVoice(text string) {
	p := u.pal.Load()
	u.Println(p.secondary.Render("[voice] ") + p.primary.Render(text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	p := u.pal.Load()
	u.Println(p.prompt.Render("brew") + p.secondary.Render("> ") + p.echo.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Plain-text prompt: styled prompts add ANSI bytes that break the
	// textinput width math for long input.
	ti.Prompt = promptText
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		store:   u.store,
		pal:     u.pal.Load,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn:  u.PrintUserInput,
	}
	m.restyleInput()

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	store   domain.SessionStore
	pal     func() *palette
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string)
	timers  []timerInfo
	width   int
	scheme  string
}

type timerInfo struct {
	label     string
	remaining time.Duration
	fired     bool
	pending   bool
}

type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Echo from a Cmd so Println never runs inside Update.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(promptText) {
			m.input.Width = msg.Width - len(promptText)
		}
		return m, nil

	case tickMsg:
		m.restyleInput()
		m.refreshTimers()
		title := windowTitle
		if len(m.timers) > 0 {
			title = m.titleStr()
		}
		return m, tea.Batch(tickCmd(), tea.SetWindowTitle(title))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// restyleInput re-applies the palette to the prompt after a theme change.
func (m *model) restyleInput() {
	p := m.pal()
	if p.name == m.scheme {
		return
	}
	m.scheme = p.name
	m.input.PromptStyle = p.prompt
	m.input.TextStyle = p.echo
	m.input.Cursor.Style = p.cursor
}

func (m *model) refreshTimers() {
	sessions, err := m.store.ListActive(context.Background())
	if err != nil {
		return
	}
	m.timers = collectTimers(sessions)
}

// collectTimers flattens visible timers, sorted by label so the bar
// doesn't shuffle every tick.
func collectTimers(sessions []*domain.Session) []timerInfo {
	var out []timerInfo
	for _, s := range sessions {
		for _, ts := range s.TimerStates {
			switch ts.Status {
			case domain.TimerPending:
				out = append(out, timerInfo{label: ts.Label, remaining: ts.Remaining, pending: true})
			case domain.TimerRunning:
				out = append(out, timerInfo{label: ts.Label, remaining: ts.Remaining})
			case domain.TimerFired:
				out = append(out, timerInfo{label: ts.Label, fired: true})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].label < out[j].label
	})
	return out
}

func (m model) titleStr() string {
	var p []string
	for _, t := range m.timers {
		p = append(p, t.label+": "+t.status())
	}
	return windowTitle + " | " + strings.Join(p, " | ")
}

func (t timerInfo) status() string {
	switch {
	case t.fired:
		return "POUR!"
	case t.pending:
		return "waiting"
	default:
		return fmtDuration(t.remaining)
	}
}

func (m model) View() string {
	var b strings.Builder

	if len(m.timers) > 0 {
		b.WriteString(m.renderBar())
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar() string {
	p := m.pal()
	var parts []string
	for _, t := range m.timers {
		switch {
		case t.fired:
			parts = append(parts, p.timerDone.Render(t.label+": "+t.status()))
		case t.pending:
			parts = append(parts, p.timerWait.Render(t.label+": "+t.status()))
		default:
			parts = append(parts, p.label.Render(t.label+": ")+p.timerRun.Render(t.status()))
		}
	}

	content := " " + strings.Join(parts, p.sep.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return p.bar.Width(w).Render(content)
}

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
