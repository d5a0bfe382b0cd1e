// Package tui provides a Bubble Tea terminal user interface for dashdl.
//
// The UI is a passive view over a running download: progress events, status
// messages and item state changes are forwarded into the Bubble Tea program
// with Program.Send, and overwrite questions are answered through a reply
// channel. The work itself runs in its own goroutine; see UI.Run.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/dash-downloader/internal/download"
	prog "github.com/handiism/dash-downloader/internal/progress"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFE66D")).
			Padding(0, 1)
)

const maxLogs = 10

// Message types
type (
	progressMsg struct {
		Event prog.Event
	}

	statusMsg struct {
		Event download.StatusEvent
	}

	stateMsg struct {
		Update download.ItemUpdate
	}

	confirmMsg struct {
		Question string
		Reply    chan<- bool
	}

	doneMsg struct {
		Err error
	}
)

// Options configure the UI.
type Options struct {
	// Verbose shows LevelVerbose status messages.
	Verbose bool

	// Cancel is called when the user presses ctrl+c.
	Cancel context.CancelFunc
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	spinner  spinner.Model
	progress progress.Model

	bars  map[int64]prog.Snapshot
	logs  []download.StatusEvent
	item  download.ItemUpdate
	ask   *confirmMsg
	done  bool
	err   error
	width int

	verbose bool
	cancel  context.CancelFunc
	now     func() time.Time
}

// NewModel creates a new TUI model.
func NewModel(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return Model{
		spinner:  sp,
		progress: bar,
		bars:     make(map[int64]prog.Snapshot),
		verbose:  opts.Verbose,
		cancel:   opts.Cancel,
		now:      time.Now,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-50, 20), 60)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		bar := msg.Event.Bar
		switch msg.Event.Type {
		case prog.EventFinished, prog.EventAborted:
			delete(m.bars, bar.ID)
		default:
			m.bars[bar.ID] = bar
		}

	case statusMsg:
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			return m, nil
		}
		m.logs = append(m.logs, msg.Event)
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case stateMsg:
		m.item = msg.Update

	case confirmMsg:
		m.ask = &msg

	case doneMsg:
		m.done = true
		m.err = msg.Err
		m.answer(false)
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.answer(false)
		if m.cancel == nil {
			return m, tea.Quit
		}
		// The work goroutine observes the cancellation and reports doneMsg.
		m.cancel()
		return m, nil
	}

	if m.ask == nil {
		return m, nil
	}
	switch msg.String() {
	case "y", "Y":
		m.answer(true)
	case "n", "N", "enter", "esc":
		m.answer(false)
	}
	return m, nil
}

// answer replies to a pending question, if any.
func (m *Model) answer(yes bool) {
	if m.ask == nil {
		return
	}
	m.ask.Reply <- yes
	m.ask = nil
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("dashdl"))
	b.WriteString("\n")

	if m.item.Title != "" {
		b.WriteString(m.viewItem())
		b.WriteString("\n\n")
	}

	if bars := m.viewBars(); bars != "" {
		b.WriteString(bars)
		b.WriteString("\n")
	}

	b.WriteString(m.renderLogs())

	if m.ask != nil {
		b.WriteString("\n")
		b.WriteString(promptStyle.Render(m.ask.Question + "  [y/N]"))
		b.WriteString("\n")
	}

	if !m.done {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("ctrl+c: cancel"))
	}
	return b.String()
}

func (m Model) viewItem() string {
	counter := ""
	if m.item.Count > 1 {
		counter = fmt.Sprintf("[%d/%d] ", m.item.Index+1, m.item.Count)
	}
	line := subtitleStyle.Render(counter + m.item.Title)

	switch m.item.State {
	case download.StateMerging:
		return m.spinner.View() + " " + line + " " + infoStyle.Render("merging")
	case download.StateCompleted:
		return line + " " + successStyle.Render("done")
	case download.StateFailed:
		return line + " " + errorStyle.Render("failed")
	default:
		return line
	}
}

func (m Model) viewBars() string {
	ids := make([]int64, 0, len(m.bars))
	for id := range m.bars {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	now := m.now()
	for _, id := range ids {
		bar := m.bars[id]
		total := "?"
		if bar.Total >= 0 {
			total = prog.FormatBytes(bar.Total)
		}
		fmt.Fprintf(&b, "%-14s %s %s / %s  ETA %s\n",
			bar.Label,
			m.progress.ViewAs(bar.Percent()),
			prog.FormatBytes(bar.Current), total,
			prog.FormatETA(bar.ETA(now)))
	}
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

// UI drives a Model from outside the Bubble Tea program. Its methods are
// safe for concurrent use and may be wired directly as the progress sink,
// status callback, state callback and overwrite confirmer of a download.
type UI struct {
	program *tea.Program

	// exited is closed once the program has stopped.
	exited chan struct{}
}

// New creates a UI. Options passed in teaOpts go to tea.NewProgram.
func New(opts Options, teaOpts ...tea.ProgramOption) *UI {
	return &UI{program: tea.NewProgram(NewModel(opts), teaOpts...), exited: make(chan struct{})}
}

// Handle implements progress.Sink.
func (u *UI) Handle(ev prog.Event) {
	u.program.Send(progressMsg{Event: ev})
}

// Status forwards a status message.
func (u *UI) Status(ev download.StatusEvent) {
	u.program.Send(statusMsg{Event: ev})
}

// OnState forwards an item state change.
func (u *UI) OnState(up download.ItemUpdate) {
	u.program.Send(stateMsg{Update: up})
}

// Confirm shows question and waits for a y/n answer. Cancelling ctx
// abandons the question.
func (u *UI) Confirm(ctx context.Context, question string) (bool, error) {
	reply := make(chan bool, 1)
	u.program.Send(confirmMsg{Question: question, Reply: reply})

	select {
	case yes := <-reply:
		return yes, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-u.exited:
		return false, nil
	}
}

// Run starts the program and runs work alongside it. It returns when work
// has returned, with work's error, or with the program's error if the
// terminal could not be driven.
func (u *UI) Run(work func() error) error {
	result := make(chan error, 1)
	go func() {
		err := work()
		result <- err
		u.program.Send(doneMsg{Err: err})
	}()

	_, err := u.program.Run()
	close(u.exited)
	if err != nil {
		<-result
		return fmt.Errorf("terminal UI: %w", err)
	}
	return <-result
}
