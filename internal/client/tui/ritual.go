package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/services"
	"github.com/dmitrijs2005/anchor/internal/ritual"

	tea "github.com/charmbracelet/bubbletea"
)

// RecordFunc commits a finished ritual locally. It is called once, when the
// countdown reaches zero.
type RecordFunc func(ctx context.Context) (*services.Outcome, error)

// PushFunc sends a recorded ritual to the server and returns the toast to
// show, empty on success. It runs in the background and may outlive the
// screen.
type PushFunc func(ctx context.Context, out *services.Outcome) string

// RitualModel is the countdown screen. The controller runs in a tea.Cmd and
// its events come back through msgs.
type RitualModel struct {
	anchor *anchor.Anchor
	cfg    ritual.Config
	record RecordFunc
	push   PushFunc
	opts   []ritual.Option

	ctx    context.Context
	cancel context.CancelFunc
	msgs   chan tea.Msg

	progress  progress.Model
	event     ritual.Event
	prompt    string
	haptic    ritual.Feedback
	finishing bool

	outcome   *services.Outcome
	pushed    bool
	err       error
	cancelled bool
}

func NewRitualModel(ctx context.Context, a *anchor.Anchor, cfg ritual.Config, record RecordFunc, push PushFunc, opts ...ritual.Option) RitualModel {
	ctx, cancel := context.WithCancel(ctx)
	total := cfg.Total()
	return RitualModel{
		anchor:   a,
		cfg:      cfg,
		record:   record,
		push:     push,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		msgs:     make(chan tea.Msg, 16),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		event:    ritual.Event{Remaining: total, PhaseName: firstPhase(cfg)},
	}
}

func firstPhase(cfg ritual.Config) string {
	if len(cfg.Phases) == 0 {
		return ""
	}
	return cfg.Phases[0].Name
}

func (m RitualModel) Outcome() *services.Outcome { return m.outcome }
func (m RitualModel) Err() error                 { return m.err }
func (m RitualModel) Cancelled() bool            { return m.cancelled }

// Pending reports whether the ritual was recorded but the push had not
// finished when the screen closed.
func (m RitualModel) Pending() bool { return m.outcome != nil && m.push != nil && !m.pushed }

func (m RitualModel) Init() tea.Cmd {
	return tea.Batch(m.runCmd(), m.listenCmd())
}

func (m RitualModel) send(msg tea.Msg) {
	select {
	case m.msgs <- msg:
	case <-m.ctx.Done():
	}
}

// runCmd blocks for the whole countdown. The push is started in its own
// goroutine so leaving the screen never waits on the network.
func (m RitualModel) runCmd() tea.Cmd {
	return func() tea.Msg {
		opts := append([]ritual.Option{}, m.opts...)
		opts = append(opts, ritual.WithObserver(func(e ritual.Event) {
			m.send(RitualEventMsg{Event: e})
		}))
		ctrl := ritual.NewController(m.cfg, func(ctx context.Context) {
			var out *services.Outcome
			var err error
			if m.record != nil {
				out, err = m.record(ctx)
			}
			m.send(RitualOutcomeMsg{Outcome: out, Err: err})
			if err != nil || out == nil || m.push == nil {
				return
			}
			go func() {
				toast := m.push(context.WithoutCancel(ctx), out)
				m.send(RitualPushedMsg{Toast: toast})
			}()
		}, opts...)
		return RitualStoppedMsg{Err: ctrl.Run(m.ctx)}
	}
}

func (m RitualModel) listenCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.msgs:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m RitualModel) done() bool { return m.outcome != nil || m.err != nil }

func (m RitualModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case KeyQuit, KeyEsc, KeyEnter:
			if m.done() {
				m.cancel()
				return m, tea.Quit
			}
		case KeyCtrlC:
			switch {
			case m.done():
			case m.finishing:
				// the local write is in flight
				return m, nil
			default:
				m.cancelled = true
			}
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.progress.Width = max(msg.Width-8, 10)

	case RitualEventMsg:
		m.event = msg.Event
		switch msg.Event.Kind {
		case ritual.EventPrompt:
			m.prompt = msg.Event.Prompt
		case ritual.EventHaptic:
			m.haptic = msg.Event.Feedback
			if msg.Event.Feedback == ritual.FeedbackSuccess {
				m.finishing = true
			}
		case ritual.EventComplete:
			m.finishing = true
		}
		return m, m.listenCmd()

	case RitualOutcomeMsg:
		m.finishing = true
		m.outcome = msg.Outcome
		m.err = msg.Err
		return m, tea.Batch(m.listenCmd(), quitAfter(m.cfg.CompletionDelay))

	case RitualPushedMsg:
		m.pushed = true
		if m.outcome != nil {
			o := *m.outcome
			o.Toast = msg.Toast
			o.Synced = msg.Toast == ""
			m.outcome = &o
		}
		return m, m.listenCmd()

	case RitualStoppedMsg:
		if msg.Err != nil {
			if !m.done() {
				m.cancelled = true
			}
			m.cancel()
			return m, tea.Quit
		}
		return m, nil

	case QuitMsg:
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func quitAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return QuitMsg{} })
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func (m RitualModel) View() string {
	var sb strings.Builder

	total := m.cfg.Total()
	sb.WriteString(TitleStyle.Render(ritualTitle(m.cfg)) + "\n")
	if m.anchor != nil {
		sb.WriteString(DimStyle.Render(m.anchor.IntentionText) + "\n")
	}
	sb.WriteString("\n")

	if len(m.cfg.Phases) > 1 {
		sb.WriteString(PhaseStyle.Render(fmt.Sprintf("Phase %d/%d · %s",
			m.event.Phase+1, len(m.cfg.Phases), m.event.PhaseName)) + "\n")
	}
	sb.WriteString(CountdownStyle.Render(formatClock(m.event.Remaining)) + "\n")

	ratio := 0.0
	if total > 0 {
		ratio = float64(m.event.Elapsed) / float64(total)
	}
	sb.WriteString(m.progress.ViewAs(ratio) + "\n\n")

	if m.prompt != "" {
		sb.WriteString(PromptStyle.Render(m.prompt) + "\n")
	}
	if m.haptic != 0 {
		sb.WriteString(HapticStyle.Render("◉ "+m.haptic.String()) + "\n")
	}

	switch {
	case m.err != nil:
		sb.WriteString(ToastStyle.Render("Could not save the session: "+m.err.Error()) + "\n")
	case m.outcome != nil && m.outcome.Toast != "":
		sb.WriteString(ToastStyle.Render(m.outcome.Toast) + "\n")
	case m.Pending():
		sb.WriteString(SuccessStyle.Render("Complete") + DimStyle.Render(" · syncing") + "\n")
	case m.outcome != nil:
		sb.WriteString(SuccessStyle.Render("Complete") + "\n")
	}
	return sb.String()
}

func ritualTitle(cfg ritual.Config) string {
	switch cfg.Name {
	case "quick_charge":
		return "Quick charge"
	case "deep_charge":
		return "Deep charge"
	case "activation":
		return "Activation"
	}
	return cfg.Name
}

// RunRitual shows the countdown until it completes and the completion delay
// has passed, or until ctrl+c.
func RunRitual(m RitualModel, opts ...tea.ProgramOption) (RitualModel, error) {
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		m.cancel()
		return m, err
	}
	return final.(RitualModel), nil
}
