package tui

import (
	"strings"

	"github.com/dmitrijs2005/anchor/internal/sequencer"

	tea "github.com/charmbracelet/bubbletea"
)

// OnboardingModel walks a sequencer one screen at a time. Enter continues,
// left goes back while the sequencer allows it.
type OnboardingModel struct {
	seq  *sequencer.Sequencer
	err  error
	quit bool
}

func NewOnboardingModel(seq *sequencer.Sequencer) OnboardingModel {
	return OnboardingModel{seq: seq}
}

// Completed reports whether the final CTA ran successfully.
func (m OnboardingModel) Completed() bool { return m.seq.Completed() }

func (m OnboardingModel) Init() tea.Cmd { return nil }

func (m OnboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case KeyQuit, KeyEsc, KeyCtrlC:
		m.quit = true
		return m, tea.Quit

	case KeyEnter, KeySpace:
		done, err := m.seq.Continue()
		m.err = err
		if done {
			return m, tea.Quit
		}

	case KeyLeft, KeyBackspace, KeyH:
		if err := m.seq.Back(); err == nil {
			m.err = nil
		}
	}
	return m, nil
}

func (m OnboardingModel) View() string {
	var sb strings.Builder

	dots := make([]string, m.seq.Len())
	for i := range dots {
		if i == m.seq.Index() {
			dots[i] = StepDotActiveStyle.Render("●")
		} else {
			dots[i] = StepDotStyle.Render("○")
		}
	}
	sb.WriteString(strings.Join(dots, " ") + "\n\n")

	step := m.seq.Current()
	sb.WriteString(TitleStyle.Render(step.Headline) + "\n")
	sb.WriteString(step.Body + "\n\n")
	sb.WriteString(CTAStyle.Render("[enter] "+step.CTA) + "\n")

	hints := []string{"q to skip"}
	if m.seq.CanGoBack() {
		hints = append([]string{"← back"}, hints...)
	}
	sb.WriteString(DimStyle.Render(strings.Join(hints, " · ")) + "\n")

	if m.err != nil {
		sb.WriteString(ToastStyle.Render(m.err.Error()) + "\n")
	}
	return sb.String()
}

// RunOnboarding shows seq and reports whether it was completed.
func RunOnboarding(seq *sequencer.Sequencer, opts ...tea.ProgramOption) (bool, error) {
	final, err := tea.NewProgram(NewOnboardingModel(seq), opts...).Run()
	if err != nil {
		return false, err
	}
	return final.(OnboardingModel).Completed(), nil
}
