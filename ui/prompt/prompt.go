package prompt

import (
	"errors"
	"fmt"
	"os"

	"netdiag/internal/section"
	"netdiag/ui/render"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// InteractiveAvailable reports whether the terminal can host the picker.
func InteractiveAvailable() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// ChooseSections shows a multi-select over the registry and returns the
// chosen IDs. Backing out of the form reads as an empty pick, not an error.
func ChooseSections(all []section.Section) ([]section.ID, error) {
	opts := make([]huh.Option[string], 0, len(all))
	for _, sec := range all {
		opts = append(opts, huh.NewOption(sec.Title, string(sec.ID)))
	}

	var picked []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("netdiag").
				Description("Pick the diagnostics to run").
				Options(opts...).
				Value(&picked),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, fmt.Errorf("section picker: %w", err)
	}
	return toIDs(picked), nil
}

func toIDs(picked []string) []section.ID {
	ids := make([]section.ID, 0, len(picked))
	for _, p := range picked {
		ids = append(ids, section.ID(p))
	}
	return ids
}

// Spin runs action behind an animated spinner on stderr. Without a terminal
// there is nothing to animate and action simply runs inline. Spin never
// returns before action has finished.
func Spin(title string, action func()) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		action()
		return
	}

	done := make(chan struct{})
	p := tea.NewProgram(newSpinModel(title), tea.WithOutput(os.Stderr), tea.WithInput(nil))

	go func() {
		action()
		close(done)
		p.Send(spinDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		// The spinner is cosmetic; the probe result still matters.
		<-done
		return
	}
	<-done
}

type spinDoneMsg struct{}

type spinModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func newSpinModel(title string) spinModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(render.Accent)
	return spinModel{spinner: s, title: title}
}

func (m spinModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinDoneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View goes blank once the work is done so quitting leaves no stray line.
func (m spinModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.title)
}
