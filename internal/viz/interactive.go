package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// BuildFunc creates the live view for a named preset.
type BuildFunc func(name string) (Model, error)

// Picker lists presets and hands over to the live view of the chosen one.
type Picker struct {
	names         []string
	info          map[string]string
	cursor        int
	build         BuildFunc
	live          *Model
	err           error
	width, height int
}

func NewPicker(names []string, info map[string]string, build BuildFunc) Picker {
	return Picker{names: names, info: info, build: build}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		p.width, p.height = size.Width, size.Height
	}

	if p.live != nil {
		next, cmd := p.live.Update(msg)
		live := next.(Model)
		p.live = &live
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case "enter":
		if len(p.names) == 0 {
			return p, nil
		}
		live, err := p.build(p.names[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		if p.width > 0 {
			live.resize(p.width, p.height)
		}
		p.live = &live
		p.err = nil
		return p, live.Init()
	}
	return p, nil
}

func (p Picker) View() string {
	if p.live != nil {
		return p.live.View()
	}

	var s strings.Builder
	s.WriteString("\n  " + GradientText("CHAINSIM", CurrentTheme.Primary, CurrentTheme.Secondary) + "\n")
	s.WriteString("  " + dimmer.Render(strings.Repeat("─", 36)) + "\n\n")

	for i, name := range p.names {
		line := fmt.Sprintf("%-14s %s", name, dim.Render(p.info[name]))
		if i == p.cursor {
			s.WriteString("  " + cyan.Render("› ") + white.Render(line) + "\n")
		} else {
			s.WriteString("    " + line + "\n")
		}
	}

	if p.err != nil {
		s.WriteString("\n  " + red.Render(p.err.Error()) + "\n")
	}

	s.WriteString("\n  " + dim.Render("↑↓ select   enter start   q quit") + "\n")
	return s.String()
}
