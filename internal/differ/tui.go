// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-tfe"
)

// ErrCancelled is returned by Pick when the user quits without choosing.
var ErrCancelled = errors.New("no state versions picked")

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Go     key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle: key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle")),
	Go:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "quit")),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f6be00"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00c8f0"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// Pick lets the user mark two of versions, which are ordered newest first,
// and returns them as (older, newer). The picker draws on stderr so that
// stdout only carries events.
func Pick(versions []*tfe.StateVersion) (from, to *tfe.StateVersion, err error) {
	if len(versions) < 2 {
		return nil, nil, fmt.Errorf("need at least two state versions to pick from, have %d", len(versions))
	}

	p := tea.NewProgram(model{items: versions}, tea.WithOutput(os.Stderr))
	m, err := p.Run()
	if err != nil {
		return nil, nil, err
	}
	return m.(model).result()
}

type model struct {
	items    []*tfe.StateVersion
	cursor   int
	selected []*tfe.StateVersion
	done     bool
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msgKey, keys.Quit):
		m.selected = nil
		return m, tea.Quit
	case key.Matches(msgKey, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msgKey, keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msgKey, keys.Toggle):
		m.toggle(m.items[m.cursor])
	case key.Matches(msgKey, keys.Go):
		if len(m.selected) == 2 {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *model) toggle(sv *tfe.StateVersion) {
	if i := m.index(sv); i >= 0 {
		m.selected = slices.Delete(slices.Clone(m.selected), i, i+1)
		return
	}
	if len(m.selected) < 2 {
		m.selected = append(slices.Clone(m.selected), sv)
	}
}

func (m model) index(sv *tfe.StateVersion) int {
	return slices.IndexFunc(m.selected, func(s *tfe.StateVersion) bool { return s.ID == sv.ID })
}

// result orders the two picks by their position in items, which is newest
// first.
func (m model) result() (from, to *tfe.StateVersion, err error) {
	if !m.done || len(m.selected) != 2 {
		return nil, nil, ErrCancelled
	}
	a, b := m.selected[0], m.selected[1]
	pos := func(sv *tfe.StateVersion) int {
		return slices.IndexFunc(m.items, func(s *tfe.StateVersion) bool { return s.ID == sv.ID })
	}
	if pos(a) < pos(b) {
		a, b = b, a
	}
	return a, b, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Pick the first and last state versions to replay:"))
	b.WriteString("\n\n")

	for i, sv := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = cursorStyle.Render(">")
		}
		mark := " "
		line := fmt.Sprintf("%6d  %s  %s", sv.Serial, sv.CreatedAt.Format("2006-01-02T15:04:05Z"), sv.ID)
		if m.index(sv) >= 0 {
			mark = "x"
			line = selectedStyle.Render(line)
		}
		fmt.Fprintf(&b, "%s [%s] %s\n", cursor, mark, line)
	}

	help := []string{}
	for _, k := range []key.Binding{keys.Up, keys.Down, keys.Toggle, keys.Go, keys.Quit} {
		h := k.Help()
		help = append(help, h.Key+": "+h.Desc)
	}
	b.WriteString("\n" + helpStyle.Render(strings.Join(help, "  ")) + "\n")
	return b.String()
}
