// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package differ

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-tfe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/tfdelta/internal/output"
	"github.com/tfctl/tfdelta/streamdiff"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m model, msgs ...tea.Msg) (model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(model)
	}
	return m, cmd
}

func items() []*tfe.StateVersion {
	return []*tfe.StateVersion{
		{ID: "sv-3", Serial: 3},
		{ID: "sv-2", Serial: 2},
		{ID: "sv-1", Serial: 1},
	}
}

func TestPicker(t *testing.T) {
	t.Parallel()
	down := tea.KeyMsg{Type: tea.KeyDown}
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	tests := []struct {
		name     string
		keys     []tea.Msg
		wantFrom string
		wantTo   string
		wantQuit bool
		wantErr  error
	}{
		{
			name:     "newest then oldest",
			keys:     []tea.Msg{runes(" "), down, down, runes(" "), enter},
			wantFrom: "sv-1",
			wantTo:   "sv-3",
			wantQuit: true,
		},
		{
			name:     "oldest then newest",
			keys:     []tea.Msg{runes("j"), runes("x"), runes("k"), runes(" "), enter},
			wantFrom: "sv-2",
			wantTo:   "sv-3",
			wantQuit: true,
		},
		{
			name:    "enter needs two",
			keys:    []tea.Msg{runes(" "), enter},
			wantErr: ErrCancelled,
		},
		{
			name:    "toggle off",
			keys:    []tea.Msg{runes(" "), down, runes(" "), runes(" "), enter},
			wantErr: ErrCancelled,
		},
		{
			name:     "third pick is ignored",
			keys:     []tea.Msg{runes(" "), down, runes(" "), down, runes(" "), enter},
			wantFrom: "sv-2",
			wantTo:   "sv-3",
			wantQuit: true,
		},
		{
			name:     "quit",
			keys:     []tea.Msg{runes(" "), down, runes(" "), runes("q")},
			wantErr:  ErrCancelled,
			wantQuit: true,
		},
		{
			name:    "cursor stays in bounds",
			keys:    []tea.Msg{tea.KeyMsg{Type: tea.KeyUp}, down, down, down, down},
			wantErr: ErrCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, cmd := press(model{items: items()}, tt.keys...)
			assert.Equal(t, tt.wantQuit, cmd != nil)
			assert.GreaterOrEqual(t, m.cursor, 0)
			assert.Less(t, m.cursor, len(m.items))

			from, to, err := m.result()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, from.ID)
			assert.Equal(t, tt.wantTo, to.ID)
		})
	}
}

func TestPickerView(t *testing.T) {
	t.Parallel()
	m, _ := press(model{items: items()}, runes(" "))
	view := m.View()
	assert.Contains(t, view, "sv-3")
	assert.Contains(t, view, "[x]")
	assert.Contains(t, view, "enter: go")
}

func TestPick_TooFew(t *testing.T) {
	t.Parallel()
	_, _, err := Pick(items()[:1])
	assert.ErrorContains(t, err, "at least two")
}

func TestRun(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := output.NewRenderer(&buf, output.Options{}, streamdiff.Identity[string])
	d := streamdiff.New(streamdiff.FromSlices(
		[]string{"Chocolate", "Bonbon"},
		[]string{"Chocolate", "Cookie"},
	))

	require.NoError(t, Run(context.Background(), d, r))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.ElementsMatch(t, []string{"+ Chocolate", "+ Bonbon"}, lines[:2])
	assert.Equal(t, []string{"- Bonbon", "+ Cookie"}, lines[2:])
	assert.Equal(t, streamdiff.Exhausted, d.State())
}

func TestRun_Fault(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	calls := 0
	src := streamdiff.SourceFunc[string](func(context.Context) ([]string, error) {
		calls++
		if calls == 1 {
			return []string{"a"}, nil
		}
		return nil, boom
	})

	var buf bytes.Buffer
	r := output.NewRenderer(&buf, output.Options{}, streamdiff.Identity[string])
	err := Run(context.Background(), streamdiff.New(src), r)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "+ a\n", buf.String())
}
