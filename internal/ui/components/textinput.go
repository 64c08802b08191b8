// Package components holds the small widgets the drill screen is built from.
package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillgym/internal/ui/theme"
)

// Mark is the outcome decoration shown after the input.
type Mark int

const (
	MarkNone Mark = iota
	MarkCorrect
	MarkWrong
)

// AnswerInput wraps bubbles/textinput with an outcome mark.
type AnswerInput struct {
	Model textinput.Model
	mark  Mark
}

// NewAnswerInput creates a focused input limited to charLimit runes.
func NewAnswerInput(placeholder string, charLimit int) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	ti.Focus()
	return AnswerInput{Model: ti}
}

// Init returns the cursor blink command.
func (a AnswerInput) Init() tea.Cmd {
	return a.Model.Focus()
}

// Update forwards msg to the wrapped input. A new keystroke clears the mark.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	before := a.Model.Value()
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	if a.Model.Value() != before {
		a.mark = MarkNone
	}
	return a, cmd
}

// View renders the input followed by its mark.
func (a AnswerInput) View() string {
	view := a.Model.View()
	switch a.mark {
	case MarkCorrect:
		view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	case MarkWrong:
		view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
	}
	return view
}

// Value returns the current text.
func (a AnswerInput) Value() string {
	return a.Model.Value()
}

// SetValue replaces the text and moves the cursor to the end.
func (a *AnswerInput) SetValue(s string) {
	a.Model.SetValue(s)
	a.Model.CursorEnd()
}

// Reset clears text and mark.
func (a *AnswerInput) Reset() {
	a.Model.Reset()
	a.mark = MarkNone
}

// SetMark sets the outcome decoration.
func (a *AnswerInput) SetMark(m Mark) {
	a.mark = m
}

// Mark returns the current decoration.
func (a AnswerInput) Mark() Mark {
	return a.mark
}
