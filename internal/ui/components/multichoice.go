package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillgym/internal/ui/theme"
)

// ChoiceList renders numbered options with a movable highlight. Selected
// is -1 until the learner moves the highlight.
type ChoiceList struct {
	Options  []string
	Selected int
}

// NewChoiceList creates a list with nothing highlighted.
func NewChoiceList(options []string) ChoiceList {
	return ChoiceList{Options: options, Selected: -1}
}

// Move shifts the highlight by delta, clamped to the options.
func (c *ChoiceList) Move(delta int) {
	if len(c.Options) == 0 {
		return
	}
	if c.Selected < 0 {
		if delta < 0 {
			c.Selected = len(c.Options) - 1
		} else {
			c.Selected = 0
		}
		return
	}
	c.Selected = min(max(c.Selected+delta, 0), len(c.Options)-1)
}

// Current returns the highlighted option, if any.
func (c ChoiceList) Current() (string, bool) {
	if c.Selected < 0 || c.Selected >= len(c.Options) {
		return "", false
	}
	return c.Options[c.Selected], true
}

// View renders one line per option.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == c.Selected {
			prefix = "▸ "
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%d) %s", prefix, i+1, opt)))
		b.WriteString("\n")
	}
	return b.String()
}
