package components

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillgym/internal/ui/theme"
)

// TimerBar shows the time left for the active problem.
type TimerBar struct {
	Remaining time.Duration
	Limit     time.Duration
	Width     int
}

// Fraction returns the remaining share of the limit in [0, 1].
func (t TimerBar) Fraction() float64 {
	if t.Limit <= 0 {
		return 0
	}
	f := float64(t.Remaining) / float64(t.Limit)
	return min(max(f, 0), 1)
}

// View renders the bar followed by the seconds left.
func (t TimerBar) View() string {
	label := fmt.Sprintf("  %3ds", int((t.Remaining+time.Second-1)/time.Second))
	barWidth := max(t.Width-len(label), 4)

	f := t.Fraction()
	filled := min(int(float64(barWidth)*f+0.5), barWidth)

	fill := theme.TimerFill
	if f < 0.2 {
		fill = theme.TimerLow
	}

	return fill.Render(strings.Repeat(" ", filled)) +
		theme.TimerEmpty.Render(strings.Repeat(" ", barWidth-filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
}
