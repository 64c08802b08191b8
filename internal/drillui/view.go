package drillui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillgym/internal/session"
	"github.com/abhisek/drillgym/internal/ui/components"
	"github.com/abhisek/drillgym/internal/ui/layout"
	"github.com/abhisek/drillgym/internal/ui/theme"
)

func (m *Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	st := m.state
	header := layout.RenderHeader(m.run.EngineName(), layout.Status{
		Level:    st.Level.Current,
		Score:    st.Session.Score,
		Question: st.Session.Question,
		Of:       st.QuestionCount,
	}, m.width)
	footer := layout.RenderFooter(m.KeyHints(), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	v.SetContent(layout.RenderFrame(header, m.render(m.width, contentHeight), footer, m.width, m.height))
	return v
}

func (m *Model) render(width, height int) string {
	switch {
	case m.err != nil:
		return m.renderError(width)
	case m.state.Status == session.StatusFinished:
		return renderSummary(m.run.Summary(), width)
	case m.state.Status == session.StatusLoading || m.state.Active.Problem == nil:
		return centered(width).Foreground(theme.TextDim).Render("\n\nLoading next problem...")
	}
	return m.renderProblem(width)
}

func (m *Model) renderError(width int) string {
	return centered(width).Render("\n\n" +
		theme.Incorrect.Render("Something went wrong") + "\n\n" +
		theme.Body.Render(m.err.Error()) + "\n\n" +
		theme.Hint.Render("Press Enter to exit"))
}

// renderProblem draws the timer, the prompt, the answer area and whatever
// the last action revealed.
func (m *Model) renderProblem(width int) string {
	st := m.state
	a := st.Active
	p := a.Problem
	inner := max(width-8, 10)

	var b strings.Builder

	timer := components.TimerBar{Remaining: st.Session.TimeLeft, Limit: st.TimeLimit, Width: inner}
	b.WriteString("  " + timer.View())
	b.WriteString("\n\n")

	if p.Context != "" {
		b.WriteString(theme.Context.Width(width).Render(p.Context))
		b.WriteString("\n")
	}
	b.WriteString(theme.Prompt.Width(width).Render(p.Prompt))
	b.WriteString("\n\n")

	if len(m.choices.Options) > 0 {
		b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Render(m.choices.View()))
		b.WriteString("\n")
	}
	b.WriteString(centered(width).Render(m.input.View()))
	b.WriteString("\n\n")

	if a.Feedback != "" {
		style := theme.Incorrect
		if a.Status == session.SubCorrect {
			style = theme.Correct
		}
		b.WriteString(centered(width).Render(style.Render(a.Feedback)))
		b.WriteString("\n")
	}
	if a.Expired {
		b.WriteString(centered(width).Render(theme.Hint.Render("Time's up.")))
		b.WriteString("\n")
	}

	if a.Status == session.SubCorrect || a.UsedSolution || a.Expired {
		b.WriteString("\n")
		b.WriteString(renderSolution(a, inner))
	}

	if a.AskFeedback {
		b.WriteString("\n")
		b.WriteString(renderFeedbackPrompt())
	}
	return b.String()
}

func renderSolution(a session.ActiveProblem, width int) string {
	var lines []string
	lines = append(lines, theme.Body.Render("Answer: ")+theme.Correct.Render(a.Problem.Shown()))

	switch {
	case a.Solving:
		lines = append(lines, theme.Hint.Render("Working out the steps..."))
	case len(a.Steps) > 0:
		for i, s := range a.Steps {
			lines = append(lines, theme.Body.Render(fmt.Sprintf("%d. %s", i+1, s)))
		}
	case a.Problem.Explanation != "":
		lines = append(lines, theme.Hint.Render(a.Problem.Explanation))
	}

	return theme.Card.Width(width).MarginLeft(2).Render(strings.Join(lines, "\n"))
}

func renderFeedbackPrompt() string {
	parts := make([]string, 0, len(feedbackOptions))
	for _, o := range feedbackOptions {
		parts = append(parts,
			lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(strings.ToUpper(o.Key))+" "+
				theme.Body.Render(o.Label))
	}
	return "  " + theme.Hint.Render("What happened?  ") + strings.Join(parts, "   ")
}

func renderSummary(sum session.Summary, width int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Run complete!"))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	rows := [][2]string{
		{"Questions", fmt.Sprintf("%d", sum.TotalQuestions)},
		{"Correct", fmt.Sprintf("%d", sum.TotalCorrect)},
		{"Accuracy", fmt.Sprintf("%.0f%%", sum.Accuracy*100)},
		{"Score", fmt.Sprintf("%d", sum.Score)},
		{"Timed out", fmt.Sprintf("%d", sum.TimedOut)},
		{"Duration", fmt.Sprintf("%d:%02d", mins, secs)},
	}
	var lines []string
	for _, r := range rows {
		lines = append(lines,
			lipgloss.NewStyle().Foreground(theme.TextDim).Width(12).Render(r[0])+
				theme.Body.Bold(true).Render(r[1]))
	}
	b.WriteString(centered(width).Render(theme.Card.Render(strings.Join(lines, "\n"))))
	b.WriteString("\n\n")
	b.WriteString(centered(width).Render(theme.Hint.Render("Press Enter to exit")))
	return b.String()
}

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}
