// Package drillui is the terminal front end of a drill run. It renders a
// session.Runner's read model and turns keystrokes into runner intents.
package drillui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/problemgen"
	"github.com/abhisek/drillgym/internal/session"
	"github.com/abhisek/drillgym/internal/ui/components"
	"github.com/abhisek/drillgym/internal/ui/layout"
)

const (
	defaultRefresh = 100 * time.Millisecond
	inputCharLimit = 120
)

// feedbackOption maps a function key to a mistake classification.
type feedbackOption struct {
	Key       string
	Kind      string
	Sentiment string
	Label     string
}

var feedbackOptions = []feedbackOption{
	{Key: "f1", Kind: "careless", Sentiment: "neutral", Label: "Careless slip"},
	{Key: "f2", Kind: "concept", Sentiment: "negative", Label: "Didn't know how"},
	{Key: "f3", Kind: "question", Sentiment: "negative", Label: "Question looks wrong"},
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. The screen owns the terminal, so the logger
// must not write to stderr.
func WithLogger(l *zap.Logger) Option { return func(m *Model) { m.logger = l } }

// WithRefresh sets how often the screen polls the runner.
func WithRefresh(d time.Duration) Option { return func(m *Model) { m.refresh = d } }

// Model is the Bubble Tea model for one drill run.
type Model struct {
	run     *session.Runner
	logger  *zap.Logger
	refresh time.Duration

	input   components.AnswerInput
	choices components.ChoiceList

	state     session.State
	problemID string

	width    int
	height   int
	err      error
	quitting bool
}

var _ tea.Model = (*Model)(nil)

// New creates a drill screen for run. The runner is started by Init.
func New(run *session.Runner, opts ...Option) *Model {
	m := &Model{
		run:     run,
		logger:  zap.NewNop(),
		refresh: defaultRefresh,
		input:   components.NewAnswerInput("Type your answer", inputCharLimit),
		state:   run.State(),
	}
	for _, o := range opts {
		o(m)
	}
	if m.refresh <= 0 {
		m.refresh = defaultRefresh
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	run := m.run
	return tea.Batch(
		m.input.Init(),
		func() tea.Msg { return startedMsg{err: run.Start(context.Background())} },
		m.tick(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case startedMsg:
		if msg.err != nil && !errors.Is(msg.err, session.ErrClosed) {
			m.logger.Error("starting session failed", zap.Error(msg.err))
			m.err = msg.err
		}
		m.sync()
		return m, nil

	case refreshMsg:
		if m.quitting {
			return m, nil
		}
		m.sync()
		return m, m.tick()

	case advancedMsg:
		if msg.err != nil && !errors.Is(msg.err, session.ErrClosed) && !errors.Is(msg.err, session.ErrNotAccepting) {
			m.logger.Warn("advancing failed", zap.Error(msg.err))
		}
		m.sync()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "esc":
		return m, m.quit()
	}

	if m.err != nil || m.state.Status == session.StatusFinished {
		if key == "enter" || key == "q" {
			return m, m.quit()
		}
		return m, nil
	}
	if m.state.Status != session.StatusIdle || m.state.Active.Problem == nil {
		return m, nil
	}

	switch key {
	case "enter":
		if m.state.Active.Status == session.SubCorrect {
			return m, m.next()
		}
		m.submit()
		return m, nil

	case "ctrl+s":
		if err := m.run.ShowSolution(); err != nil {
			m.logger.Debug("show solution rejected", zap.Error(err))
		}
		m.sync()
		return m, nil

	case "ctrl+n":
		return m, m.next()

	case "up", "down":
		if len(m.choices.Options) > 0 && m.editable() {
			if key == "up" {
				m.choices.Move(-1)
			} else {
				m.choices.Move(1)
			}
			if opt, ok := m.choices.Current(); ok {
				m.input.SetValue(opt)
				m.pushInput()
			}
		}
		return m, nil
	}

	if m.state.Active.AskFeedback {
		for _, o := range feedbackOptions {
			if key == o.Key {
				if err := m.run.SubmitFeedback(o.Kind, o.Sentiment); err != nil {
					m.logger.Debug("feedback rejected", zap.Error(err))
				}
				m.sync()
				return m, nil
			}
		}
	}

	if !m.editable() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.pushInput()
	return m, cmd
}

// editable mirrors the runner's rule: input may change before any answer
// and after a mistake.
func (m *Model) editable() bool {
	return m.state.Status == session.StatusIdle && m.state.Active.Problem != nil &&
		(m.state.Active.Status == session.SubIdle || m.state.Active.Status == session.SubWrong)
}

// pushInput hands the local text to the runner, reverting it if the
// runner refuses.
func (m *Model) pushInput() {
	if m.input.Value() == m.state.Active.Input {
		return
	}
	if err := m.run.SetInput(m.input.Value()); err != nil {
		m.input.SetValue(m.state.Active.Input)
		return
	}
	m.state.Active.Input = m.input.Value()
}

func (m *Model) submit() {
	m.pushInput()
	v, err := m.run.Submit()
	if err != nil {
		m.logger.Debug("submit rejected", zap.Error(err))
		return
	}
	if v.Correct {
		m.input.SetMark(components.MarkCorrect)
	} else {
		m.input.SetMark(components.MarkWrong)
	}
	m.sync()
}

func (m *Model) next() tea.Cmd {
	run := m.run
	return func() tea.Msg { return advancedMsg{err: run.Next(context.Background())} }
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.run.Close()
	return tea.Quit
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// sync copies the runner state and resets the widgets when a new problem
// arrives.
func (m *Model) sync() {
	m.state = m.run.State()
	p := m.state.Active.Problem

	id := ""
	if p != nil {
		id = p.ID
	}
	if id != m.problemID {
		m.problemID = id
		m.input.Reset()
		m.choices = components.ChoiceList{}
		if p != nil && p.Kind == problemgen.KindChoice {
			m.choices = components.NewChoiceList(p.Choices)
		}
		return
	}

	switch {
	case m.state.Active.Status == session.SubCorrect:
		m.input.SetMark(components.MarkCorrect)
	case m.state.Active.Expired && m.input.Mark() == components.MarkNone:
		m.input.SetMark(components.MarkWrong)
	}
}

// KeyHints returns the footer hints for the current state.
func (m *Model) KeyHints() []layout.KeyHint {
	if m.err != nil || m.state.Status == session.StatusFinished {
		return []layout.KeyHint{{Key: "Enter", Description: "Exit"}}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Submit"}}
	if len(m.choices.Options) > 0 {
		hints = append(hints, layout.KeyHint{Key: "↑↓", Description: "Choose"})
	}
	hints = append(hints, layout.KeyHint{Key: "Ctrl+S", Description: "Solution"})
	if m.state.Active.Status == session.SubWrong || m.state.Active.UsedSolution {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+N", Description: "Next"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

// Run drives the drill screen until the learner quits. The runner is
// closed and its background work drained before Run returns.
func Run(run *session.Runner, opts ...Option) error {
	p := tea.NewProgram(New(run, opts...))
	_, err := p.Run()
	run.Close()
	run.Wait()
	if err != nil {
		return fmt.Errorf("running drill screen: %w", err)
	}
	return nil
}
