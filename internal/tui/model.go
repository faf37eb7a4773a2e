// Package tui implements the interactive setup wizard as a bubbletea
// program. One screen per wizard step; navigation is delegated to the
// wizard controller so tier gating lives in exactly one place.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lynxprompt/lynxprompt/internal/detect"
	"github.com/lynxprompt/lynxprompt/internal/synth"
	"github.com/lynxprompt/lynxprompt/internal/wizard"
)

// Outcome is how the wizard session ended.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeCancelled
)

// answer holds one step's collected input. Kept per step id so moving
// back and forth never loses work.
type answer struct {
	text      string
	choices   []string
	confirmed bool
	answered  bool
}

// Model holds the wizard TUI state.
type Model struct {
	Ctrl      *wizard.Controller
	Tier      wizard.Tier
	Detection *detect.Project

	Answers map[string]answer
	Input   textinput.Model
	Cursor  int
	Checked map[int]bool

	Outcome    Outcome
	Done       bool
	WindowSize tea.WindowSizeMsg

	// Set by finish() on the terminal step.
	Result    wizard.Config
	ResultErr error
}

// NewModel builds the initial wizard state, pre-filled from detection
// results when available.
func NewModel(tier wizard.Tier, detection *detect.Project) Model {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 48

	m := Model{
		Ctrl:      wizard.NewController(tier),
		Tier:      tier,
		Detection: detection,
		Answers:   make(map[string]answer),
		Input:     ti,
		Checked:   make(map[int]bool),
	}
	m.prefill()
	m.enterStep()
	return m
}

func (m *Model) prefill() {
	if m.Detection != nil {
		if m.Detection.Name != "" {
			m.Answers[wizard.StepName] = answer{text: m.Detection.Name, answered: true}
		}
		if m.Detection.Description != "" {
			m.Answers[wizard.StepDescription] = answer{text: m.Detection.Description, answered: true}
		}
		if len(m.Detection.Stack) > 0 {
			m.Answers[wizard.StepStack] = answer{text: strings.Join(m.Detection.Stack, ", "), answered: true}
		}
		if !m.Detection.Commands.Empty() {
			m.Answers[wizard.StepCommands] = answer{confirmed: true, answered: true}
		}
	}
	m.Answers[wizard.StepPlatforms] = answer{choices: append([]string(nil), wizard.DefaultPlatforms...), answered: true}
}

// enterStep loads the saved answer for the current step into the live
// input widgets.
func (m *Model) enterStep() {
	step := m.Ctrl.Current()
	saved := m.Answers[step.ID]
	m.Cursor = 0
	m.Checked = make(map[int]bool)

	switch step.Kind {
	case wizard.KindText:
		m.Input.SetValue(saved.text)
		m.Input.Placeholder = ""
		m.Input.Focus()
		m.Input.CursorEnd()
	case wizard.KindSelect:
		for i, opt := range stepOptions(step) {
			if saved.answered && len(saved.choices) > 0 && saved.choices[0] == opt {
				m.Cursor = i
			}
		}
	case wizard.KindMultiSelect:
		opts := stepOptions(step)
		for _, choice := range saved.choices {
			for i, opt := range opts {
				if opt == choice {
					m.Checked[i] = true
				}
			}
		}
	case wizard.KindConfirm:
		if saved.answered && !saved.confirmed {
			m.Cursor = 1
		}
	}
}

// stepOptions resolves a step's option list. The platforms step has no
// static options; it offers whatever the synthesizer supports.
func stepOptions(step wizard.Step) []string {
	if step.ID == wizard.StepPlatforms {
		return synth.PlatformIDs()
	}
	return step.Options
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}
