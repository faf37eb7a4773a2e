package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lynxprompt/lynxprompt/internal/detect"
	"github.com/lynxprompt/lynxprompt/internal/wizard"
)

// Update handles events. Esc anywhere cancels the session without
// generating anything; the caller inspects Outcome afterwards.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Outcome = OutcomeCancelled
			m.Done = true
			return m, tea.Quit
		}

		step := m.Ctrl.Current()
		switch step.Kind {
		case wizard.KindText:
			switch msg.String() {
			case "enter":
				m.commitText(step)
				return m.advance()
			case "shift+tab":
				return m.retreat()
			}
			m.Input, cmd = m.Input.Update(msg)
			return m, cmd

		case wizard.KindSelect:
			opts := stepOptions(step)
			switch msg.String() {
			case "up", "k":
				if m.Cursor > 0 {
					m.Cursor--
				}
			case "down", "j":
				if m.Cursor < len(opts)-1 {
					m.Cursor++
				}
			case "enter":
				m.Answers[step.ID] = answer{choices: []string{opts[m.Cursor]}, answered: true}
				return m.advance()
			case "shift+tab", "left", "h":
				return m.retreat()
			}

		case wizard.KindMultiSelect:
			opts := stepOptions(step)
			switch msg.String() {
			case "up", "k":
				if m.Cursor > 0 {
					m.Cursor--
				}
			case "down", "j":
				if m.Cursor < len(opts)-1 {
					m.Cursor++
				}
			case " ", "x":
				m.Checked[m.Cursor] = !m.Checked[m.Cursor]
			case "enter":
				var choices []string
				for i, opt := range opts {
					if m.Checked[i] {
						choices = append(choices, opt)
					}
				}
				m.Answers[step.ID] = answer{choices: choices, answered: true}
				return m.advance()
			case "shift+tab", "left", "h":
				return m.retreat()
			}

		case wizard.KindConfirm:
			switch msg.String() {
			case "up", "down", "k", "j", "tab":
				m.Cursor = 1 - m.Cursor
			case "y", "Y":
				m.Answers[step.ID] = answer{confirmed: true, answered: true}
				return m.advance()
			case "n", "N":
				m.Answers[step.ID] = answer{confirmed: false, answered: true}
				return m.advance()
			case "enter":
				m.Answers[step.ID] = answer{confirmed: m.Cursor == 0, answered: true}
				return m.advance()
			case "shift+tab", "left", "h":
				return m.retreat()
			}

		case wizard.KindSummary:
			switch msg.String() {
			case "enter":
				return m.finish()
			case "shift+tab", "left", "h":
				return m.retreat()
			}
		}
	}

	return m, cmd
}

func (m *Model) commitText(step wizard.Step) {
	m.Answers[step.ID] = answer{text: strings.TrimSpace(m.Input.Value()), answered: true}
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	m.Ctrl.Next()
	m.enterStep()
	return m, nil
}

func (m Model) retreat() (tea.Model, tea.Cmd) {
	m.Ctrl.Back()
	m.enterStep()
	return m, nil
}

// finish assembles the answers into a finalized config and quits.
func (m Model) finish() (tea.Model, tea.Cmd) {
	m.Result, m.ResultErr = m.buildConfig()
	m.Outcome = OutcomeCompleted
	m.Done = true
	return m, tea.Quit
}

func (m Model) buildConfig() (wizard.Config, error) {
	b := wizard.NewBuilder().
		SetName(m.Answers[wizard.StepName].text).
		SetDescription(m.Answers[wizard.StepDescription].text).
		SetPlatforms(m.Answers[wizard.StepPlatforms].choices).
		SetStack(splitList(m.Answers[wizard.StepStack].text)).
		SetPersona(first(m.Answers[wizard.StepPersona].choices)).
		SetExtraNotes(m.Answers[wizard.StepNotes].text).
		SetTestLevels(m.Answers[wizard.StepTestLevels].choices).
		SetAIBehaviorRules(m.Answers[wizard.StepRules].choices)

	if m.Detection != nil {
		b.SetCommands(commandsIf(m.Answers[wizard.StepCommands], m.Detection.Commands))
		if len(m.Detection.Databases) > 0 {
			// Detected datastores carry through without a dedicated step.
			b = wizard.FromConfig(withDatabases(b.Preview(), m.Detection.Databases))
		}
	}
	if v := first(m.Answers[wizard.StepNaming].choices); v != "" {
		b.SetNamingConvention(v)
	}
	if v := first(m.Answers[wizard.StepErrors].choices); v != "" {
		b.SetErrorHandling(v)
	}
	if v := first(m.Answers[wizard.StepBoundaries].choices); v != "" {
		b.SetBoundaries(wizard.Boundaries{Preset: v})
	}
	if raw := strings.TrimSpace(m.Answers[wizard.StepCoverage].text); raw != "" {
		if pct, err := strconv.Atoi(raw); err == nil {
			b.SetCoverageTarget(pct)
		}
	}

	return b.Finalize(m.Tier)
}

func commandsIf(a answer, cmds detect.Commands) detect.Commands {
	if a.answered && a.confirmed {
		return cmds
	}
	return detect.Commands{}
}

func withDatabases(cfg wizard.Config, dbs []string) wizard.Config {
	cfg.Databases = append([]string(nil), dbs...)
	return cfg
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func first(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[0]
}
