package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lynxprompt/lynxprompt/internal/wizard"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("205"))

	unselectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(4).
				Foreground(lipgloss.Color("240"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	summaryKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)
)

func (m Model) View() string {
	if m.Done {
		return ""
	}

	step := m.Ctrl.Current()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf(" %s ", step.Title)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(m.progress()))
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render(step.Prompt))
	b.WriteString("\n\n")

	switch step.Kind {
	case wizard.KindText:
		b.WriteString("  " + m.Input.View() + "\n")
	case wizard.KindSelect:
		m.renderOptions(&b, stepOptions(step), false)
	case wizard.KindMultiSelect:
		m.renderOptions(&b, stepOptions(step), true)
	case wizard.KindConfirm:
		m.renderOptions(&b, []string{"yes", "no"}, false)
	case wizard.KindSummary:
		m.renderSummary(&b)
	}

	if locked := m.Ctrl.Locked(); len(locked) > 0 && step.Kind == wizard.KindSummary {
		names := make([]string, len(locked))
		for i, s := range locked {
			names[i] = s.Title
		}
		b.WriteString("\n")
		b.WriteString(lockedStyle.Render(fmt.Sprintf("  🔒 Locked on your plan: %s. Upgrade to unlock.", strings.Join(names, ", "))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.footer(step)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderOptions(b *strings.Builder, opts []string, multi bool) {
	for i, opt := range opts {
		marker := ""
		if multi {
			if m.Checked[i] {
				marker = "[x] "
			} else {
				marker = "[ ] "
			}
		}
		if i == m.Cursor {
			b.WriteString(selectedItemStyle.Render("> "+marker+opt) + "\n")
		} else {
			b.WriteString(unselectedItemStyle.Render(marker+opt) + "\n")
		}
	}
}

func (m Model) renderSummary(b *strings.Builder) {
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(b, "  %s %s\n", summaryKeyStyle.Render(label+":"), value)
	}
	row("Name", m.Answers[wizard.StepName].text)
	row("Description", m.Answers[wizard.StepDescription].text)
	row("Platforms", strings.Join(m.Answers[wizard.StepPlatforms].choices, ", "))
	row("Stack", m.Answers[wizard.StepStack].text)
	if a := m.Answers[wizard.StepCommands]; a.answered && a.confirmed {
		row("Commands", "detected commands included")
	}
	row("Naming", first(m.Answers[wizard.StepNaming].choices))
	row("Errors", first(m.Answers[wizard.StepErrors].choices))
	row("Boundaries", first(m.Answers[wizard.StepBoundaries].choices))
	row("Test levels", strings.Join(m.Answers[wizard.StepTestLevels].choices, ", "))
	row("Coverage", m.Answers[wizard.StepCoverage].text)
	row("Rules", strings.Join(m.Answers[wizard.StepRules].choices, ", "))
	row("Persona", first(m.Answers[wizard.StepPersona].choices))
	row("Notes", m.Answers[wizard.StepNotes].text)
}

// progress counts position among the steps this tier can actually
// visit, so a basic-tier user sees 1/8 rather than 1/14.
func (m Model) progress() string {
	steps := m.Ctrl.Steps()
	total, current := 0, 0
	for i := range steps {
		if !m.Ctrl.Accessible(i) {
			continue
		}
		total++
		if i <= m.Ctrl.Index() {
			current++
		}
	}
	return fmt.Sprintf("step %d/%d", current, total)
}

func (m Model) footer(step wizard.Step) string {
	switch step.Kind {
	case wizard.KindText:
		return "  enter continue · shift+tab back · esc cancel"
	case wizard.KindMultiSelect:
		return "  space toggle · enter continue · shift+tab back · esc cancel"
	case wizard.KindSummary:
		return "  enter generate · shift+tab back · esc cancel"
	default:
		return "  ↑/↓ move · enter continue · shift+tab back · esc cancel"
	}
}
