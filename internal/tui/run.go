package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lynxprompt/lynxprompt/internal/detect"
	"github.com/lynxprompt/lynxprompt/internal/wizard"
)

// Run drives the wizard to completion. A cancelled session returns
// OutcomeCancelled and a zero config; it is not an error.
func Run(tier wizard.Tier, detection *detect.Project) (wizard.Config, Outcome, error) {
	p := tea.NewProgram(NewModel(tier, detection))
	final, err := p.Run()
	if err != nil {
		return wizard.Config{}, OutcomeCancelled, fmt.Errorf("running wizard: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return wizard.Config{}, OutcomeCancelled, fmt.Errorf("unexpected wizard model type %T", final)
	}
	if m.Outcome == OutcomeCancelled {
		return wizard.Config{}, OutcomeCancelled, nil
	}
	if m.ResultErr != nil {
		return wizard.Config{}, OutcomeCompleted, m.ResultErr
	}
	return m.Result, OutcomeCompleted, nil
}
