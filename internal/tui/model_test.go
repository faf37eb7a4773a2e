package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lynxprompt/lynxprompt/internal/detect"
	"github.com/lynxprompt/lynxprompt/internal/wizard"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestPrefillFromDetection(t *testing.T) {
	p := &detect.Project{
		Name:        "svc",
		Description: "a service",
		Stack:       []string{"Go", "chi"},
		Commands:    detect.Commands{Build: "go build ./..."},
	}
	m := NewModel(wizard.TierBasic, p)

	if m.Answers[wizard.StepName].text != "svc" {
		t.Errorf("name prefill = %q", m.Answers[wizard.StepName].text)
	}
	if m.Answers[wizard.StepStack].text != "Go, chi" {
		t.Errorf("stack prefill = %q", m.Answers[wizard.StepStack].text)
	}
	if a := m.Answers[wizard.StepCommands]; !a.answered || !a.confirmed {
		t.Errorf("commands prefill = %+v", a)
	}
	// The name step's text input starts with the prefilled value.
	if m.Input.Value() != "svc" {
		t.Errorf("input value = %q", m.Input.Value())
	}
}

func TestEscCancels(t *testing.T) {
	m := NewModel(wizard.TierBasic, nil)
	updated, _ := m.Update(key("esc"))
	final := updated.(Model)
	if !final.Done || final.Outcome != OutcomeCancelled {
		t.Errorf("esc: Done=%v Outcome=%v", final.Done, final.Outcome)
	}
}

func TestWalkThroughToGenerate(t *testing.T) {
	p := &detect.Project{Name: "svc", Stack: []string{"Go"}}
	var model tea.Model = NewModel(wizard.TierBasic, p)

	// Press enter until the terminal step; basic tier has a handful of
	// steps so a generous bound is safe.
	for i := 0; i < 20; i++ {
		m := model.(Model)
		if m.Ctrl.AtEnd() {
			break
		}
		model, _ = model.Update(key("enter"))
	}
	m := model.(Model)
	if !m.Ctrl.AtEnd() {
		t.Fatal("never reached the terminal step")
	}

	model, _ = model.Update(key("enter"))
	m = model.(Model)
	if !m.Done || m.Outcome != OutcomeCompleted {
		t.Fatalf("generate: Done=%v Outcome=%v", m.Done, m.Outcome)
	}
	if m.ResultErr != nil {
		t.Fatalf("ResultErr = %v", m.ResultErr)
	}
	if m.Result.Name != "svc" {
		t.Errorf("Result.Name = %q", m.Result.Name)
	}
	if len(m.Result.Platforms) == 0 {
		t.Error("no platforms in result")
	}
}

func TestLockedStepsNeverShownToBasicTier(t *testing.T) {
	var model tea.Model = NewModel(wizard.TierBasic, nil)
	visited := make(map[string]bool)

	for i := 0; i < 20; i++ {
		m := model.(Model)
		visited[m.Ctrl.Current().ID] = true
		if m.Ctrl.AtEnd() {
			break
		}
		model, _ = model.Update(key("enter"))
	}

	for _, locked := range []string{wizard.StepCommands, wizard.StepTestLevels, wizard.StepRules} {
		if visited[locked] {
			t.Errorf("basic tier visited locked step %q", locked)
		}
	}
	if !visited[wizard.StepGenerate] {
		t.Error("terminal step never reached")
	}
}

func TestSummaryViewListsAnswers(t *testing.T) {
	m := NewModel(wizard.TierBasic, &detect.Project{Name: "svc"})
	m.Ctrl.Goto(len(m.Ctrl.Steps()) - 1)
	m.enterStep()

	view := m.View()
	if !strings.Contains(view, "svc") {
		t.Errorf("summary view missing project name:\n%s", view)
	}
}
