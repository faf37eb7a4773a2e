package synth

import (
	"strings"
	"testing"

	"github.com/lynxprompt/lynxprompt/internal/detect"
	"github.com/lynxprompt/lynxprompt/internal/profile"
	"github.com/lynxprompt/lynxprompt/internal/wizard"
)

func fullConfig() wizard.Config {
	return wizard.Config{
		Name:        "payments-api",
		Description: "Payment processing service",
		Platforms:   []string{"agents", "claude"},
		Stack:       []string{"Go 1.22", "chi"},
		Databases:   []string{"PostgreSQL"},
		Commands: detect.Commands{
			Build: "go build ./...",
			Test:  "go test ./...",
		},
		NamingConvention: "snake_case",
		ErrorHandling:    "explicit error values",
		Boundaries:       wizard.Boundaries{Preset: "standard", Never: []string{"deploy to [[ENV|prod]]"}},
		TestLevels:       []string{"unit", "integration"},
		CoverageTarget:   80,
		AIBehaviorRules:  []string{"Ask before adding new dependencies"},
		Persona:          "backend",
		ExtraNotes:       "Ping [[ONCALL]] before schema changes.",
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := fullConfig()
	prof := profile.Profile{DisplayName: "Ada", Persona: "fullstack", SkillLevel: "senior"}
	saved := map[string]string{"ONCALL": "@payments-oncall"}

	a, _, err := Generate(cfg, prof, saved)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, _, err := Generate(cfg, prof, saved)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("file counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("file %d differs between identical runs", i)
		}
	}
}

func TestGeneratePlatformOrderAndNames(t *testing.T) {
	cfg := fullConfig()
	cfg.Platforms = []string{"cursor", "agents"}

	files, _, err := Generate(cfg, profile.Profile{}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0].FileName != ".cursor/rules/project.mdc" {
		t.Errorf("files[0] = %q, want cursor rules path", files[0].FileName)
	}
	if files[1].FileName != "AGENTS.md" {
		t.Errorf("files[1] = %q, want AGENTS.md", files[1].FileName)
	}
	if !strings.HasPrefix(files[0].Content, "---\n") {
		t.Error("cursor output missing MDC front matter")
	}
}

func TestGenerateUnknownPlatformSkipped(t *testing.T) {
	cfg := fullConfig()
	cfg.Platforms = []string{"agents", "vscode-psychic", "claude"}

	files, warnings, err := Generate(cfg, profile.Profile{}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2", len(files))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "vscode-psychic") {
		t.Errorf("warnings = %v, want one naming the unknown platform", warnings)
	}
}

func TestGenerateEmptyName(t *testing.T) {
	if _, _, err := Generate(wizard.Config{Platforms: []string{"agents"}}, profile.Profile{}, nil); err == nil {
		t.Error("Generate accepted a config with no name")
	}
}

func TestGenerateSectionsOmittedWhenEmpty(t *testing.T) {
	cfg := wizard.Config{
		Name:       "tiny",
		Platforms:  []string{"agents"},
		Boundaries: wizard.Boundaries{Preset: "standard"},
	}
	files, _, err := Generate(cfg, profile.Profile{}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	content := files[0].Content
	for _, absent := range []string{"## Tech Stack", "## Commands", "## Testing Strategy", "## Behavior Rules", "## Notes"} {
		if strings.Contains(content, absent) {
			t.Errorf("empty config rendered section %q", absent)
		}
	}
	if !strings.Contains(content, "## Boundaries") {
		t.Error("boundaries preset not rendered")
	}
	if !strings.Contains(content, "## AI Instructions") {
		t.Error("AI instructions section missing")
	}
}

func TestGenerateVariableResolution(t *testing.T) {
	cfg := fullConfig()
	files, _, err := Generate(cfg, profile.Profile{}, map[string]string{"ONCALL": "@oncall"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	content := files[0].Content
	if !strings.Contains(content, "Ping @oncall before schema changes.") {
		t.Error("saved variable not resolved in notes")
	}
	// No saved ENV: the literal default applies in boundary text.
	if !strings.Contains(content, "Never: deploy to prod") {
		t.Errorf("literal default not applied in boundaries:\n%s", content)
	}
	// Stack entries are data, not templates.
	cfg2 := fullConfig()
	cfg2.Stack = []string{"[[NOT_A_TEMPLATE]]"}
	files2, _, _ := Generate(cfg2, profile.Profile{}, map[string]string{"NOT_A_TEMPLATE": "x"})
	if !strings.Contains(files2[0].Content, "[[NOT_A_TEMPLATE]]") {
		t.Error("stack entry was template-resolved, want verbatim")
	}
}

func TestGeneratePersonaPrecedence(t *testing.T) {
	cfg := fullConfig()
	cfg.Persona = "devops"
	prof := profile.Profile{Persona: "frontend", SkillLevel: "novice"}

	files, _, err := Generate(cfg, prof, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(files[0].Content, "pairing with a devops developer") {
		t.Error("config persona did not win over profile persona")
	}

	cfg.Persona = ""
	files, _, _ = Generate(cfg, prof, nil)
	if !strings.Contains(files[0].Content, "pairing with a frontend developer") {
		t.Error("profile persona not used as fallback")
	}
}

func TestParsePlatform(t *testing.T) {
	for _, id := range PlatformIDs() {
		p, ok := ParsePlatform(id)
		if !ok {
			t.Errorf("ParsePlatform(%q) failed", id)
		}
		if p.ID() != id {
			t.Errorf("round trip %q -> %q", id, p.ID())
		}
		if p.FileName() == "" || p.Label() == "" {
			t.Errorf("platform %q has empty metadata", id)
		}
	}
	if _, ok := ParsePlatform("emacs"); ok {
		t.Error("ParsePlatform accepted an unknown id")
	}
}
