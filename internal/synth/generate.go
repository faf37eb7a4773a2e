// Package synth renders wizard answers into per-platform configuration
// documents. Rendering is deterministic: identical inputs produce
// byte-identical output, which the marketplace relies on for content-hash
// duplicate detection.
package synth

import (
	"fmt"
	"strings"

	"github.com/lynxprompt/lynxprompt/internal/profile"
	"github.com/lynxprompt/lynxprompt/internal/variables"
	"github.com/lynxprompt/lynxprompt/internal/wizard"
)

// GeneratedFile is one rendered output document. Produced fresh on every
// call and never mutated.
type GeneratedFile struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"`
	Platform string `json:"platform,omitempty"`
}

// boundaryText maps each preset to its rendered guidance.
var boundaryText = map[string][]string{
	"standard": {
		"Ask before running destructive commands (deletes, force pushes, migrations).",
		"Stay within this repository; do not modify unrelated projects.",
	},
	"conservative": {
		"Propose changes as diffs and wait for approval before applying them.",
		"Never run commands with side effects outside the working tree.",
		"Ask before modifying more than a handful of files at once.",
	},
	"permissive": {
		"Apply changes directly; explanations can come after the work.",
		"Running builds, tests, and local tooling needs no confirmation.",
	},
}

// skillPhrases selects the verbosity wording for the AI instructions
// section. Unknown or empty skill levels fall back to intermediate.
var skillPhrases = map[string]string{
	"novice":       "Explain your reasoning as you go and spell out non-obvious decisions; the developer is still learning this territory.",
	"intermediate": "Keep explanations brief and focus on what changed and why it matters.",
	"senior":       "Be terse. Skip explanations of standard patterns and state only the non-obvious.",
}

// Generate renders one document per requested platform, in the order the
// platforms were requested. Unknown platform ids are skipped and reported
// in the returned warnings, never fatal. Each platform renders
// independently; no state leaks between them.
func Generate(cfg wizard.Config, prof profile.Profile, saved map[string]string) ([]GeneratedFile, []string, error) {
	if cfg.Name == "" {
		return nil, nil, fmt.Errorf("configuration has no project name")
	}

	var files []GeneratedFile
	var warnings []string
	for _, id := range cfg.Platforms {
		platform, ok := ParsePlatform(id)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown platform %q skipped", id))
			continue
		}
		files = append(files, GeneratedFile{
			FileName: platform.FileName(),
			Content:  render(platform, cfg, prof, saved),
			Platform: platform.ID(),
		})
	}
	return files, warnings, nil
}

func render(p Platform, cfg wizard.Config, prof profile.Profile, saved map[string]string) string {
	var b strings.Builder

	writeHeader(&b, p, cfg)
	writeStack(&b, cfg)
	writeCommands(&b, cfg)
	writeConventions(&b, cfg)
	writeBoundaries(&b, cfg, saved)
	writeTesting(&b, cfg)
	writeRules(&b, cfg)
	writeStaticFiles(&b, cfg)
	writeInstructions(&b, cfg, prof)
	writeNotes(&b, cfg, saved)

	return b.String()
}

func writeHeader(b *strings.Builder, p Platform, cfg wizard.Config) {
	switch p {
	case PlatformCursor:
		// Cursor project rules use MDC front matter.
		b.WriteString("---\n")
		if cfg.Description != "" {
			fmt.Fprintf(b, "description: %s\n", cfg.Description)
		} else {
			fmt.Fprintf(b, "description: Project rules for %s\n", cfg.Name)
		}
		b.WriteString("alwaysApply: true\n")
		b.WriteString("---\n\n")
		fmt.Fprintf(b, "# %s\n", cfg.Name)
	case PlatformClaude:
		fmt.Fprintf(b, "# %s\n\n", cfg.Name)
		b.WriteString("This file provides guidance to Claude Code when working in this repository.\n")
	case PlatformCopilot:
		fmt.Fprintf(b, "# Copilot instructions for %s\n", cfg.Name)
	default:
		fmt.Fprintf(b, "# %s\n", cfg.Name)
	}
	if cfg.Description != "" && p != PlatformCursor {
		fmt.Fprintf(b, "\n%s\n", cfg.Description)
	}
}

// writeStack emits the tech stack and databases verbatim from structured
// data. No variable substitution here.
func writeStack(b *strings.Builder, cfg wizard.Config) {
	if len(cfg.Stack) == 0 && len(cfg.Databases) == 0 {
		return
	}
	b.WriteString("\n## Tech Stack\n\n")
	for _, item := range cfg.Stack {
		fmt.Fprintf(b, "- %s\n", item)
	}
	if len(cfg.Databases) > 0 {
		b.WriteString("\nDatastores:\n")
		for _, db := range cfg.Databases {
			fmt.Fprintf(b, "- %s\n", db)
		}
	}
}

func writeCommands(b *strings.Builder, cfg wizard.Config) {
	if cfg.Commands.Empty() {
		return
	}
	b.WriteString("\n## Commands\n\n```sh\n")
	for _, entry := range []struct{ label, cmd string }{
		{"build", cfg.Commands.Build},
		{"test", cfg.Commands.Test},
		{"lint", cfg.Commands.Lint},
		{"dev", cfg.Commands.Dev},
		{"format", cfg.Commands.Format},
	} {
		if entry.cmd != "" {
			fmt.Fprintf(b, "%-8s %s\n", entry.label+":", entry.cmd)
		}
	}
	b.WriteString("```\n")
}

func writeConventions(b *strings.Builder, cfg wizard.Config) {
	naming := meaningful(cfg.NamingConvention)
	errs := meaningful(cfg.ErrorHandling)
	if naming == "" && errs == "" {
		return
	}
	b.WriteString("\n## Conventions\n\n")
	if naming != "" {
		fmt.Fprintf(b, "- Identifiers use %s.\n", naming)
	}
	if errs != "" {
		fmt.Fprintf(b, "- Error handling: %s.\n", errs)
	}
}

// meaningful filters the "language default" wizard answer, which means
// "don't write a convention down".
func meaningful(v string) string {
	if v == "language default" {
		return ""
	}
	return v
}

func writeBoundaries(b *strings.Builder, cfg wizard.Config, saved map[string]string) {
	preset := cfg.Boundaries.Preset
	lines := boundaryText[preset]
	if len(lines) == 0 && len(cfg.Boundaries.Never) == 0 && len(cfg.Boundaries.AskFirst) == 0 {
		return
	}
	b.WriteString("\n## Boundaries\n\n")
	for _, line := range lines {
		fmt.Fprintf(b, "- %s\n", line)
	}
	// Custom boundary text is author-written free text: resolve
	// placeholders in it.
	for _, item := range cfg.Boundaries.Never {
		fmt.Fprintf(b, "- Never: %s\n", variables.Resolve(item, saved, nil))
	}
	for _, item := range cfg.Boundaries.AskFirst {
		fmt.Fprintf(b, "- Ask first: %s\n", variables.Resolve(item, saved, nil))
	}
}

func writeTesting(b *strings.Builder, cfg wizard.Config) {
	if len(cfg.TestLevels) == 0 {
		return
	}
	b.WriteString("\n## Testing Strategy\n\n")
	fmt.Fprintf(b, "- Test levels: %s\n", strings.Join(cfg.TestLevels, ", "))
	if len(cfg.TestFrameworks) > 0 {
		fmt.Fprintf(b, "- Frameworks: %s\n", strings.Join(cfg.TestFrameworks, ", "))
	}
	if cfg.CoverageTarget > 0 {
		fmt.Fprintf(b, "- Coverage target: %d%%\n", cfg.CoverageTarget)
	}
}

func writeRules(b *strings.Builder, cfg wizard.Config) {
	if len(cfg.AIBehaviorRules) == 0 {
		return
	}
	b.WriteString("\n## Behavior Rules\n\n")
	for _, rule := range cfg.AIBehaviorRules {
		fmt.Fprintf(b, "- %s\n", rule)
	}
}

func writeStaticFiles(b *strings.Builder, cfg wizard.Config) {
	if len(cfg.StaticFiles) == 0 {
		return
	}
	b.WriteString("\n## Reference Files\n\nRead these before making changes:\n\n")
	for _, f := range cfg.StaticFiles {
		fmt.Fprintf(b, "- %s\n", f)
	}
}

// writeInstructions appends the fixed AI instructions section near the
// end of every file. The wizard's persona answer wins over the profile
// default.
func writeInstructions(b *strings.Builder, cfg wizard.Config, prof profile.Profile) {
	b.WriteString("\n## AI Instructions\n\n")
	persona := cfg.Persona
	if persona == "" {
		persona = prof.Persona
	}
	if persona != "" {
		fmt.Fprintf(b, "You are pairing with a %s developer.\n", persona)
	}
	phrase, ok := skillPhrases[prof.SkillLevel]
	if !ok {
		phrase = skillPhrases["intermediate"]
	}
	b.WriteString(phrase + "\n")
	if prof.DisplayName != "" {
		fmt.Fprintf(b, "\nMaintained by %s.\n", prof.DisplayName)
	}
}

func writeNotes(b *strings.Builder, cfg wizard.Config, saved map[string]string) {
	if strings.TrimSpace(cfg.ExtraNotes) == "" {
		return
	}
	b.WriteString("\n## Notes\n\n")
	b.WriteString(variables.Resolve(cfg.ExtraNotes, saved, nil))
	if !strings.HasSuffix(cfg.ExtraNotes, "\n") {
		b.WriteString("\n")
	}
}
