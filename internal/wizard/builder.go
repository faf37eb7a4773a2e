package wizard

import (
	"fmt"
	"strings"

	"github.com/lynxprompt/lynxprompt/internal/detect"
)

// Boundaries is the caution preset plus optional explicit override lists.
type Boundaries struct {
	Preset   string   `json:"preset"`
	Never    []string `json:"never,omitempty"`
	AskFirst []string `json:"ask_first,omitempty"`
}

// Config is the finalized answer set handed to the synthesizer. It is
// immutable once built; generation never mutates it.
type Config struct {
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Platforms        []string        `json:"platforms"`
	Stack            []string        `json:"stack,omitempty"`
	Databases        []string        `json:"databases,omitempty"`
	Commands         detect.Commands `json:"commands"`
	NamingConvention string          `json:"naming_convention,omitempty"`
	ErrorHandling    string          `json:"error_handling,omitempty"`
	Boundaries       Boundaries      `json:"boundaries"`
	TestLevels       []string        `json:"test_levels,omitempty"`
	TestFrameworks   []string        `json:"test_frameworks,omitempty"`
	CoverageTarget   int             `json:"coverage_target,omitempty"`
	StaticFiles      []string        `json:"static_files,omitempty"`
	AIBehaviorRules  []string        `json:"ai_behavior_rules,omitempty"`
	Persona          string          `json:"persona,omitempty"`
	ExtraNotes       string          `json:"extra_notes,omitempty"`
}

// Defaults used when a field was never answered.
const (
	DefaultName       = "my-project"
	DefaultBoundaries = "standard"
)

var DefaultPlatforms = []string{"agents"}

// Builder accumulates answers across wizard steps into a typed record.
// Validation happens once, at Finalize, not per step.
type Builder struct {
	cfg Config
}

func NewBuilder() *Builder {
	return &Builder{}
}

// FromConfig wraps an existing answer set so it can be re-finalized,
// typically to re-apply tier gating to a config supplied by an API
// client.
func FromConfig(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// FromDetection pre-fills a builder from project detection results.
func FromDetection(p *detect.Project) *Builder {
	b := NewBuilder()
	if p == nil {
		return b
	}
	b.cfg.Name = p.Name
	b.cfg.Description = p.Description
	b.cfg.Stack = append([]string(nil), p.Stack...)
	b.cfg.Databases = append([]string(nil), p.Databases...)
	b.cfg.Commands = p.Commands
	if p.TestFramework != "" {
		b.cfg.TestFrameworks = []string{p.TestFramework}
	}
	return b
}

func (b *Builder) SetName(name string) *Builder {
	b.cfg.Name = strings.TrimSpace(name)
	return b
}

func (b *Builder) SetDescription(desc string) *Builder {
	b.cfg.Description = strings.TrimSpace(desc)
	return b
}

func (b *Builder) SetPlatforms(platforms []string) *Builder {
	b.cfg.Platforms = trimAll(platforms)
	return b
}

func (b *Builder) SetStack(stack []string) *Builder {
	b.cfg.Stack = trimAll(stack)
	return b
}

func (b *Builder) SetCommands(c detect.Commands) *Builder {
	b.cfg.Commands = c
	return b
}

func (b *Builder) SetNamingConvention(v string) *Builder {
	b.cfg.NamingConvention = v
	return b
}

func (b *Builder) SetErrorHandling(v string) *Builder {
	b.cfg.ErrorHandling = v
	return b
}

func (b *Builder) SetBoundaries(bd Boundaries) *Builder {
	b.cfg.Boundaries = bd
	return b
}

func (b *Builder) SetTestLevels(levels []string) *Builder {
	b.cfg.TestLevels = trimAll(levels)
	return b
}

func (b *Builder) SetTestFrameworks(frameworks []string) *Builder {
	b.cfg.TestFrameworks = trimAll(frameworks)
	return b
}

func (b *Builder) SetCoverageTarget(pct int) *Builder {
	b.cfg.CoverageTarget = pct
	return b
}

func (b *Builder) SetStaticFiles(files []string) *Builder {
	b.cfg.StaticFiles = trimAll(files)
	return b
}

func (b *Builder) SetAIBehaviorRules(rules []string) *Builder {
	b.cfg.AIBehaviorRules = trimAll(rules)
	return b
}

func (b *Builder) SetPersona(p string) *Builder {
	b.cfg.Persona = strings.TrimSpace(p)
	return b
}

func (b *Builder) SetExtraNotes(notes string) *Builder {
	b.cfg.ExtraNotes = notes
	return b
}

// Preview returns the current (possibly incomplete) answer set for
// summary screens.
func (b *Builder) Preview() Config {
	return b.cfg
}

// Finalize validates the accumulated answers, applies defaults for
// anything unanswered, and re-applies tier gating: fields belonging to
// steps above the caller's tier are silently reset to their defaults,
// so batch-mode flags cannot set fields the interactive wizard would
// have locked.
func (b *Builder) Finalize(tier Tier) (Config, error) {
	cfg := b.cfg

	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if len(cfg.Platforms) == 0 {
		cfg.Platforms = append([]string(nil), DefaultPlatforms...)
	}
	if cfg.Boundaries.Preset == "" {
		cfg.Boundaries.Preset = DefaultBoundaries
	}
	if !validPreset(cfg.Boundaries.Preset) {
		return Config{}, fmt.Errorf("invalid boundaries preset %q (valid: %s)", cfg.Boundaries.Preset, strings.Join(BoundaryPresets, ", "))
	}
	if cfg.CoverageTarget < 0 || cfg.CoverageTarget > 100 {
		return Config{}, fmt.Errorf("coverage target %d out of range 0-100", cfg.CoverageTarget)
	}

	if tier < TierIntermediate {
		cfg.Commands = detect.Commands{}
		cfg.NamingConvention = ""
		cfg.ErrorHandling = ""
		cfg.Boundaries = Boundaries{Preset: DefaultBoundaries}
	}
	if tier < TierAdvanced {
		cfg.TestLevels = nil
		cfg.TestFrameworks = nil
		cfg.CoverageTarget = 0
		cfg.AIBehaviorRules = nil
		cfg.StaticFiles = nil
	}

	return cfg, nil
}

func validPreset(preset string) bool {
	for _, p := range BoundaryPresets {
		if p == preset {
			return true
		}
	}
	return false
}

func trimAll(items []string) []string {
	var out []string
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}
