package wizard

// StepKind determines how a step collects its answer.
type StepKind int

const (
	KindText StepKind = iota
	KindSelect
	KindMultiSelect
	KindConfirm
	KindSummary
)

// Step is one wizard screen. Steps are static configuration: the list is
// fixed and total-ordered, and tiers of mixed levels may interleave.
// Tier gates visibility, never order.
type Step struct {
	ID      string
	Title   string
	Prompt  string
	Tier    Tier
	Kind    StepKind
	Options []string // for select/multi-select kinds
}

// Step ids, in order.
const (
	StepName        = "name"
	StepDescription = "description"
	StepPlatforms   = "platforms"
	StepStack       = "stack"
	StepCommands    = "commands"
	StepNaming      = "naming"
	StepErrors      = "errors"
	StepBoundaries  = "boundaries"
	StepTestLevels  = "test-levels"
	StepCoverage    = "coverage"
	StepRules       = "rules"
	StepPersona     = "persona"
	StepNotes       = "notes"
	StepGenerate    = "generate"
)

// Boundary presets.
var BoundaryPresets = []string{"standard", "conservative", "permissive"}

// CommonRules are the selectable AI behavior rules offered by the rules
// step.
var CommonRules = []string{
	"Never commit directly to the default branch",
	"Ask before adding new dependencies",
	"Prefer editing existing files over creating new ones",
	"Run the test suite before declaring work done",
	"Keep functions under 50 lines where practical",
	"Never touch generated files by hand",
}

// Steps returns the full wizard step list. The terminal generate step is
// always last and always basic so every tier can reach it.
func Steps() []Step {
	return []Step{
		{ID: StepName, Title: "Project name", Prompt: "What is the project called?", Tier: TierBasic, Kind: KindText},
		{ID: StepDescription, Title: "Description", Prompt: "One line describing the project (optional):", Tier: TierBasic, Kind: KindText},
		{ID: StepPlatforms, Title: "Target platforms", Prompt: "Which AI assistants should get a config file?", Tier: TierBasic, Kind: KindMultiSelect},
		{ID: StepStack, Title: "Tech stack", Prompt: "Comma-separated stack (pre-filled from detection):", Tier: TierBasic, Kind: KindText},
		{ID: StepCommands, Title: "Commands", Prompt: "Include the detected build/test commands?", Tier: TierIntermediate, Kind: KindConfirm},
		{ID: StepNaming, Title: "Naming convention", Prompt: "Preferred identifier style:", Tier: TierIntermediate, Kind: KindSelect,
			Options: []string{"language default", "camelCase", "snake_case", "kebab-case"}},
		{ID: StepErrors, Title: "Error handling", Prompt: "Preferred error handling style:", Tier: TierIntermediate, Kind: KindSelect,
			Options: []string{"language default", "explicit error values", "exceptions", "result types"}},
		{ID: StepBoundaries, Title: "Boundaries", Prompt: "How cautious should the assistant be?", Tier: TierIntermediate, Kind: KindSelect,
			Options: BoundaryPresets},
		{ID: StepTestLevels, Title: "Testing strategy", Prompt: "Which test levels does the project use?", Tier: TierAdvanced, Kind: KindMultiSelect,
			Options: []string{"unit", "integration", "e2e"}},
		{ID: StepCoverage, Title: "Coverage target", Prompt: "Coverage target percent (0-100, empty to skip):", Tier: TierAdvanced, Kind: KindText},
		{ID: StepRules, Title: "Behavior rules", Prompt: "Pick the rules the assistant must follow:", Tier: TierAdvanced, Kind: KindMultiSelect,
			Options: CommonRules},
		{ID: StepPersona, Title: "Persona", Prompt: "What kind of developer is the assistant pairing with?", Tier: TierBasic, Kind: KindSelect,
			Options: []string{"fullstack", "backend", "frontend", "devops", "data"}},
		{ID: StepNotes, Title: "Extra notes", Prompt: "Anything else the assistant should know? Supports [[VAR]] placeholders.", Tier: TierBasic, Kind: KindText},
		{ID: StepGenerate, Title: "Generate", Prompt: "Review and generate.", Tier: TierBasic, Kind: KindSummary},
	}
}
