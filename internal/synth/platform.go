package synth

// Platform is a closed enumeration of supported AI assistants. Each
// variant carries its output filename so the id, label, and path can
// never drift apart.
type Platform int

const (
	PlatformAgents Platform = iota
	PlatformClaude
	PlatformCursor
	PlatformCopilot
	PlatformWindsurf
	PlatformAider
	PlatformGemini
)

var platformInfo = []struct {
	id       string
	label    string
	fileName string
}{
	{"agents", "AGENTS.md (generic)", "AGENTS.md"},
	{"claude", "Claude Code", "CLAUDE.md"},
	{"cursor", "Cursor", ".cursor/rules/project.mdc"},
	{"copilot", "GitHub Copilot", ".github/copilot-instructions.md"},
	{"windsurf", "Windsurf", ".windsurfrules"},
	{"aider", "Aider", "CONVENTIONS.md"},
	{"gemini", "Gemini CLI", "GEMINI.md"},
}

// ID returns the stable platform identifier used in configs and APIs.
func (p Platform) ID() string { return platformInfo[p].id }

// Label returns the human-readable platform name.
func (p Platform) Label() string { return platformInfo[p].label }

// FileName returns the output path, relative to the repository root.
// Intermediate directories are the writer's responsibility.
func (p Platform) FileName() string { return platformInfo[p].fileName }

// ParsePlatform resolves a platform id. Unknown ids return false; callers
// skip them with a warning rather than failing the whole generation.
func ParsePlatform(id string) (Platform, bool) {
	for i, info := range platformInfo {
		if info.id == id {
			return Platform(i), true
		}
	}
	return 0, false
}

// Platforms returns all supported platforms in display order.
func Platforms() []Platform {
	out := make([]Platform, len(platformInfo))
	for i := range platformInfo {
		out[i] = Platform(i)
	}
	return out
}

// PlatformIDs returns all supported platform ids in display order.
func PlatformIDs() []string {
	ids := make([]string, len(platformInfo))
	for i, info := range platformInfo {
		ids[i] = info.id
	}
	return ids
}
