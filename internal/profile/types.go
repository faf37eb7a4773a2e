package profile

// Profile is the subset of user settings consumed by generation. It
// personalizes authored attribution and the verbosity of the AI
// instructions section; account lifecycle lives elsewhere.
type Profile struct {
	DisplayName string
	Persona     string // e.g. "fullstack", "backend", "devops"
	SkillLevel  string // "novice", "intermediate", or "senior"
}

// Keys under which profile fields are stored.
const (
	KeyDisplayName = "display_name"
	KeyPersona     = "persona"
	KeySkillLevel  = "skill_level"
)

// ValidKeys lists the settable profile keys in display order.
func ValidKeys() []string {
	return []string{KeyDisplayName, KeyPersona, KeySkillLevel}
}
