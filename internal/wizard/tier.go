package wizard

// Tier is the access level required by a wizard step, ordered
// basic < intermediate < advanced.
type Tier int

const (
	TierBasic Tier = iota
	TierIntermediate
	TierAdvanced
)

func (t Tier) String() string {
	switch t {
	case TierBasic:
		return "basic"
	case TierIntermediate:
		return "intermediate"
	case TierAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// TierForPlan maps a billing plan to the highest step tier it grants:
// free gets basic only, pro adds intermediate, max and teams get
// everything. Unknown plans are treated as free.
func TierForPlan(plan string) Tier {
	switch plan {
	case "pro":
		return TierIntermediate
	case "max", "teams":
		return TierAdvanced
	default:
		return TierBasic
	}
}
