package wizard

import "testing"

func TestTierForPlan(t *testing.T) {
	tests := []struct {
		plan string
		want Tier
	}{
		{"free", TierBasic},
		{"pro", TierIntermediate},
		{"max", TierAdvanced},
		{"teams", TierAdvanced},
		{"", TierBasic},
		{"enterprise", TierBasic},
	}
	for _, tt := range tests {
		if got := TierForPlan(tt.plan); got != tt.want {
			t.Errorf("TierForPlan(%q) = %v, want %v", tt.plan, got, tt.want)
		}
	}
}

func TestAccessibleMonotonic(t *testing.T) {
	// Every step a lower tier can access, a higher tier can too.
	tiers := []Tier{TierBasic, TierIntermediate, TierAdvanced}
	for ti := 0; ti < len(tiers)-1; ti++ {
		lower := NewController(tiers[ti])
		higher := NewController(tiers[ti+1])
		for i := range lower.Steps() {
			if lower.Accessible(i) && !higher.Accessible(i) {
				t.Errorf("step %d accessible at %v but not at %v", i, tiers[ti], tiers[ti+1])
			}
		}
	}
}

func TestTerminalStepAlwaysReachable(t *testing.T) {
	for _, tier := range []Tier{TierBasic, TierIntermediate, TierAdvanced} {
		c := NewController(tier)
		last := len(c.Steps()) - 1
		if !c.Accessible(last) {
			t.Errorf("tier %v cannot access the terminal step", tier)
		}

		// Walking forward from the start must land on the terminal step.
		for i := 0; i < len(c.Steps())+1; i++ {
			if c.AtEnd() {
				break
			}
			c.Next()
		}
		if !c.AtEnd() {
			t.Errorf("tier %v never reached the terminal step by walking forward", tier)
		}
	}
}

func TestNextSkipsLockedSteps(t *testing.T) {
	steps := []Step{
		{ID: "a", Tier: TierBasic},
		{ID: "b", Tier: TierAdvanced},
		{ID: "c", Tier: TierBasic},
		{ID: "end", Tier: TierBasic, Kind: KindSummary},
	}
	c := NewControllerWithSteps(steps, TierBasic)

	if got := c.Next(); got.ID != "c" {
		t.Errorf("Next() landed on %q, want %q", got.ID, "c")
	}
	if got := c.Next(); got.ID != "end" {
		t.Errorf("Next() landed on %q, want %q", got.ID, "end")
	}
}

func TestBackSkipsLockedStepsAndStopsAtStart(t *testing.T) {
	steps := []Step{
		{ID: "a", Tier: TierBasic},
		{ID: "b", Tier: TierAdvanced},
		{ID: "c", Tier: TierBasic},
		{ID: "end", Tier: TierBasic, Kind: KindSummary},
	}
	c := NewControllerWithSteps(steps, TierBasic)
	c.Next() // at c
	c.Next() // at end

	if got := c.Back(); got.ID != "c" {
		t.Errorf("Back() landed on %q, want %q", got.ID, "c")
	}
	if got := c.Back(); got.ID != "a" {
		t.Errorf("Back() landed on %q, want %q", got.ID, "a")
	}
	if got := c.Back(); got.ID != "a" {
		t.Errorf("Back() at start moved to %q, want to stay at %q", got.ID, "a")
	}
}

func TestGotoLockedStepIsNoOp(t *testing.T) {
	steps := []Step{
		{ID: "a", Tier: TierBasic},
		{ID: "b", Tier: TierAdvanced},
		{ID: "end", Tier: TierBasic, Kind: KindSummary},
	}
	c := NewControllerWithSteps(steps, TierBasic)

	if c.Goto(1) {
		t.Error("Goto(locked) returned true")
	}
	if c.Index() != 0 {
		t.Errorf("Goto(locked) moved the index to %d", c.Index())
	}
	if !c.Goto(2) {
		t.Error("Goto(terminal) returned false")
	}
}

func TestLocked(t *testing.T) {
	c := NewController(TierBasic)
	for _, s := range c.Locked() {
		if s.Tier <= TierBasic {
			t.Errorf("step %q reported locked but has tier %v", s.ID, s.Tier)
		}
	}

	if locked := NewController(TierAdvanced).Locked(); len(locked) != 0 {
		t.Errorf("advanced tier has locked steps: %v", locked)
	}
}
