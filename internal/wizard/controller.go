package wizard

// Controller navigates the full step list for one user tier. Navigation
// skips steps the tier cannot access; the terminal generate step is never
// gated so every tier can finish.
type Controller struct {
	steps []Step
	tier  Tier
	idx   int
}

// NewController creates a Controller over the standard step list.
func NewController(tier Tier) *Controller {
	return &Controller{steps: Steps(), tier: tier}
}

// NewControllerWithSteps creates a Controller over a custom step list
// (used by tests).
func NewControllerWithSteps(steps []Step, tier Tier) *Controller {
	return &Controller{steps: steps, tier: tier}
}

// Steps returns the full step list, locked steps included.
func (c *Controller) Steps() []Step {
	return c.steps
}

// Index returns the current position in the full step list.
func (c *Controller) Index() int {
	return c.idx
}

// Current returns the step at the current position.
func (c *Controller) Current() Step {
	return c.steps[c.idx]
}

// Accessible reports whether the step at i is available to this tier.
// The final step is the terminal state for every tier and is always
// accessible.
func (c *Controller) Accessible(i int) bool {
	if i < 0 || i >= len(c.steps) {
		return false
	}
	if i == len(c.steps)-1 {
		return true
	}
	return c.steps[i].Tier <= c.tier
}

// Locked returns the steps this tier cannot access, for upgrade prompts.
func (c *Controller) Locked() []Step {
	var locked []Step
	for i, s := range c.steps {
		if !c.Accessible(i) {
			locked = append(locked, s)
		}
	}
	return locked
}

// Next advances to the next accessible step. When none remains it jumps
// to the final step.
func (c *Controller) Next() Step {
	for i := c.idx + 1; i < len(c.steps); i++ {
		if c.Accessible(i) {
			c.idx = i
			return c.Current()
		}
	}
	c.idx = len(c.steps) - 1
	return c.Current()
}

// Back moves to the previous accessible step, or stays put at the
// boundary.
func (c *Controller) Back() Step {
	for i := c.idx - 1; i >= 0; i-- {
		if c.Accessible(i) {
			c.idx = i
			break
		}
	}
	return c.Current()
}

// Goto jumps directly to step i if it is accessible; jumping to a locked
// step is a no-op and returns false.
func (c *Controller) Goto(i int) bool {
	if !c.Accessible(i) {
		return false
	}
	c.idx = i
	return true
}

// AtEnd reports whether the controller sits on the terminal generate
// step.
func (c *Controller) AtEnd() bool {
	return c.idx == len(c.steps)-1
}
