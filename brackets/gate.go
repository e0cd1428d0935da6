package brackets

import "sync"

type GateState int

const (
	GateIdle GateState = iota
	GateArmed
)

func (s GateState) String() string {
	if s == GateArmed {
		return "armed"
	}
	return "idle"
}

// GateAction is what the caller must do after an activation.
type GateAction int

const (
	GateNone GateAction = iota
	GateArm             // show the confirmation affordance
	GateFire            // perform the advance
)

// AdvanceGate is the two-step confirmation guarding the advance action:
// the first activation arms it, the second fires it, leaving the control
// disarms it. The zero value is an idle gate.
type AdvanceGate struct {
	mu    sync.Mutex
	state GateState
}

func (g *AdvanceGate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Activate advances the gate and returns the resulting action.
func (g *AdvanceGate) Activate() GateAction {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GateArmed {
		g.state = GateIdle
		return GateFire
	}
	g.state = GateArmed
	return GateArm
}

// Leave cancels an armed gate. It reports whether the gate was armed.
func (g *AdvanceGate) Leave() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	wasArmed := g.state == GateArmed
	g.state = GateIdle
	return wasArmed
}
