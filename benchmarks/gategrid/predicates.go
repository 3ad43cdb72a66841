package gategrid

import (
	"github.com/zeu5/gategrid/core"
	"github.com/zeu5/gategrid/grid"
	"github.com/zeu5/gategrid/policies"
)

func wrapPredicate(f func(grid.State) bool) policies.PredicateFunc {
	return func(s core.State) bool {
		gs, ok := s.(*State)
		if !ok {
			return false
		}
		return f(gs.State)
	}
}

func HasTool() policies.PredicateFunc {
	return wrapPredicate(func(s grid.State) bool {
		return s.Tool
	})
}

// InOvenRoom holds once the agent carries the tool into the right room,
// which is only reachable through the gates.
func InOvenRoom() policies.PredicateFunc {
	return wrapPredicate(func(s grid.State) bool {
		return s.Tool && s.Position.J > 4
	})
}

func AtOven() policies.PredicateFunc {
	return wrapPredicate(func(s grid.State) bool {
		return s.Terminal()
	})
}

// ToolOnGate holds on either gate cell while carrying the tool.
func ToolOnGate() policies.PredicateFunc {
	return wrapPredicate(func(s grid.State) bool {
		return s.Tool && (s.Position == grid.GateA || s.Position == grid.GateB)
	})
}
