package grid

import (
	"fmt"
)

const (
	Rows = 4
	Cols = 8
	// NumIndices is the number of enumerated positions, one transition table row each.
	NumIndices = Rows * Cols
)

// Rewards
const (
	PickupReward float64 = 0
	GoalReward   float64 = 0
	StepReward   float64 = -1
)

// Position is a grid cell, rows 1..4 and columns 1..8.
type Position struct {
	I int `json:"i"`
	J int `json:"j"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.I, p.J)
}

// Valid reports whether p lies inside the grid.
func (p Position) Valid() bool {
	return p.I >= 1 && p.I <= Rows && p.J >= 1 && p.J <= Cols
}

func (p Position) add(a Action) Position {
	di, dj := a.Delta()
	return Position{I: p.I + di, J: p.J + dj}
}

// Fixed map cells
var (
	ToolCells = []Position{{2, 1}, {2, 7}}
	Oven      = Position{1, 7}
	GateA     = Position{3, 4}
	GateB     = Position{2, 8}
)

// IsToolCell reports whether a tool lies on p.
func IsToolCell(p Position) bool {
	for _, t := range ToolCells {
		if p == t {
			return true
		}
	}
	return false
}

// State is the agent position together with the tool flag.
type State struct {
	Position Position `json:"position"`
	Tool     bool     `json:"tool"`
}

func (s State) String() string {
	return fmt.Sprintf("(%s, %t)", s.Position, s.Tool)
}

// Terminal is true only once the tool has been brought to the oven.
func (s State) Terminal() bool {
	return s.Tool && s.Position == Oven
}

// Enumerate maps a position to its transition table row.
func Enumerate(p Position) int {
	return 8*(p.I-1) + (p.J - 1)
}

// Inverse is the inverse of Enumerate for indices in [0, NumIndices).
func Inverse(index int) Position {
	i := 0
	switch {
	case 0 <= index && index <= 7:
		i = 1
	case 8 <= index && index <= 15:
		i = 2
	case 16 <= index && index <= 23:
		i = 3
	case 24 <= index && index <= 31:
		i = 4
	}
	return Position{I: i, J: index - 8*(i-1) + 1}
}

// Action is one of the four moves.
type Action string

const (
	Up    Action = "up"
	Down  Action = "down"
	Left  Action = "left"
	Right Action = "right"
)

// Actions in canonical order.
var Actions = []Action{Up, Down, Left, Right}

// Delta returns the row and column offset of the action.
func (a Action) Delta() (int, int) {
	switch a {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	return 0, 0
}

// ParseAction maps a direction name such as "up" to its Action.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}
