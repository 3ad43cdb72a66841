package grid

import (
	"time"

	erand "golang.org/x/exp/rand"
)

// Rand is the random source used to draw starting positions.
type Rand interface {
	Intn(n int) int
}

// Option configures an Environment in New.
type Option func(*Environment)

// WithRand sets the random source for the starting position draw.
func WithRand(r Rand) Option {
	return func(e *Environment) {
		e.rand = r
	}
}

// WithStart fixes the starting state instead of drawing it, on construction
// and on every Reset.
func WithStart(s State) Option {
	return func(e *Environment) {
		start := s
		e.start = &start
	}
}

// Environment is the gate grid world. It is owned by a single caller and
// mutated in place by Apply, Step and Return.
type Environment struct {
	tables *Tables
	rand   Rand
	start  *State

	position Position
	tool     bool
}

// New creates an environment over already loaded tables and draws the
// starting state.
func New(tables *Tables, opts ...Option) *Environment {
	e := &Environment{
		tables: tables,
	}
	for _, o := range opts {
		o(e)
	}
	if e.rand == nil {
		e.rand = erand.New(erand.NewSource(uint64(time.Now().UnixNano())))
	}
	e.Reset()
	return e
}

// Load reads the tables from src and creates an environment over them.
func Load(src TableSource, opts ...Option) (*Environment, error) {
	tables, err := LoadTables(src)
	if err != nil {
		return nil, err
	}
	return New(tables, opts...), nil
}

// Reset draws a new starting position. The tables are not reloaded.
func (e *Environment) Reset() State {
	if e.start != nil {
		e.position = e.start.Position
		e.tool = e.start.Tool
		return e.State()
	}
	e.position = Position{
		I: e.rand.Intn(Rows) + 1,
		J: e.rand.Intn(Cols) + 1,
	}
	// spawning on a tool picks it up
	e.tool = IsToolCell(e.position)
	return e.State()
}

// State is the current position and tool flag.
func (e *Environment) State() State {
	return State{Position: e.position, Tool: e.tool}
}

// Tables are the transition tables the environment was built on.
func (e *Environment) Tables() *Tables {
	return e.tables
}

// Terminal reports whether the tool has reached the oven.
func (e *Environment) Terminal() bool {
	return e.State().Terminal()
}

// LegalActions answers for any state, not only the current one.
func (e *Environment) LegalActions(pos Position, tool bool) ([]Action, bool) {
	return e.tables.LegalActions(pos, tool)
}

// Legal returns the legal actions of the current state.
func (e *Environment) Legal() ([]Action, bool) {
	return e.tables.LegalActions(e.position, e.tool)
}

// Return computes the reward of the current state. Arriving on a tool cell
// without the tool picks the tool up.
func (e *Environment) Return() float64 {
	if IsToolCell(e.position) && !e.tool {
		e.tool = true
		return PickupReward
	}
	if e.tool && e.position == Oven {
		return GoalReward
	}
	// carrying the tool towards the oven
	if e.tool {
		return StepReward
	}
	// still looking for the tool
	return StepReward
}

// Apply takes the action without checking that it is legal and returns the
// new state with its reward.
func (e *Environment) Apply(a Action) (State, float64) {
	switch {
	case e.position == GateA && a == Right:
		e.position = GateB
	case e.position == GateB && a == Right:
		e.position = GateA
	default:
		e.position = e.position.add(a)
	}
	r := e.Return()
	return e.State(), r
}

// Step is Apply restricted to legal actions.
func (e *Environment) Step(a Action) (State, float64, error) {
	actions, terminal := e.Legal()
	if terminal {
		return e.State(), 0, ErrTerminal
	}
	for _, legal := range actions {
		if legal == a {
			s, r := e.Apply(a)
			return s, r, nil
		}
	}
	return e.State(), 0, &InvalidActionError{State: e.State(), Action: a}
}
