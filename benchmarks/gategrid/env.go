package gategrid

import (
	"errors"
	"fmt"
	"time"

	"github.com/zeu5/gategrid/core"
	"github.com/zeu5/gategrid/grid"
	erand "golang.org/x/exp/rand"
)

var errForeignAction = errors.New("not a grid action")

// Action wraps a grid move for the experiment harness.
type Action struct {
	grid.Action
}

var _ core.Action = Action{}

func (a Action) Hash() string {
	return string(a.Action)
}

// State is a grid state together with its legal actions.
type State struct {
	grid.State
	actions []grid.Action
}

var _ core.State = &State{}

func newState(s grid.State, tables *grid.Tables) *State {
	actions, _ := tables.LegalActions(s.Position, s.Tool)
	return &State{State: s, actions: actions}
}

func (s *State) Hash() string {
	return s.State.String()
}

func (s *State) Actions() []core.Action {
	out := make([]core.Action, len(s.actions))
	for i, a := range s.actions {
		out[i] = Action{Action: a}
	}
	return out
}

// GridEnv exposes a grid.Environment as a core.Environment. Illegal actions
// are rejected with core.ErrInvalidAction.
type GridEnv struct {
	env *grid.Environment
}

var _ core.Environment = &GridEnv{}

func NewGridEnv(env *grid.Environment) *GridEnv {
	return &GridEnv{env: env}
}

func (g *GridEnv) Grid() *grid.Environment {
	return g.env
}

func (g *GridEnv) Reset() (core.State, error) {
	return newState(g.env.Reset(), g.env.Tables()), nil
}

func (g *GridEnv) Step(a core.Action, _ *core.StepContext) (core.State, float64, error) {
	action, ok := a.(Action)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %w: %T", core.ErrInvalidAction, errForeignAction, a)
	}
	s, r, err := g.env.Step(action.Action)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", core.ErrInvalidAction, err)
	}
	return newState(s, g.env.Tables()), r, nil
}

type GridEnvConfig struct {
	Tables *grid.Tables
	// Seed for the starting position draws; 0 seeds from the clock.
	Seed uint64
	// Start, when set, fixes the starting state of every episode.
	Start *grid.State
}

// GridEnvConstructor builds one environment per worker over shared tables.
type GridEnvConstructor struct {
	config GridEnvConfig
}

var _ core.EnvironmentConstructor = &GridEnvConstructor{}

func NewGridEnvConstructor(c GridEnvConfig) *GridEnvConstructor {
	return &GridEnvConstructor{config: c}
}

func (c *GridEnvConstructor) NewEnvironment(instance int) core.Environment {
	seed := c.config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	opts := []grid.Option{
		grid.WithRand(erand.New(erand.NewSource(seed + uint64(instance)))),
	}
	if c.config.Start != nil {
		opts = append(opts, grid.WithStart(*c.config.Start))
	}
	return NewGridEnv(grid.New(c.config.Tables, opts...))
}
