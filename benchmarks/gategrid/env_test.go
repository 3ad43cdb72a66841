package gategrid

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zeu5/gategrid/core"
	"github.com/zeu5/gategrid/grid"
	"github.com/zeu5/gategrid/policies"
)

type foreignAction struct{}

func (foreignAction) Hash() string { return "foreign" }

func newTestGridEnv(start grid.State) *GridEnv {
	tables, err := grid.DefaultTables()
	So(err, ShouldBeNil)
	return NewGridEnvConstructor(GridEnvConfig{Tables: tables, Seed: 1, Start: &start}).NewEnvironment(0).(*GridEnv)
}

func TestGridEnv(t *testing.T) {
	Convey("Given a grid environment starting at (1,1)", t, func() {
		env := newTestGridEnv(grid.State{Position: grid.Position{I: 1, J: 1}})
		s, err := env.Reset()
		So(err, ShouldBeNil)

		Convey("The state carries its legal actions", func() {
			So(s.Hash(), ShouldEqual, "((1,1), false)")
			So(s.Actions(), ShouldResemble, []core.Action{Action{grid.Down}, Action{grid.Right}})
			So(s.Terminal(), ShouldBeFalse)
		})

		Convey("A legal step costs one", func() {
			next, r, err := env.Step(Action{grid.Right}, nil)
			So(err, ShouldBeNil)
			So(r, ShouldEqual, grid.StepReward)
			So(next.Hash(), ShouldEqual, "((1,2), false)")
		})

		Convey("Stepping onto the tool picks it up", func() {
			next, r, err := env.Step(Action{grid.Down}, nil)
			So(err, ShouldBeNil)
			So(r, ShouldEqual, grid.PickupReward)
			So(next.Hash(), ShouldEqual, "((2,1), true)")
		})

		Convey("An illegal step is an invalid action", func() {
			_, _, err := env.Step(Action{grid.Up}, nil)
			So(errors.Is(err, core.ErrInvalidAction), ShouldBeTrue)
			var invalid *grid.InvalidActionError
			So(errors.As(err, &invalid), ShouldBeTrue)
			So(env.Grid().State().Position, ShouldResemble, grid.Position{I: 1, J: 1})
		})

		Convey("Actions of other environments are rejected", func() {
			_, _, err := env.Step(foreignAction{}, nil)
			So(errors.Is(err, core.ErrInvalidAction), ShouldBeTrue)
		})
	})

	Convey("Environments of a seeded constructor draw the same starts per instance", t, func() {
		tables, err := grid.DefaultTables()
		So(err, ShouldBeNil)
		c := NewGridEnvConstructor(GridEnvConfig{Tables: tables, Seed: 42})
		a := c.NewEnvironment(3)
		b := c.NewEnvironment(3)
		for i := 0; i < 20; i++ {
			sa, _ := a.Reset()
			sb, _ := b.Reset()
			So(sa.Hash(), ShouldEqual, sb.Hash())
		}
	})
}

func TestPredicates(t *testing.T) {
	state := func(i, j int, tool bool) core.State {
		tables, _ := grid.DefaultTables()
		return newState(grid.State{Position: grid.Position{I: i, J: j}, Tool: tool}, tables)
	}

	Convey("Predicates read the grid state", t, func() {
		So(HasTool()(state(3, 3, true)), ShouldBeTrue)
		So(HasTool()(state(3, 3, false)), ShouldBeFalse)

		So(InOvenRoom()(state(3, 6, true)), ShouldBeTrue)
		So(InOvenRoom()(state(3, 6, false)), ShouldBeFalse)
		So(InOvenRoom()(state(3, 3, true)), ShouldBeFalse)

		So(ToolOnGate()(state(3, 4, true)), ShouldBeTrue)
		So(ToolOnGate()(state(2, 8, true)), ShouldBeTrue)
		So(ToolOnGate()(state(2, 8, false)), ShouldBeFalse)

		So(AtOven()(state(1, 7, true)), ShouldBeTrue)
		So(AtOven()(state(1, 7, false)), ShouldBeFalse)
	})

	Convey("Other states never satisfy a predicate", t, func() {
		So(HasTool()(nil), ShouldBeFalse)
	})
}

func TestHierarchies(t *testing.T) {
	Convey("A single hierarchy expands into its suffixes", t, func() {
		set := getHierarchySet("ToolToOven")
		So(set, ShouldHaveLength, 3)
		So(set[0].Name, ShouldEqual, "ToolToOven[1]")
		So(set[0].Predicates, ShouldHaveLength, 1)
		So(set[0].Predicates[0].Name, ShouldEqual, "AtOven")
		So(set[2].Predicates, ShouldHaveLength, 3)
	})

	Convey("set1 holds both hierarchies", t, func() {
		set := getHierarchySet("set1")
		So(set, ShouldHaveLength, 2)
		So(set[0].Name, ShouldEqual, "ToolToOven")
		So(set[1].Name, ShouldEqual, "GateToOven")
	})

	Convey("Unknown names give nothing", t, func() {
		So(getHierarchySet("Nowhere"), ShouldBeEmpty)
		So(getHierarchySet("set9"), ShouldBeEmpty)
	})
}

func TestLearning(t *testing.T) {
	Convey("Q-learning from a fixed start finds the oven", t, func() {
		tables, err := grid.DefaultTables()
		So(err, ShouldBeNil)
		start := grid.State{Position: grid.Position{I: 4, J: 1}}
		cmp := core.NewComparison()
		cmp.AddExperiment(&core.Experiment{
			Name:        "QLearning",
			Environment: NewGridEnvConstructor(GridEnvConfig{Tables: tables, Seed: 1, Start: &start}).NewEnvironment(0),
			Policy:      policies.NewQLearningPolicy(0.5, 0.95, 0.1),
		})
		results := cmp.Run(context.Background(), 1, &core.RunConfig{
			Episodes:                     300,
			Horizon:                      200,
			EpisodeTimeout:               5 * time.Second,
			ThresholdConsecutiveErrors:   5,
			ThresholdConsecutiveTimeouts: 5,
		}, nil)

		r := results["QLearning"]
		So(r.IsError(), ShouldBeFalse)
		So(r.InvalidEpisodes, ShouldEqual, 0)
		So(r.TerminalEpisodes, ShouldBeGreaterThan, 200)
	})
}
