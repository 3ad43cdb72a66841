package grid

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	erand "golang.org/x/exp/rand"
)

// fixedRand replays a sequence of draws.
type fixedRand struct {
	draws []int
}

func (f *fixedRand) Intn(n int) int {
	v := f.draws[0]
	f.draws = f.draws[1:]
	return v % n
}

func newTestEnv(start State) *Environment {
	tables, err := DefaultTables()
	So(err, ShouldBeNil)
	return New(tables, WithStart(start))
}

func TestReset(t *testing.T) {
	Convey("Given an environment with a seeded random source", t, func() {
		tables, err := DefaultTables()
		So(err, ShouldBeNil)
		env := New(tables, WithRand(erand.New(erand.NewSource(7))))

		Convey("Every reset lands on the grid and picks up a tool it spawns on", func() {
			for i := 0; i < 500; i++ {
				s := env.Reset()
				So(s.Position.Valid(), ShouldBeTrue)
				So(s.Tool, ShouldEqual, IsToolCell(s.Position))
			}
		})

		Convey("Reset keeps the loaded tables", func() {
			before := env.Tables()
			env.Reset()
			So(env.Tables(), ShouldEqual, before)
		})
	})

	Convey("Given a replayed random source", t, func() {
		tables, err := DefaultTables()
		So(err, ShouldBeNil)

		Convey("Drawing a tool cell starts with the tool", func() {
			env := New(tables, WithRand(&fixedRand{draws: []int{1, 6}}))
			So(env.State(), ShouldResemble, State{Position: Position{2, 7}, Tool: true})
		})

		Convey("Drawing any other cell starts without it", func() {
			env := New(tables, WithRand(&fixedRand{draws: []int{3, 0, 0, 0}}))
			So(env.State(), ShouldResemble, State{Position: Position{4, 1}, Tool: false})

			env.Reset()
			So(env.State(), ShouldResemble, State{Position: Position{1, 1}, Tool: false})
		})
	})
}

func TestReturn(t *testing.T) {
	Convey("Given the agent on a tool cell without the tool", t, func() {
		env := newTestEnv(State{Position: Position{2, 1}})

		Convey("The first call picks the tool up for a reward of 0", func() {
			So(env.Return(), ShouldEqual, PickupReward)
			So(env.State().Tool, ShouldBeTrue)

			Convey("A second call does not pick it up again", func() {
				So(env.Return(), ShouldEqual, StepReward)
				So(env.State().Tool, ShouldBeTrue)
			})
		})
	})

	Convey("Given the agent at the oven", t, func() {
		Convey("With the tool the goal is reached", func() {
			env := newTestEnv(State{Position: Oven, Tool: true})
			So(env.Return(), ShouldEqual, GoalReward)
			So(env.Terminal(), ShouldBeTrue)
		})

		Convey("Without the tool it is an ordinary step", func() {
			env := newTestEnv(State{Position: Oven, Tool: false})
			So(env.Return(), ShouldEqual, StepReward)
			So(env.State().Tool, ShouldBeFalse)
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given the agent starting at (4,1) without the tool", t, func() {
		env := newTestEnv(State{Position: Position{4, 1}})

		Convey("It walks up to the tool and then right along row 2", func() {
			s, r := env.Apply(Up)
			So(s, ShouldResemble, State{Position: Position{3, 1}})
			So(r, ShouldEqual, StepReward)

			s, r = env.Apply(Up)
			So(s, ShouldResemble, State{Position: Position{2, 1}, Tool: true})
			So(r, ShouldEqual, PickupReward)

			for j := 2; j <= 4; j++ {
				s, r = env.Apply(Right)
				So(s, ShouldResemble, State{Position: Position{2, j}, Tool: true})
				So(r, ShouldEqual, StepReward)
			}
		})

		Convey("The demo route reaches the oven through the gate", func() {
			route := []Action{Up, Up, Right, Down, Right, Right, Right, Up, Left}
			var s State
			var r float64
			var err error
			for _, a := range route {
				s, r, err = env.Step(a)
				So(err, ShouldBeNil)
			}
			So(s, ShouldResemble, State{Position: Oven, Tool: true})
			So(r, ShouldEqual, GoalReward)

			actions, terminal := env.Legal()
			So(terminal, ShouldBeTrue)
			So(actions, ShouldBeEmpty)
		})
	})

	Convey("Given the agent on a gate", t, func() {
		for _, tool := range []bool{false, true} {
			env := newTestEnv(State{Position: GateA, Tool: tool})

			s, r := env.Apply(Right)
			So(s, ShouldResemble, State{Position: GateB, Tool: tool})
			So(r, ShouldEqual, StepReward)

			s, r = env.Apply(Right)
			So(s, ShouldResemble, State{Position: GateA, Tool: tool})
			So(r, ShouldEqual, StepReward)
		}
	})

	Convey("Given a non gate move from a gate", t, func() {
		env := newTestEnv(State{Position: GateB})
		s, _ := env.Apply(Left)
		So(s.Position, ShouldResemble, Position{2, 7})
		So(s.Tool, ShouldBeTrue)
	})

	Convey("Apply never rejects an illegal action", t, func() {
		env := newTestEnv(State{Position: Position{1, 1}})
		s, r := env.Apply(Up)
		So(s.Position, ShouldResemble, Position{0, 1})
		So(s.Position.Valid(), ShouldBeFalse)
		So(r, ShouldEqual, StepReward)
	})
}

func TestStep(t *testing.T) {
	Convey("Step rejects illegal actions without moving", t, func() {
		env := newTestEnv(State{Position: Position{2, 4}})
		_, _, err := env.Step(Right)
		var invalid *InvalidActionError
		So(errors.As(err, &invalid), ShouldBeTrue)
		So(invalid.Action, ShouldEqual, Right)
		So(env.State().Position, ShouldResemble, Position{2, 4})
	})

	Convey("Step rejects every action from the terminal state", t, func() {
		env := newTestEnv(State{Position: Oven, Tool: true})
		for _, a := range Actions {
			_, _, err := env.Step(a)
			So(errors.Is(err, ErrTerminal), ShouldBeTrue)
		}
	})
}
