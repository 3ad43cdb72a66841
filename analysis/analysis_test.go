package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zeu5/gategrid/core"
	"github.com/zeu5/gategrid/policies"
)

type fakeAction string

func (a fakeAction) Hash() string { return string(a) }

type fakeState struct {
	hash     string
	terminal bool
}

func (s *fakeState) Hash() string          { return s.hash }
func (s *fakeState) Actions() []core.Action { return nil }
func (s *fakeState) Terminal() bool        { return s.terminal }

// newTrace walks through the given states with reward -1 per step. The last
// state is terminal when reached is set.
func newTrace(reached bool, hashes ...string) *core.Trace {
	trace := core.NewTrace()
	for i := 0; i+1 < len(hashes); i++ {
		next := &fakeState{hash: hashes[i+1]}
		if reached && i+2 == len(hashes) {
			next.terminal = true
		}
		trace.AddStep(&core.Step{
			State:     &fakeState{hash: hashes[i]},
			Action:    fakeAction("go"),
			Reward:    -1,
			NextState: next,
		})
	}
	return trace
}

func newEpisode(episode int) *core.EpisodeContext {
	eCtx := core.NewEpisodeContext(context.Background())
	eCtx.Episode = episode
	return eCtx
}

func TestReturnAnalyzer(t *testing.T) {
	Convey("Given a return analyzer", t, func() {
		a := NewReturnAnalyzer()

		Convey("Returns, lengths and goals are recorded per episode", func() {
			a.Analyze(newEpisode(0), newTrace(true, "a", "b", "c"))
			a.Analyze(newEpisode(1), newTrace(false, "a", "b", "c", "d", "e"))

			ds := a.DataSet().(*returnDataset)
			So(ds.Returns, ShouldResemble, []float64{-2, -4})
			So(ds.Lengths, ShouldResemble, []int{2, 4})
			So(ds.Reached, ShouldEqual, 1)
			So(ds.Mean, ShouldEqual, -3)
			So(ds.StdDev, ShouldAlmostEqual, 1.4142135, 1e-6)
		})

		Convey("A single episode has no deviation and still encodes", func() {
			a.Analyze(newEpisode(0), newTrace(true, "a", "b", "c"))
			ds := a.DataSet().(*returnDataset)
			So(ds.Mean, ShouldEqual, -2)
			So(ds.StdDev, ShouldEqual, 0)
			_, err := json.Marshal(ds)
			So(err, ShouldBeNil)
		})

		Convey("Failed episodes are skipped", func() {
			trace := newTrace(false, "a", "b")
			trace.SetError(errors.New("boom"))
			a.Analyze(newEpisode(0), trace)
			So(a.DataSet().(*returnDataset).Returns, ShouldBeEmpty)
		})
	})

	Convey("The comparator writes the returns and the chart", t, func() {
		dir := t.TempDir()
		a := NewReturnAnalyzer()
		a.Analyze(newEpisode(0), newTrace(true, "a", "b"))
		NewReturnComparator(dir, 5).Compare([]string{"exp"}, []core.DataSet{a.DataSet()})

		bs, err := os.ReadFile(filepath.Join(dir, "returns.json"))
		So(err, ShouldBeNil)
		out := make(map[string]*returnDataset)
		So(json.Unmarshal(bs, &out), ShouldBeNil)
		So(out["exp"].Returns, ShouldResemble, []float64{-1})
		So(out["exp"].StdDev, ShouldEqual, 0)

		_, err = os.Stat(filepath.Join(dir, "returns.html"))
		So(err, ShouldBeNil)
	})
}

func TestCoverageAnalyzer(t *testing.T) {
	Convey("Given a coverage analyzer", t, func() {
		a := NewCoverageAnalyzer()
		a.Analyze(newEpisode(0), newTrace(false, "a", "b", "c"))
		a.Analyze(newEpisode(1), newTrace(false, "a", "b", "d"))

		Convey("Distinct states accumulate across episodes", func() {
			ds := a.DataSet().(*coverageDataset)
			So(ds.UniqueStates, ShouldResemble, []int{3, 4})
			So(ds.Timesteps, ShouldResemble, []int{2, 4})
		})

		Convey("The comparator writes the coverage", func() {
			dir := t.TempDir()
			NewCoverageComparator(dir).Compare([]string{"exp"}, []core.DataSet{a.DataSet()})
			bs, err := os.ReadFile(filepath.Join(dir, "coverage.json"))
			So(err, ShouldBeNil)
			So(string(bs), ShouldContainSubstring, "\"UniqueStates\"")
		})

		Convey("Reset forgets the visited states", func() {
			a.Reset()
			a.Analyze(newEpisode(0), newTrace(false, "a", "b"))
			So(a.DataSet().(*coverageDataset).UniqueStates, ShouldResemble, []int{2})
		})
	})
}

func TestPredicateAnalyzer(t *testing.T) {
	Convey("Given a hierarchy ending in state c", t, func() {
		atC := policies.Predicate{Name: "AtC", Check: func(s core.State) bool { return s.Hash() == "c" }}
		a := NewPredicateAnalyzer(atC)

		Convey("The first episode and timestep of each level are recorded", func() {
			a.Analyze(newEpisode(0), newTrace(false, "a", "b"))
			a.Analyze(newEpisode(1), newTrace(true, "a", "b", "c"))

			ds := a.DataSet().(*predicateDataset)
			So(ds.FirstEpisode, ShouldResemble, map[string]int{"Init": 0, "AtC": 1})
			So(ds.FirstTimestep, ShouldResemble, map[string]int{"Init": 0, "AtC": 3})
			So(ds.Episodes, ShouldResemble, map[string]int{"Init": 1, "AtC": 1})
			So(ds.Timesteps["Init"], ShouldEqual, 3)
			So(ds.GoalStates, ShouldResemble, []int{0, 1})
			So(ds.GoalTimesteps, ShouldResemble, []int{1, 3})
		})

		Convey("Levels never reached stay at -1", func() {
			a.Analyze(newEpisode(0), newTrace(false, "a", "b"))
			ds := a.DataSet().(*predicateDataset)
			So(ds.FirstEpisode["AtC"], ShouldEqual, -1)
			So(ds.FirstTimestep["AtC"], ShouldEqual, -1)
		})
	})
}

func TestErrorAnalyzer(t *testing.T) {
	Convey("Failed episodes are dumped to the errors directory", t, func() {
		dir := t.TempDir()
		a := NewErrorAnalyzer(dir, nil)

		a.Analyze(newEpisode(0), newTrace(false, "a", "b"))
		So(a.DataSet(), ShouldEqual, 0)

		trace := newTrace(false, "a", "b")
		trace.SetError(errors.New("boom"))
		a.Analyze(newEpisode(3), trace)
		So(a.DataSet(), ShouldEqual, 1)

		bs, err := os.ReadFile(filepath.Join(dir, "errors", "0_error_3.txt"))
		So(err, ShouldBeNil)
		So(string(bs), ShouldStartWith, "Error: boom\n")
		So(string(bs), ShouldContainSubstring, "Action: go")
	})
}
