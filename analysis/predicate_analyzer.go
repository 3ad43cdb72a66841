package analysis

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/zeu5/gategrid/core"
	"github.com/zeu5/gategrid/policies"
	"github.com/zeu5/gategrid/util"
)

// predicateDataset is keyed by predicate name. First* values are -1 until
// the predicate holds for the first time.
type predicateDataset struct {
	FirstEpisode  map[string]int
	FirstTimestep map[string]int
	// episodes whose highest level was the predicate
	Episodes map[string]int
	// steps spent at the predicate's level
	Timesteps map[string]int

	// distinct states satisfying the last predicate, after every episode
	GoalStates    []int
	GoalTimesteps []int
}

func newPredicateDataset(predicates []policies.Predicate) *predicateDataset {
	ds := &predicateDataset{
		FirstEpisode:  make(map[string]int),
		FirstTimestep: make(map[string]int),
		Episodes:      make(map[string]int),
		Timesteps:     make(map[string]int),
		GoalStates:    make([]int, 0),
		GoalTimesteps: make([]int, 0),
	}
	for _, pred := range predicates {
		ds.FirstEpisode[pred.Name] = -1
		ds.FirstTimestep[pred.Name] = -1
		ds.Episodes[pred.Name] = 0
		ds.Timesteps[pred.Name] = 0
	}
	return ds
}

func (p *predicateDataset) Copy() *predicateDataset {
	return &predicateDataset{
		FirstEpisode:  util.CopyStringIntMap(p.FirstEpisode),
		FirstTimestep: util.CopyStringIntMap(p.FirstTimestep),
		Episodes:      util.CopyStringIntMap(p.Episodes),
		Timesteps:     util.CopyStringIntMap(p.Timesteps),
		GoalStates:    util.CopyIntSlice(p.GoalStates),
		GoalTimesteps: util.CopyIntSlice(p.GoalTimesteps),
	}
}

// PredicateAnalyzer follows each episode up a predicate hierarchy. A level
// once reached is kept for the rest of the episode, matching how the
// hierarchy policy rewards progress.
type PredicateAnalyzer struct {
	predicates []policies.Predicate

	dataset    *predicateDataset
	goalStates map[string]bool
	timestep   int
}

var _ core.Analyzer = &PredicateAnalyzer{}

func NewPredicateAnalyzer(predicates ...policies.Predicate) *PredicateAnalyzer {
	p := &PredicateAnalyzer{
		predicates: append([]policies.Predicate{policies.Init}, predicates...),
	}
	p.Reset()
	return p
}

func (p *PredicateAnalyzer) Reset() {
	p.dataset = newPredicateDataset(p.predicates)
	p.goalStates = make(map[string]bool)
	p.timestep = 0
}

// level is the highest predicate holding in s.
func (p *PredicateAnalyzer) level(s core.State) int {
	for i := len(p.predicates) - 1; i > 0; i-- {
		if p.predicates[i].Check(s) {
			return i
		}
	}
	return 0
}

func (p *PredicateAnalyzer) reached(level, episode, timestep int) {
	for i := 0; i <= level; i++ {
		name := p.predicates[i].Name
		if p.dataset.FirstEpisode[name] == -1 {
			p.dataset.FirstEpisode[name] = episode
			p.dataset.FirstTimestep[name] = timestep
		}
	}
}

func (p *PredicateAnalyzer) Analyze(eCtx *core.EpisodeContext, trace *core.Trace) {
	goal := len(p.predicates) - 1
	cur := 0
	for i := 0; i < trace.Len(); i++ {
		step := trace.Step(i)
		if i == 0 {
			cur = p.level(step.State)
			p.reached(cur, eCtx.Episode, p.timestep)
		}
		p.dataset.Timesteps[p.predicates[cur].Name]++
		p.timestep++

		if next := p.level(step.NextState); next > cur {
			cur = next
			p.reached(cur, eCtx.Episode, p.timestep)
		}
		if cur == goal && p.predicates[goal].Check(step.NextState) {
			p.goalStates[step.NextState.Hash()] = true
		}
	}
	if trace.Len() > 0 {
		p.dataset.Episodes[p.predicates[cur].Name]++
	}

	p.dataset.GoalStates = append(p.dataset.GoalStates, len(p.goalStates))
	p.dataset.GoalTimesteps = append(p.dataset.GoalTimesteps, p.timestep)
}

func (p *PredicateAnalyzer) DataSet() core.DataSet {
	return p.dataset.Copy()
}

type PredicateAnalyzerConstructor struct {
	Predicates []policies.Predicate
}

var _ core.AnalyzerConstructor = &PredicateAnalyzerConstructor{}

func NewPredicateAnalyzerConstructor(predicates []policies.Predicate) *PredicateAnalyzerConstructor {
	return &PredicateAnalyzerConstructor{
		Predicates: predicates,
	}
}

func (p *PredicateAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewPredicateAnalyzer(p.Predicates...)
}

// PredicateComparator writes <savePath>/predicates_<hierarchy>.json.
type PredicateComparator struct {
	savePath string
}

var _ core.Comparator = &PredicateComparator{}

func NewPredicateComparator(savePath string, hierarchyName string) *PredicateComparator {
	return &PredicateComparator{
		savePath: path.Join(savePath, "predicates_"+hierarchyName+".json"),
	}
}

func (p *PredicateComparator) Compare(experiments []string, datasets []core.DataSet) {
	out := make(map[string]*predicateDataset)
	for i, name := range experiments {
		if ds, ok := datasets[i].(*predicateDataset); ok {
			out[name] = ds
		}
	}
	if err := util.SaveJson(p.savePath, out); err != nil {
		fmt.Fprintf(os.Stderr, "error saving predicates: %s\n", err)
	}
}

type PredicateComparatorConstructor struct {
	savePath      string
	hierarchyName string
}

var _ core.ComparatorConstructor = &PredicateComparatorConstructor{}

func NewPredicateComparatorConstructor(hierarchyName string, savePath string) *PredicateComparatorConstructor {
	return &PredicateComparatorConstructor{
		savePath:      savePath,
		hierarchyName: hierarchyName,
	}
}

func (p *PredicateComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewPredicateComparator(path.Join(p.savePath, strconv.Itoa(run)), p.hierarchyName)
}
