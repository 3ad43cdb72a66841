package gategrid

import (
	"errors"
	"os"

	"github.com/zeu5/gategrid/analysis"
	"github.com/zeu5/gategrid/benchmarks/common"
	"github.com/zeu5/gategrid/core"
	"github.com/zeu5/gategrid/grid"
	"github.com/zeu5/gategrid/policies"
)

// returnWindow is the moving average window of the return plots.
const returnWindow = 50

// LoadTables reads the transition tables from the directory given by the
// flags, or the embedded ones when none is given.
func LoadTables(flags *common.Flags) (*grid.Tables, error) {
	if flags.Tables == "" {
		return grid.DefaultTables()
	}
	return grid.LoadTables(&grid.FSSource{FS: os.DirFS(flags.Tables), Dir: "."})
}

// StateRenderer draws grid states in trace dumps.
func StateRenderer(tables *grid.Tables) analysis.StateRenderer {
	return func(s core.State) string {
		gs, ok := s.(*State)
		if !ok {
			return "not a grid state"
		}
		env := grid.New(tables, grid.WithStart(gs.State))
		return gs.State.String() + "\n" + env.Render()
	}
}

func addCommonAnalyses(cmp *core.ParallelComparison, flags *common.Flags, tables *grid.Tables) {
	render := StateRenderer(tables)
	if flags.Debug {
		cmp.AddAnalysis("Debug", analysis.NewPrintDebugAnalyzerConstructor(flags.SavePath, flags.Episodes-10, render), analysis.NewNoOpComparatorConstructor())
	}
	cmp.AddAnalysis("Errors", analysis.NewErrorAnalyzerConstructor(flags.SavePath, render), analysis.NewNoOpComparatorConstructor())
	cmp.AddAnalysis("Returns", analysis.NewReturnAnalyzerConstructor(), analysis.NewReturnComparatorConstructor(flags.SavePath, returnWindow))
	cmp.AddAnalysis("Coverage", analysis.NewCoverageAnalyzerConstructor(), analysis.NewCoverageComparatorConstructor(flags.SavePath))
}

// PrepareComparison compares the learners on the gate grid.
func PrepareComparison(flags *common.Flags, tables *grid.Tables) *core.ParallelComparison {
	cmp := core.NewParallelComparison()
	envConstructor := NewGridEnvConstructor(GridEnvConfig{
		Tables: tables,
		Seed:   flags.Seed,
	})
	addCommonAnalyses(cmp, flags, tables)

	cmp.AddExperiment(&core.ParallelExperiment{
		Name:        "Random",
		Environment: envConstructor,
		Policy:      &policies.RandomPolicyConstructor{},
	})
	cmp.AddExperiment(&core.ParallelExperiment{
		Name:        "QLearning",
		Environment: envConstructor,
		Policy:      policies.NewQLearningPolicyConstructor(flags.Alpha, flags.Discount, flags.Epsilon),
	})
	cmp.AddExperiment(&core.ParallelExperiment{
		Name:        "SoftMax",
		Environment: envConstructor,
		Policy:      policies.NewSoftMaxPolicyConstructor(flags.Alpha, flags.Discount, flags.Temperature),
	})
	cmp.AddExperiment(&core.ParallelExperiment{
		Name:        "SoftMaxVisits",
		Environment: envConstructor,
		Policy:      policies.NewSoftMaxFreqPolicyConstructor(flags.Alpha, flags.Discount, flags.Temperature, 0.1),
	})
	cmp.AddExperiment(&core.ParallelExperiment{
		Name:        "UCBZero",
		Environment: envConstructor,
		Policy: policies.NewUCBZeroPolicyConstructor(policies.UCBZeroParams{
			StateSize:   2 * grid.NumIndices,
			ActionsSize: len(grid.Actions),
			Horizon:     flags.Horizon,
			Episodes:    flags.Episodes,
			Epsilon:     flags.Epsilon,
			Constant:    0.05,
		}),
	})
	return cmp
}

// PrepareHierarchyComparison creates a comparison with the predicate
// hierarchy policy for the set of specified hierarchies
func PrepareHierarchyComparison(flags *common.Flags, tables *grid.Tables, hSet string) (*core.ParallelComparison, error) {
	hierarchies := getHierarchySet(hSet)
	if len(hierarchies) == 0 {
		return nil, errors.New("no hierarchies that match the criterion")
	}

	cmp := core.NewParallelComparison()
	envConstructor := NewGridEnvConstructor(GridEnvConfig{
		Tables: tables,
		Seed:   flags.Seed,
	})
	addCommonAnalyses(cmp, flags, tables)

	for _, h := range hierarchies {
		cmp.AddAnalysis(
			"HierarchyCoverage_"+h.Name,
			analysis.NewPredicateAnalyzerConstructor(h.Predicates),
			analysis.NewPredicateComparatorConstructor(h.Name, flags.SavePath),
		)
		cmp.AddExperiment(&core.ParallelExperiment{
			Name:        "PredHRL_" + h.Name,
			Environment: envConstructor,
			Policy: policies.NewHierarchyPolicyConstructor(
				flags.Alpha, flags.Discount, flags.Epsilon, false,
				h.Predicates...,
			),
		})
	}

	cmp.AddExperiment(&core.ParallelExperiment{
		Name:        "Random",
		Environment: envConstructor,
		Policy:      &policies.RandomPolicyConstructor{},
	})
	cmp.AddExperiment(&core.ParallelExperiment{
		Name:        "QLearning",
		Environment: envConstructor,
		Policy:      policies.NewQLearningPolicyConstructor(flags.Alpha, flags.Discount, flags.Epsilon),
	})
	return cmp, nil
}
