package analysis

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/zeu5/gategrid/core"
	"github.com/zeu5/gategrid/util"
	"gonum.org/v1/gonum/stat"
)

type returnDataset struct {
	Returns []float64
	Lengths []int
	Reached int

	Mean   float64
	StdDev float64
}

func (r *returnDataset) Copy() *returnDataset {
	return &returnDataset{
		Returns: util.CopyFloatSlice(r.Returns),
		Lengths: util.CopyIntSlice(r.Lengths),
		Reached: r.Reached,
		Mean:    r.Mean,
		StdDev:  r.StdDev,
	}
}

// ReturnAnalyzer records the undiscounted return and length of every
// episode and how many episodes reached a terminal state.
type ReturnAnalyzer struct {
	dataset *returnDataset
}

var _ core.Analyzer = &ReturnAnalyzer{}

func NewReturnAnalyzer() *ReturnAnalyzer {
	a := &ReturnAnalyzer{}
	a.Reset()
	return a
}

func (r *ReturnAnalyzer) Reset() {
	r.dataset = &returnDataset{
		Returns: make([]float64, 0),
		Lengths: make([]int, 0),
	}
}

func (r *ReturnAnalyzer) Analyze(_ *core.EpisodeContext, trace *core.Trace) {
	if trace.Error() != nil {
		return
	}
	r.dataset.Returns = append(r.dataset.Returns, trace.Return())
	r.dataset.Lengths = append(r.dataset.Lengths, trace.Len())
	if trace.Reached() {
		r.dataset.Reached++
	}
}

func (r *ReturnAnalyzer) DataSet() core.DataSet {
	ds := r.dataset.Copy()
	switch {
	case len(ds.Returns) > 1:
		ds.Mean, ds.StdDev = stat.MeanStdDev(ds.Returns, nil)
	case len(ds.Returns) == 1:
		// the sample deviation of a single value is NaN, which JSON cannot hold
		ds.Mean = ds.Returns[0]
	}
	return ds
}

type ReturnAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = &ReturnAnalyzerConstructor{}

func NewReturnAnalyzerConstructor() *ReturnAnalyzerConstructor {
	return &ReturnAnalyzerConstructor{}
}

func (r *ReturnAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewReturnAnalyzer()
}

// ReturnComparator saves the returns of every experiment as JSON and plots
// their moving averages into an HTML line chart.
type ReturnComparator struct {
	savePath string
	window   int
}

var _ core.Comparator = &ReturnComparator{}

func NewReturnComparator(savePath string, window int) *ReturnComparator {
	return &ReturnComparator{
		savePath: savePath,
		window:   window,
	}
}

func (r *ReturnComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	out := make(map[string]*returnDataset)
	for i, name := range experimentNames {
		if ds, ok := datasets[i].(*returnDataset); ok {
			out[name] = ds
		}
	}
	if err := util.SaveJson(path.Join(r.savePath, "returns.json"), out); err != nil {
		fmt.Fprintf(os.Stderr, "error saving returns: %s\n", err)
	}
	if err := r.plot(out); err != nil {
		fmt.Fprintf(os.Stderr, "error plotting returns: %s\n", err)
	}
}

func (r *ReturnComparator) plot(datasets map[string]*returnDataset) error {
	names := make([]string, 0, len(datasets))
	numEpisodes := 0
	for name, ds := range datasets {
		names = append(names, name)
		if len(ds.Returns) > numEpisodes {
			numEpisodes = len(ds.Returns)
		}
	}
	sort.Strings(names)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Episode return",
			Subtitle: fmt.Sprintf("moving average over %d episodes", r.window),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	episodes := make([]string, numEpisodes)
	for i := range episodes {
		episodes[i] = strconv.Itoa(i)
	}
	line.SetXAxis(episodes)
	for _, name := range names {
		avg := util.MovingAverage(datasets[name].Returns, r.window)
		items := make([]opts.LineData, len(avg))
		for i, v := range avg {
			items[i] = opts.LineData{Value: v}
		}
		line.AddSeries(name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)

	if err := os.MkdirAll(r.savePath, 0755); err != nil {
		return err
	}
	f, err := os.Create(path.Join(r.savePath, "returns.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}

type ReturnComparatorConstructor struct {
	savePath string
	window   int
}

var _ core.ComparatorConstructor = &ReturnComparatorConstructor{}

func NewReturnComparatorConstructor(savePath string, window int) *ReturnComparatorConstructor {
	return &ReturnComparatorConstructor{
		savePath: savePath,
		window:   window,
	}
}

func (r *ReturnComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewReturnComparator(path.Join(r.savePath, strconv.Itoa(run)), r.window)
}
