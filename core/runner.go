package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gosuri/uilive"
)

var (
	ErrTooManyTimeouts = errors.New("too many timeouts")
	ErrTooManyErrors   = errors.New("too many errors")
	ErrNoAction        = errors.New("policy picked no action")
	// ErrInvalidAction marks episodes where the policy picked an action the
	// environment rejected. They are counted but do not abort the run.
	ErrInvalidAction = errors.New("invalid action")
)

type experimentRunContext struct {
	run       int
	ctx       context.Context
	analyzers map[string]Analyzer

	writer io.Writer

	*RunConfig
}

type ExperimentResult struct {
	CompletedEpisodes int
	TotalEpisodes     int
	ErrorEpisodes     int
	TimeoutEpisodes   int
	InvalidEpisodes   int
	TerminalEpisodes  int
	TotalTimeSteps    int

	Error    error
	Datasets map[string]DataSet
}

func (r *ExperimentResult) IsError() bool {
	return r.Error != nil
}

// runEpisode plays one episode up to the horizon or a terminal state.
func (e *Experiment) runEpisode(eCtx *EpisodeContext, horizon int) {
	state, err := e.Environment.Reset()
	if err != nil {
		eCtx.Error(err)
		return
	}
	for step := 0; step < horizon && !state.Terminal(); step++ {
		select {
		case <-eCtx.Context.Done():
			if errors.Is(eCtx.Context.Err(), context.DeadlineExceeded) {
				eCtx.Timeout()
			} else {
				eCtx.Error(eCtx.Context.Err())
			}
			return
		default:
		}

		sCtx := &StepContext{Step: step, EpisodeContext: eCtx}
		action := e.Policy.PickAction(sCtx, state, state.Actions())
		if action == nil {
			eCtx.Error(ErrNoAction)
			return
		}
		nextState, reward, err := e.Environment.Step(action, sCtx)
		if err != nil {
			eCtx.Error(err)
			return
		}
		e.Policy.UpdateStep(sCtx, state, action, reward, nextState)
		eCtx.Trace.AddStep(&Step{
			State:     state,
			Action:    action,
			Reward:    reward,
			NextState: nextState,
		})
		state = nextState
	}
	e.Policy.UpdateEpisode(eCtx)
	eCtx.Finish()
}

func (e *Experiment) run(ctx *experimentRunContext) *ExperimentResult {
	result := &ExperimentResult{
		Datasets: make(map[string]DataSet),
	}
	e.Policy.Reset()

	consecutiveErrors := 0
	consecutiveTimeouts := 0
EpisodeLoop:
	for episode := 0; episode < ctx.Episodes; episode++ {
		select {
		case <-ctx.ctx.Done():
			result.Error = errors.New("context cancelled")
			break EpisodeLoop
		default:
		}

		fmt.Fprintf(
			ctx.writer,
			"Experiment: %s, Run %d, Episode %d/%d, Timesteps: %d, Goal: %d, Error: %d, Timedout: %d, Invalid: %d\n",
			e.Name, ctx.run, episode, ctx.Episodes, result.TotalTimeSteps, result.TerminalEpisodes, result.ErrorEpisodes, result.TimeoutEpisodes, result.InvalidEpisodes,
		)
		timeoutCtx, timeoutCancel := context.WithTimeout(ctx.ctx, ctx.EpisodeTimeout)
		eCtx := NewEpisodeContext(timeoutCtx)
		eCtx.Run = ctx.run
		eCtx.Episode = episode
		eCtx.Horizon = ctx.Horizon
		eCtx.StartTimeStep = result.TotalTimeSteps

		e.Policy.ResetEpisode(eCtx)
		go e.runEpisode(eCtx, ctx.Horizon)

		errorred := false
		timedout := false
		select {
		case <-eCtx.Done():
		case <-timeoutCtx.Done():
			// the episode goroutine stops at its next step
			<-eCtx.Done()
		}
		switch {
		case eCtx.IsTimeout():
			timedout = true
		case !eCtx.IsError():
		case errors.Is(eCtx.Err(), ErrInvalidAction):
			result.InvalidEpisodes++
		default:
			errorred = true
		}
		timeoutCancel()

		if errorred {
			result.ErrorEpisodes++
			if consecutiveErrors++; consecutiveErrors >= ctx.ThresholdConsecutiveErrors {
				result.Error = ErrTooManyErrors
				break EpisodeLoop
			}
		} else {
			consecutiveErrors = 0
		}
		if timedout {
			result.TimeoutEpisodes++
			if consecutiveTimeouts++; consecutiveTimeouts >= ctx.ThresholdConsecutiveTimeouts {
				result.Error = ErrTooManyTimeouts
				break EpisodeLoop
			}
		} else {
			consecutiveTimeouts = 0
		}

		if !errorred && !timedout {
			result.TotalTimeSteps += eCtx.Trace.Len()
			result.CompletedEpisodes++
			if eCtx.Trace.Reached() {
				result.TerminalEpisodes++
			}
		}
		result.TotalEpisodes++

		for _, a := range ctx.analyzers {
			a.Analyze(eCtx, eCtx.Trace)
		}
	}
	if result.Error != nil {
		fmt.Fprintf(ctx.writer, "Experiment: %s, Run %d, Error: %v\n", e.Name, ctx.run, result.Error)
	}

	for name, a := range ctx.analyzers {
		result.Datasets[name] = a.DataSet()
	}

	e.Policy.Reset()
	return result
}

// Run plays every experiment for the given number of runs and hands the
// datasets of each run to the comparators. The results of the last run are
// returned.
func (c *Comparison) Run(ctx context.Context, runs int, rConfig *RunConfig, out io.Writer) map[string]*ExperimentResult {
	if out == nil {
		out = io.Discard
	}
	var results map[string]*ExperimentResult
	for run := 0; run < runs; run++ {
		select {
		case <-ctx.Done():
			return results
		default:
		}

		results = make(map[string]*ExperimentResult)

		// Run experiments
		for _, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return results
			default:
			}
			eCtx := &experimentRunContext{
				run:       run,
				ctx:       ctx,
				analyzers: make(map[string]Analyzer),
				writer:    out,
				RunConfig: rConfig,
			}

			for name, aC := range c.Analyzers {
				eCtx.analyzers[name] = aC.NewAnalyzer(e.Name, 0)
			}

			results[e.Name] = e.run(eCtx)
		}

		experimentNames, datasets := gatherDatasets(results, c.analyzerNames())
		for name, cmp := range c.Comparators {
			cmp.Compare(experimentNames, datasets[name])
		}
	}
	return results
}

func (c *Comparison) analyzerNames() []string {
	names := make([]string, 0, len(c.Analyzers))
	for name := range c.Analyzers {
		names = append(names, name)
	}
	return names
}

// gatherDatasets groups the datasets per analyzer, in the order of the
// returned experiment names. Failed experiments contribute a nil dataset.
func gatherDatasets(results map[string]*ExperimentResult, analyzerNames []string) ([]string, map[string][]DataSet) {
	datasets := make(map[string][]DataSet)
	experimentNames := make([]string, 0)
	for name, result := range results {
		experimentNames = append(experimentNames, name)
		for _, name := range analyzerNames {
			if _, ok := datasets[name]; !ok {
				datasets[name] = make([]DataSet, 0)
			}
			if result.IsError() {
				datasets[name] = append(datasets[name], nil)
			} else {
				datasets[name] = append(datasets[name], result.Datasets[name])
			}
		}
	}
	return experimentNames, datasets
}

// parallelWorker is a worker that runs experiments
type parallelWorker struct {
	id int
}

// parallelWork is a struct that contains all the information needed to run an experiment
type parallelWork struct {
	experiment *ParallelExperiment
	comp       *ParallelComparison
	runNumber  int
	writer     io.Writer
	rConfig    *RunConfig
	wg         *sync.WaitGroup
}

// parallelResult is a struct that contains the result of running an experiment
type parallelResult struct {
	experimentName string
	run            int
	result         *ExperimentResult
}

// Worker main loop that consumes work until the channel is closed. A
// cancelled context makes every remaining experiment return immediately.
func (w *parallelWorker) run(ctx context.Context, workCh <-chan *parallelWork, resultsCh chan<- *parallelResult) {
	for work := range workCh {
		resultsCh <- w.runWork(ctx, work)
		work.wg.Done()
	}
}

// Run an experiment with its own environment and policy instances
func (w *parallelWorker) runWork(ctx context.Context, work *parallelWork) *parallelResult {
	eCtx := &experimentRunContext{
		run:       work.runNumber,
		ctx:       ctx,
		analyzers: make(map[string]Analyzer),
		writer:    work.writer,
		RunConfig: work.rConfig,
	}

	for name, aC := range work.comp.Analyzers {
		eCtx.analyzers[name] = aC.NewAnalyzer(work.experiment.Name, w.id)
	}

	exp := &Experiment{
		Name:        work.experiment.Name,
		Environment: work.experiment.Environment.NewEnvironment(w.id),
		Policy:      work.experiment.Policy.NewPolicy(),
	}

	return &parallelResult{
		experimentName: work.experiment.Name,
		run:            work.runNumber,
		result:         exp.run(eCtx),
	}
}

// Run plays the experiments on a pool of workers, one experiment per worker
// at a time. Progress is redrawn in place with uilive.
func (c *ParallelComparison) Run(ctx context.Context, runs int, rConfig *RunConfig, parallelism int) map[string]*ExperimentResult {
	if parallelism < 1 {
		parallelism = 1
	}
	var results map[string]*ExperimentResult
	for run := 0; run < runs; run++ {
		select {
		case <-ctx.Done():
			return results
		default:
		}
		wg := new(sync.WaitGroup)
		writer := uilive.New()
		writer.Start()
		fmt.Fprintf(writer, "Run %d\n", run)

		workCh := make(chan *parallelWork, parallelism)
		resultsCh := make(chan *parallelResult, len(c.Experiments))

		for i := 0; i < parallelism; i++ {
			w := &parallelWorker{id: i}
			go w.run(ctx, workCh, resultsCh)
		}

		for _, e := range c.Experiments {
			wg.Add(1)
			select {
			case <-ctx.Done():
				close(workCh)
				writer.Stop()
				return results
			case workCh <- &parallelWork{
				experiment: e,
				comp:       c,
				runNumber:  run,
				rConfig:    rConfig,
				wg:         wg,
				writer:     writer.Newline(),
			}:
			}
		}
		close(workCh)

		wg.Wait()
		close(resultsCh)
		writer.Stop()

		results = make(map[string]*ExperimentResult)
		for r := range resultsCh {
			results[r.experimentName] = r.result
		}

		analyzerNames := make([]string, 0, len(c.Analyzers))
		for name := range c.Analyzers {
			analyzerNames = append(analyzerNames, name)
		}
		experimentNames, datasets := gatherDatasets(results, analyzerNames)
		for name, cc := range c.Comparators {
			select {
			case <-ctx.Done():
				return results
			default:
			}
			cc.NewComparator(run).Compare(experimentNames, datasets[name])
		}
	}
	return results
}
