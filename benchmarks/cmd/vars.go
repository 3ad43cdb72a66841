package cmd

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/zeu5/gategrid/benchmarks/common"
)

var (
	flags    *common.Flags = common.DefaultFlags()
	savePath string
	tables   string
	seed     uint64

	alpha       float64
	discount    float64
	epsilon     float64
	temperature float64

	numRuns                int
	episodes               int
	horizon                int
	maxConsecutiveErrors   int
	maxConsecutiveTimeouts int
	episodeTimeout         int
	parallelism            int
	debug                  bool
	profileMode            string
)

func AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&savePath, "save-path", flags.SavePath, "Path to save results")
	fs.StringVar(&tables, "tables", flags.Tables, "Directory with up.csv, down.csv, left.csv and right.csv (default: built in tables)")
	fs.Uint64Var(&seed, "seed", flags.Seed, "Seed for starting positions, 0 uses the clock")

	fs.Float64Var(&alpha, "alpha", flags.Alpha, "Learning rate")
	fs.Float64Var(&discount, "discount", flags.Discount, "Discount factor")
	fs.Float64Var(&epsilon, "epsilon", flags.Epsilon, "Exploration rate of the greedy policies")
	fs.Float64Var(&temperature, "temperature", flags.Temperature, "Temperature of the softmax policies")

	fs.IntVar(&numRuns, "num-runs", flags.NumRuns, "Number of runs")
	fs.IntVar(&episodes, "episodes", flags.Episodes, "Number of episodes")
	fs.IntVar(&horizon, "horizon", flags.Horizon, "Horizon")
	fs.IntVar(&maxConsecutiveErrors, "max-consecutive-errors", flags.MaxConsecutiveErrors, "Maximum number of consecutive errors")
	fs.IntVar(&maxConsecutiveTimeouts, "max-consecutive-timeouts", flags.MaxConsecutiveTimeouts, "Maximum number of consecutive timeouts")
	fs.IntVar(&episodeTimeout, "episode-timeout", int(flags.EpisodeTimeout.Seconds()), "Episode timeout in seconds")
	fs.IntVar(&parallelism, "parallelism", flags.Parallelism, "Number of parallel experiments")
	fs.BoolVar(&debug, "debug", flags.Debug, "Save the traces of the last episodes")
	fs.StringVar(&profileMode, "profile", flags.Profile, "Profile the command: cpu or mem")
}

func UpdateFlags() {
	flags.SavePath = savePath
	flags.Tables = tables
	flags.Seed = seed

	flags.Alpha = alpha
	flags.Discount = discount
	flags.Epsilon = epsilon
	flags.Temperature = temperature

	flags.NumRuns = numRuns
	flags.Episodes = episodes
	flags.Horizon = horizon
	flags.MaxConsecutiveErrors = maxConsecutiveErrors
	flags.MaxConsecutiveTimeouts = maxConsecutiveTimeouts
	flags.EpisodeTimeout = time.Duration(episodeTimeout) * time.Second
	flags.Parallelism = parallelism
	flags.Debug = debug
	flags.Profile = profileMode
}
