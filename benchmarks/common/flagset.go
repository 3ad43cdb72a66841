package common

import (
	"path"
	"time"

	"github.com/zeu5/gategrid/policies"
	"github.com/zeu5/gategrid/util"
)

type Flags struct {
	EnvFlags
	PolicyFlags
	RunFlags
	SavePath    string
	Parallelism int
	Debug       bool
	Profile     string
}

type EnvFlags struct {
	// Directory holding up.csv, down.csv, left.csv and right.csv. Empty
	// uses the tables compiled into the binary.
	Tables string
	Seed   uint64
}

type PolicyFlags struct {
	Alpha       float64
	Discount    float64
	Epsilon     float64
	Temperature float64
}

type RunFlags struct {
	NumRuns                int
	Episodes               int
	Horizon                int
	MaxConsecutiveErrors   int
	MaxConsecutiveTimeouts int
	EpisodeTimeout         time.Duration
}

type HierarchySet struct {
	Name       string
	Predicates []policies.Predicate
}

func DefaultFlags() *Flags {
	return &Flags{
		EnvFlags: EnvFlags{
			Tables: "",
			Seed:   0,
		},
		PolicyFlags: PolicyFlags{
			Alpha:       0.2,
			Discount:    0.95,
			Epsilon:     0.05,
			Temperature: 1,
		},
		SavePath: "results",
		RunFlags: RunFlags{
			NumRuns:                1,
			Episodes:               1000,
			Horizon:                100,
			MaxConsecutiveErrors:   20,
			MaxConsecutiveTimeouts: 20,
			EpisodeTimeout:         10 * time.Second,
		},
		Parallelism: 4,
		Debug:       false,
	}
}

// Record saves the flags next to the results.
func (f *Flags) Record() error {
	return util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}
