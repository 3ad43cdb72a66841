package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/zeu5/gategrid/benchmarks/gategrid"
	"github.com/zeu5/gategrid/core"
)

// signalContext is cancelled on interrupt or when done is closed.
func signalContext() (context.Context, chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

	doneCh := make(chan struct{}) // channel for done signal from application

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, doneCh
}

func runConfig() *core.RunConfig {
	return &core.RunConfig{
		Episodes:                     flags.Episodes,
		Horizon:                      flags.Horizon,
		ThresholdConsecutiveErrors:   flags.MaxConsecutiveErrors,
		ThresholdConsecutiveTimeouts: flags.MaxConsecutiveTimeouts,
		EpisodeTimeout:               flags.EpisodeTimeout,
	}
}

func printResults(cmd *cobra.Command, results map[string]*core.ExperimentResult) {
	for name, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: episodes %d, reached goal %d, timesteps %d, errors %d, timeouts %d, invalid %d\n",
			name, r.TotalEpisodes, r.TerminalEpisodes, r.TotalTimeSteps, r.ErrorEpisodes, r.TimeoutEpisodes, r.InvalidEpisodes)
		if r.Error != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, r.Error)
		}
	}
}

func TrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Compare the learners on the gate grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.Record(); err != nil {
				return err
			}
			tables, err := gategrid.LoadTables(flags)
			if err != nil {
				return err
			}

			ctx, doneCh := signalContext()
			defer close(doneCh)

			cmp := gategrid.PrepareComparison(flags, tables)
			results := cmp.Run(ctx, flags.NumRuns, runConfig(), flags.Parallelism)
			printResults(cmd, results)
			return nil
		},
	}

	return cmd
}

func HierarchyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hierarchy [hierarchy or set]",
		Args:  cobra.ExactArgs(1),
		Short: "Run the predicate hierarchy learners",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.Record(); err != nil {
				return err
			}
			tables, err := gategrid.LoadTables(flags)
			if err != nil {
				return err
			}

			ctx, doneCh := signalContext()
			defer close(doneCh)

			cmp, err := gategrid.PrepareHierarchyComparison(flags, tables, args[0])
			if err != nil {
				return err
			}
			results := cmp.Run(ctx, flags.NumRuns, runConfig(), flags.Parallelism)
			printResults(cmd, results)
			return nil
		},
	}

	return cmd
}
