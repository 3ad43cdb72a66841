package cmd

import (
	"fmt"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var profiler interface{ Stop() }

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gategrid",
		Short:         "Gate grid world environment and learners",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			UpdateFlags()
			switch flags.Profile {
			case "":
			case "cpu":
				profiler = profile.Start(profile.CPUProfile, profile.ProfilePath(flags.SavePath), profile.Quiet)
			case "mem":
				profiler = profile.Start(profile.MemProfile, profile.ProfilePath(flags.SavePath), profile.Quiet)
			default:
				return fmt.Errorf("unknown profile mode %q", flags.Profile)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if profiler != nil {
				profiler.Stop()
			}
		},
	}
	AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		DemoCommand(),
		LegalCommand(),
		TrainCommand(),
		HierarchyCommand(),
	)

	return cmd
}
