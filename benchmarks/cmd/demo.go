package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/zeu5/gategrid/benchmarks/gategrid"
	"github.com/zeu5/gategrid/grid"
	"github.com/zeu5/gategrid/util"
	erand "golang.org/x/exp/rand"
)

// demoRoute is the scripted walk of the demo. From (4,1) it collects the
// tool, crosses the gate and ends on the oven.
var demoRoute = []grid.Action{
	grid.Up, grid.Up, grid.Right, grid.Down, grid.Right, grid.Right, grid.Right, grid.Up, grid.Left,
}

// steps of demoRoute after which the state and reward are printed, and
// after which the grid is drawn
var (
	demoPrintAfter  = map[int]bool{0: true, 1: true, 2: true, 8: true}
	demoRenderAfter = map[int]bool{0: true, 1: true, 2: true, 6: true, 8: true}
)

// parseRoute reads a comma separated list of actions.
func parseRoute(s string) ([]grid.Action, error) {
	parts := strings.Split(s, ",")
	route := make([]grid.Action, 0, len(parts))
	for _, part := range parts {
		a, err := grid.ParseAction(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", s, err)
		}
		route = append(route, a)
	}
	return route, nil
}

func parsePosition(s string) (grid.Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return grid.Position{}, fmt.Errorf("position %q is not of the form i,j", s)
	}
	i, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return grid.Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	j, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return grid.Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	p := grid.Position{I: i, J: j}
	if !p.Valid() {
		return grid.Position{}, fmt.Errorf("position %s is outside the grid", p)
	}
	return p, nil
}

func colorEnabled(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

type demoOptions struct {
	start string
	route string
	live  bool
	delay time.Duration
}

func runDemo(out io.Writer, o demoOptions) error {
	tables, err := gategrid.LoadTables(flags)
	if err != nil {
		return err
	}
	opts := []grid.Option{}
	if flags.Seed != 0 {
		opts = append(opts, grid.WithRand(erand.New(erand.NewSource(flags.Seed))))
	}
	if o.start != "" {
		p, err := parsePosition(o.start)
		if err != nil {
			return err
		}
		opts = append(opts, grid.WithStart(grid.State{Position: p, Tool: grid.IsToolCell(p)}))
	}
	env := grid.New(tables, opts...)

	route := demoRoute
	printAfter, renderAfter := demoPrintAfter, demoRenderAfter
	if o.route != "" {
		if route, err = parseRoute(o.route); err != nil {
			return err
		}
		// a custom route reports every step
		printAfter, renderAfter = nil, nil
	}

	au := aurora.NewAurora(colorEnabled(out))
	render := func() string {
		if colorEnabled(out) {
			return env.RenderColor(au)
		}
		return env.Render()
	}

	if o.live {
		printer := util.NewTerminalPrinter(out, o.delay)
		printer.Write(fmt.Sprintf("%s\n%s", env.State(), render()))
		for _, a := range route {
			s, r := env.Apply(a)
			printer.Write(fmt.Sprintf("%s -> %s reward %v\n%s", a, s, r, render()))
		}
	} else {
		fmt.Fprintln(out, render())
		for i, a := range route {
			s, r := env.Apply(a)
			if printAfter == nil || printAfter[i] {
				fmt.Fprintln(out, s)
				fmt.Fprintln(out, r)
			}
			if renderAfter == nil || renderAfter[i] {
				fmt.Fprintln(out, render())
			}
		}
	}

	actions, terminal := env.LegalActions(grid.Position{I: 3, J: 6}, false)
	fmt.Fprintln(out, formatActions(actions, terminal))
	return nil
}

func formatActions(actions []grid.Action, terminal bool) string {
	if terminal {
		return "terminal"
	}
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return "[" + strings.Join(names, " ") + "]"
}

func DemoCommand() *cobra.Command {
	o := demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk the scripted route and draw the grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout(), o)
		},
	}
	cmd.Flags().StringVar(&o.start, "start", "", "Starting position i,j (default: random)")
	cmd.Flags().StringVar(&o.route, "route", "", "Comma separated actions to apply instead of the scripted route")
	cmd.Flags().BoolVar(&o.live, "live", false, "Redraw the grid in place after every step")
	cmd.Flags().DurationVar(&o.delay, "delay", 500*time.Millisecond, "Pause between live frames")
	return cmd
}

func LegalCommand() *cobra.Command {
	var tool bool
	cmd := &cobra.Command{
		Use:   "legal <i> <j>",
		Short: "Print the legal actions of a state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePosition(args[0] + "," + args[1])
			if err != nil {
				return err
			}
			tables, err := gategrid.LoadTables(flags)
			if err != nil {
				return err
			}
			actions, terminal := tables.LegalActions(p, tool)
			fmt.Fprintln(cmd.OutOrStdout(), formatActions(actions, terminal))
			return nil
		},
	}
	cmd.Flags().BoolVar(&tool, "tool", false, "The agent carries the tool")
	return cmd
}
