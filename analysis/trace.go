package analysis

import (
	"bytes"
	"fmt"

	"github.com/zeu5/gategrid/core"
)

// StateRenderer draws a state for the trace dumps.
type StateRenderer func(core.State) string

func hashRenderer(s core.State) string {
	if s == nil {
		return "<nil>"
	}
	return s.Hash()
}

func traceToString(trace *core.Trace, render StateRenderer) string {
	if render == nil {
		render = hashRenderer
	}
	buf := new(bytes.Buffer)
	for i := 0; i < trace.Len(); i++ {
		buf.WriteString(fmt.Sprintf("Step %d\n%s\n", i, stepToString(trace.Step(i), render)))
	}
	return buf.String()
}

func stepToString(step *core.Step, render StateRenderer) string {
	return fmt.Sprintf(
		"State: \n%s\nAction: %s\nReward: %v\n\nNext State: \n%s\n",
		render(step.State),
		step.Action.Hash(),
		step.Reward,
		render(step.NextState),
	)
}
