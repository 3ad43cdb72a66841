package core

import "context"

type Environment interface {
	Reset() (State, error)
	// Step applies the action and returns the next state with its reward.
	Step(Action, *StepContext) (State, float64, error)
}

type State interface {
	Hash() string
	Actions() []Action
	// Terminal states end the episode before the horizon.
	Terminal() bool
}

type Action interface {
	Hash() string
}

type EpisodeContext struct {
	Context       context.Context
	Episode       int
	Horizon       int
	Run           int
	StartTimeStep int

	Trace *Trace

	err     error
	timeout bool
	doneCh  chan struct{}
}

func NewEpisodeContext(ctx context.Context) *EpisodeContext {
	return &EpisodeContext{
		Context: ctx,
		Trace:   NewTrace(),
		doneCh:  make(chan struct{}),
	}
}

func (e *EpisodeContext) Error(err error) {
	e.err = err
	e.Trace.SetError(err)
	close(e.doneCh)
}

// Timeout ends the episode once its deadline has passed. The trace is
// marked failed with context.DeadlineExceeded.
func (e *EpisodeContext) Timeout() {
	e.timeout = true
	e.err = context.DeadlineExceeded
	e.Trace.SetError(e.err)
	close(e.doneCh)
}

func (e *EpisodeContext) Finish() {
	close(e.doneCh)
}

func (e *EpisodeContext) IsError() bool {
	return e.err != nil
}

func (e *EpisodeContext) Err() error {
	return e.err
}

func (e *EpisodeContext) IsTimeout() bool {
	return e.timeout
}

func (e *EpisodeContext) Done() <-chan struct{} {
	return e.doneCh
}

type StepContext struct {
	Step int
	*EpisodeContext
}

type EnvironmentConstructor interface {
	// NewEnvironment creates a new environment with the given instance number.
	NewEnvironment(int) Environment
}
