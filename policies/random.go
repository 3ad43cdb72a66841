package policies

import (
	"math/rand"
	"time"

	"github.com/zeu5/gategrid/core"
)

type RandomPolicy struct {
	rand *rand.Rand
}

var _ core.Policy = &RandomPolicy{}

func NewRandomPolicy() *RandomPolicy {
	return NewSeededRandomPolicy(time.Now().UnixNano())
}

func NewSeededRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomPolicy) Reset() {}

func (r *RandomPolicy) UpdateEpisode(_ *core.EpisodeContext) {}

func (r *RandomPolicy) PickAction(_ *core.StepContext, _ core.State, actions []core.Action) core.Action {
	if len(actions) == 0 {
		return nil
	}
	return actions[r.rand.Intn(len(actions))]
}

func (r *RandomPolicy) UpdateStep(_ *core.StepContext, _ core.State, _ core.Action, _ float64, _ core.State) {
}

func (r *RandomPolicy) ResetEpisode(_ *core.EpisodeContext) {}

type RandomPolicyConstructor struct{}

func (r *RandomPolicyConstructor) NewPolicy() core.Policy {
	return NewRandomPolicy()
}
