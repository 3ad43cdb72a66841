package policies

import (
	"math/rand"
	"time"

	"github.com/zeu5/gategrid/core"
)

// QLearningPolicy is epsilon-greedy tabular Q-learning on the environment reward.
type QLearningPolicy struct {
	qTable   *QTable
	alpha    float64
	discount float64
	epsilon  float64
	rand     *rand.Rand
}

var _ core.Policy = &QLearningPolicy{}

func NewQLearningPolicy(alpha, discount, epsilon float64) *QLearningPolicy {
	return &QLearningPolicy{
		qTable:   NewQTable(),
		alpha:    alpha,
		discount: discount,
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (q *QLearningPolicy) Record(path string) error {
	return q.qTable.Record(path)
}

// Value returns the learned value of the action in the state.
func (q *QLearningPolicy) Value(state core.State, action core.Action) float64 {
	return q.qTable.Get(state.Hash(), action.Hash(), 0)
}

func (q *QLearningPolicy) Reset() {
	q.qTable = NewQTable()
}

func (q *QLearningPolicy) ResetEpisode(_ *core.EpisodeContext) {
}

func (q *QLearningPolicy) PickAction(_ *core.StepContext, state core.State, actions []core.Action) core.Action {
	if len(actions) == 0 {
		return nil
	}
	if q.rand.Float64() < q.epsilon {
		return actions[q.rand.Intn(len(actions))]
	}

	actionsMap, available := hashActions(actions)
	maxAction, _ := q.qTable.MaxAmong(state.Hash(), available, 0)
	if maxAction == "" {
		return nil
	}
	return actionsMap[maxAction]
}

func (q *QLearningPolicy) UpdateStep(_ *core.StepContext, state core.State, action core.Action, reward float64, nextState core.State) {
	stateHash := state.Hash()
	actionHash := action.Hash()

	// terminal states have no future value
	nextStateVal := float64(0)
	if !nextState.Terminal() {
		_, nextStateVal = q.qTable.Max(nextState.Hash(), 0)
	}
	curVal := q.qTable.Get(stateHash, actionHash, 0)

	newVal := (1-q.alpha)*curVal + q.alpha*(reward+q.discount*nextStateVal)
	q.qTable.Set(stateHash, actionHash, newVal)
}

func (q *QLearningPolicy) UpdateEpisode(_ *core.EpisodeContext) {
}

type QLearningPolicyConstructor struct {
	alpha    float64
	discount float64
	epsilon  float64
}

var _ core.PolicyConstructor = &QLearningPolicyConstructor{}

func NewQLearningPolicyConstructor(alpha, discount, epsilon float64) *QLearningPolicyConstructor {
	return &QLearningPolicyConstructor{
		alpha:    alpha,
		discount: discount,
		epsilon:  epsilon,
	}
}

func (q *QLearningPolicyConstructor) NewPolicy() core.Policy {
	return NewQLearningPolicy(q.alpha, q.discount, q.epsilon)
}
