package policies

import (
	"math"
	"time"

	erand "golang.org/x/exp/rand"

	"github.com/zeu5/gategrid/core"
)

type UCBZeroParams struct {
	StateSize   int
	ActionsSize int
	Horizon     int
	Episodes    int
	Constant    float64
	Epsilon     float64
}

type UCBZeroPolicy struct {
	qTable *QTable
	visits *QTable
	rand   *erand.Rand
	params UCBZeroParams

	eta float64
}

func NewUCBZeroPolicy(params UCBZeroParams) *UCBZeroPolicy {
	eta := math.Log(
		float64(params.Horizon) * float64(params.ActionsSize) * float64(params.Episodes) * float64(params.StateSize),
	)

	return &UCBZeroPolicy{
		qTable: NewQTable(),
		visits: NewQTable(),
		rand:   erand.New(erand.NewSource(uint64(time.Now().UnixNano()))),
		params: params,

		eta: eta,
	}
}

var _ core.Policy = &UCBZeroPolicy{}

func (b *UCBZeroPolicy) ResetEpisode(_ *core.EpisodeContext) {
}

func (b *UCBZeroPolicy) UpdateEpisode(_ *core.EpisodeContext) {
}

func (b *UCBZeroPolicy) PickAction(_ *core.StepContext, state core.State, actions []core.Action) core.Action {
	if len(actions) == 0 {
		return nil
	}
	if b.rand.Float64() < b.params.Epsilon {
		return actions[b.rand.Intn(len(actions))]
	}

	actionsMap, available := hashActions(actions)
	maxAction, _ := b.qTable.MaxAmong(state.Hash(), available, float64(b.params.Horizon))
	if maxAction == "" {
		return nil
	}

	return actionsMap[maxAction]
}

// UpdateStep is the optimistic Q-learning update with a Hoeffding style
// bonus that shrinks with the visit count of the state-action pair.
func (b *UCBZeroPolicy) UpdateStep(_ *core.StepContext, state core.State, action core.Action, reward float64, nextState core.State) {
	stateHash := state.Hash()
	actionHash := action.Hash()
	t := b.visits.Get(stateHash, actionHash, 0) + 1
	b.visits.Set(stateHash, actionHash, t)

	nextStateVal := float64(0)
	if !nextState.Terminal() {
		_, nextStateVal = b.qTable.Max(nextState.Hash(), float64(b.params.Horizon))
		if nextStateVal > float64(b.params.Horizon) {
			nextStateVal = float64(b.params.Horizon)
		}
	}

	bonus := b.params.Constant * (math.Sqrt((math.Pow(float64(b.params.Horizon), 3) * b.eta) / t))
	alphaT := float64(b.params.Horizon+1) / (float64(b.params.Horizon) + t)
	curVal := b.qTable.Get(stateHash, actionHash, float64(b.params.Horizon))

	newVal := (1-alphaT)*curVal + alphaT*(reward+nextStateVal+bonus)
	b.qTable.Set(stateHash, actionHash, newVal)
}

func (b *UCBZeroPolicy) Reset() {
	b.qTable = NewQTable()
	b.visits = NewQTable()
	b.rand = erand.New(erand.NewSource(uint64(time.Now().UnixNano())))
}

type UCBZeroPolicyConstructor struct {
	params UCBZeroParams
}

var _ core.PolicyConstructor = &UCBZeroPolicyConstructor{}

func NewUCBZeroPolicyConstructor(params UCBZeroParams) *UCBZeroPolicyConstructor {
	return &UCBZeroPolicyConstructor{
		params: params,
	}
}

func (b *UCBZeroPolicyConstructor) NewPolicy() core.Policy {
	return NewUCBZeroPolicy(b.params)
}
