package policies

import (
	"math/rand"
	"time"

	"github.com/zeu5/gategrid/core"
	"github.com/zeu5/gategrid/util"
)

type PredicateFunc func(core.State) bool

// Predicate names a sub-goal. A hierarchy is an ordered list of predicates,
// each one closer to the final goal than the previous.
type Predicate struct {
	Name  string
	Check PredicateFunc
}

// Init holds in every state and is the implicit first level of a hierarchy.
var Init = Predicate{Name: "Init", Check: func(core.State) bool { return true }}

// levelStep is a transition taken while at a level.
type levelStep struct {
	state     core.State
	action    core.Action
	nextState core.State
	// climbed is set when the step reached a higher level
	climbed bool
	// left is set when the step changed level in either direction
	left bool
}

// HierarchyPolicy keeps one Q table per level of the predicate hierarchy.
// Steps are rewarded with a decaying novelty bonus and a fixed bonus for
// climbing a level; the environment reward is not used. Tables are updated
// at the end of every episode.
type HierarchyPolicy struct {
	predicates []Predicate

	qTables []*QTable
	visits  []*QTable

	alpha    float64
	discount float64
	epsilon  float64
	// oneTime freezes the level once the top predicate is reached
	oneTime bool
	rand    *rand.Rand

	level    int
	frozen   bool
	segments [][]*levelStep
}

var _ core.Policy = &HierarchyPolicy{}

const climbBonus = 2

func NewHierarchyPolicy(alpha, discount, epsilon float64, oneTime bool, predicates ...Predicate) *HierarchyPolicy {
	h := &HierarchyPolicy{
		predicates: append([]Predicate{Init}, predicates...),
		alpha:      alpha,
		discount:   discount,
		epsilon:    epsilon,
		oneTime:    oneTime,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	h.Reset()
	h.ResetEpisode(nil)
	return h
}

func (h *HierarchyPolicy) Reset() {
	h.qTables = make([]*QTable, len(h.predicates))
	h.visits = make([]*QTable, len(h.predicates))
	for i := range h.predicates {
		h.qTables[i] = NewQTable()
		h.visits[i] = NewQTable()
	}
}

// Level is the hierarchy level reached in the current episode.
func (h *HierarchyPolicy) Level() int {
	return h.level
}

func (h *HierarchyPolicy) ResetEpisode(_ *core.EpisodeContext) {
	h.segments = make([][]*levelStep, len(h.predicates))
	h.level = 0
	h.frozen = false
}

func (h *HierarchyPolicy) levelOf(s core.State) int {
	for i := len(h.predicates) - 1; i > 0; i-- {
		if h.predicates[i].Check(s) {
			return i
		}
	}
	return 0
}

func (h *HierarchyPolicy) UpdateStep(_ *core.StepContext, state core.State, action core.Action, _ float64, nextState core.State) {
	step := &levelStep{state: state, action: action, nextState: nextState}
	from := h.level
	if !h.frozen {
		to := h.levelOf(nextState)
		step.left = to != from
		step.climbed = to > from
		if h.oneTime && to == len(h.predicates)-1 {
			h.frozen = true
		}
		h.level = to
	}
	h.segments[from] = append(h.segments[from], step)
}

func (h *HierarchyPolicy) PickAction(_ *core.StepContext, state core.State, actions []core.Action) core.Action {
	if len(actions) == 0 {
		return nil
	}
	if h.rand.Float64() < h.epsilon {
		return actions[h.rand.Intn(len(actions))]
	}

	actionsMap, available := hashActions(actions)
	best, _ := h.qTables[h.level].MaxAmong(state.Hash(), available, 1)
	if best == "" {
		return nil
	}
	return actionsMap[best]
}

func (h *HierarchyPolicy) UpdateEpisode(_ *core.EpisodeContext) {
	for level, segment := range h.segments {
		q, visits := h.qTables[level], h.visits[level]
		for _, step := range segment {
			stateHash := step.state.Hash()
			actionHash := step.action.Hash()

			n := visits.Get(stateHash, actionHash, 0) + 1
			visits.Set(stateHash, actionHash, n)

			reward := 1 / n
			if step.climbed {
				reward += climbBonus
			}
			// a step out of the level has no future within it
			next := float64(0)
			if !step.left {
				_, next = q.Max(step.nextState.Hash(), 0)
			}

			cur := q.Get(stateHash, actionHash, 0)
			q.Set(stateHash, actionHash, (1-h.alpha)*cur+h.alpha*util.MaxFloat(reward, h.discount*next))
		}
	}
}

type HierarchyPolicyConstructor struct {
	Alpha      float64
	Discount   float64
	Epsilon    float64
	OneTime    bool
	Predicates []Predicate
}

var _ core.PolicyConstructor = &HierarchyPolicyConstructor{}

func NewHierarchyPolicyConstructor(alpha, discount, epsilon float64, oneTime bool, predicates ...Predicate) *HierarchyPolicyConstructor {
	return &HierarchyPolicyConstructor{
		Alpha:      alpha,
		Discount:   discount,
		Epsilon:    epsilon,
		OneTime:    oneTime,
		Predicates: predicates,
	}
}

func (h *HierarchyPolicyConstructor) NewPolicy() core.Policy {
	return NewHierarchyPolicy(h.Alpha, h.Discount, h.Epsilon, h.OneTime, h.Predicates...)
}
