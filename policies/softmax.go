package policies

import (
	"math"
	"time"

	"github.com/zeu5/gategrid/core"
	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SoftMaxPolicy learns Q values from the environment reward and picks
// actions from the Boltzmann distribution over them with a temperature
type SoftMaxPolicy struct {
	QTable      map[string]map[string]float64
	Alpha       float64
	Gamma       float64
	Temperature float64

	rand erand.Source
}

// NewSoftMaxPolicy instantiates the SoftMaxPolicy
func NewSoftMaxPolicy(alpha, gamma, temperature float64) *SoftMaxPolicy {
	return &SoftMaxPolicy{
		QTable:      make(map[string]map[string]float64),
		Alpha:       alpha,
		Gamma:       gamma,
		Temperature: temperature,
		rand:        erand.NewSource(uint64(time.Now().UnixMilli())),
	}
}

// Checking interface compatibility
var _ core.Policy = &SoftMaxPolicy{}

// Reset clears the QTable
func (s *SoftMaxPolicy) Reset() {
	s.QTable = make(map[string]map[string]float64)
	s.rand = erand.NewSource(uint64(time.Now().UnixMilli()))
}

func (s *SoftMaxPolicy) ResetEpisode(_ *core.EpisodeContext) {
}

func (s *SoftMaxPolicy) UpdateEpisode(_ *core.EpisodeContext) {
}

func (s *SoftMaxPolicy) entry(stateHash, actionHash string) float64 {
	if _, ok := s.QTable[stateHash]; !ok {
		s.QTable[stateHash] = make(map[string]float64)
	}
	if _, ok := s.QTable[stateHash][actionHash]; !ok {
		s.QTable[stateHash][actionHash] = 0
	}
	return s.QTable[stateHash][actionHash]
}

// Weights returns the Boltzmann probabilities of the actions in the state.
func (s *SoftMaxPolicy) Weights(state core.State, actions []core.Action) []float64 {
	stateHash := state.Hash()
	temp := s.Temperature
	if temp <= 0 {
		temp = 1
	}

	vals := make([]float64, len(actions))
	largestValue := math.Inf(-1)
	for i, a := range actions {
		vals[i] = s.entry(stateHash, a.Hash()) / temp
		if vals[i] > largestValue {
			largestValue = vals[i]
		}
	}

	// Normalizing against the largest value keeps exp from overflowing
	sum := float64(0)
	for i := range vals {
		vals[i] = math.Exp(vals[i] - largestValue)
		sum += vals[i]
	}
	weights := make([]float64, len(actions))
	for i, v := range vals {
		weights[i] = v / sum
	}
	return weights
}

func (s *SoftMaxPolicy) PickAction(_ *core.StepContext, state core.State, actions []core.Action) core.Action {
	if len(actions) == 0 {
		return nil
	}
	i, ok := sampleuv.NewWeighted(s.Weights(state, actions), s.rand).Take()
	if !ok {
		return nil
	}
	return actions[i]
}

func (s *SoftMaxPolicy) update(state core.State, action core.Action, reward float64, nextState core.State) {
	stateHash := state.Hash()
	curVal := s.entry(stateHash, action.Hash())

	max := float64(0)
	if vals, ok := s.QTable[nextState.Hash()]; ok && !nextState.Terminal() {
		max = math.Inf(-1)
		for _, val := range vals {
			if val > max {
				max = val
			}
		}
		if math.IsInf(max, -1) {
			max = 0
		}
	}
	s.QTable[stateHash][action.Hash()] = (1-s.Alpha)*curVal + s.Alpha*(reward+s.Gamma*max)
}

func (s *SoftMaxPolicy) UpdateStep(_ *core.StepContext, state core.State, action core.Action, reward float64, nextState core.State) {
	s.update(state, action, reward, nextState)
}

// SoftMaxFreqPolicy adds a penalty proportional to the number of visits of
// the next state, pushing exploration towards rarely seen states
type SoftMaxFreqPolicy struct {
	*SoftMaxPolicy
	Penalty float64
	Freq    map[string]int
}

var _ core.Policy = &SoftMaxFreqPolicy{}

func NewSoftMaxFreqPolicy(alpha, gamma, temp, penalty float64) *SoftMaxFreqPolicy {
	return &SoftMaxFreqPolicy{
		SoftMaxPolicy: NewSoftMaxPolicy(alpha, gamma, temp),
		Penalty:       penalty,
		Freq:          make(map[string]int),
	}
}

func (t *SoftMaxFreqPolicy) Reset() {
	t.SoftMaxPolicy.Reset()
	t.Freq = make(map[string]int)
}

func (t *SoftMaxFreqPolicy) UpdateStep(_ *core.StepContext, state core.State, action core.Action, reward float64, nextState core.State) {
	nextStateHash := nextState.Hash()
	t.Freq[nextStateHash]++
	t.update(state, action, reward-t.Penalty*float64(t.Freq[nextStateHash]), nextState)
}

type SoftMaxFreqPolicyConstructor struct {
	alpha   float64
	gamma   float64
	temp    float64
	penalty float64
}

var _ core.PolicyConstructor = &SoftMaxFreqPolicyConstructor{}

func NewSoftMaxFreqPolicyConstructor(alpha, gamma, temp, penalty float64) *SoftMaxFreqPolicyConstructor {
	return &SoftMaxFreqPolicyConstructor{
		alpha:   alpha,
		gamma:   gamma,
		temp:    temp,
		penalty: penalty,
	}
}

func (s *SoftMaxFreqPolicyConstructor) NewPolicy() core.Policy {
	return NewSoftMaxFreqPolicy(s.alpha, s.gamma, s.temp, s.penalty)
}

type SoftMaxPolicyConstructor struct {
	alpha float64
	gamma float64
	temp  float64
}

var _ core.PolicyConstructor = &SoftMaxPolicyConstructor{}

func NewSoftMaxPolicyConstructor(alpha, gamma, temp float64) *SoftMaxPolicyConstructor {
	return &SoftMaxPolicyConstructor{
		alpha: alpha,
		gamma: gamma,
		temp:  temp,
	}
}

func (s *SoftMaxPolicyConstructor) NewPolicy() core.Policy {
	return NewSoftMaxPolicy(s.alpha, s.gamma, s.temp)
}
