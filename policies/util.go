package policies

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/zeu5/gategrid/core"
)

// QTable maps state hashes to action hashes to values.
type QTable struct {
	table map[string]map[string]float64

	rand *rand.Rand
}

func NewQTable() *QTable {
	return &QTable{
		table: make(map[string]map[string]float64),
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (q *QTable) GetAll(state string) (map[string]float64, bool) {
	values, ok := q.table[state]
	return values, ok
}

func (q *QTable) Get(state, action string, def float64) float64 {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	if _, ok := q.table[state][action]; !ok {
		q.table[state][action] = def
	}
	return q.table[state][action]
}

func (q *QTable) Set(state, action string, val float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	q.table[state][action] = val
}

func (q *QTable) Exists(state string) bool {
	_, ok := q.table[state]
	return ok
}

func (q *QTable) Size() int {
	return len(q.table)
}

// Max returns the best known action of the state, or def when the state
// has no entries.
func (q *QTable) Max(state string, def float64) (string, float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
		return "", def
	}
	maxAction := ""
	maxVal := math.Inf(-1)
	for a, val := range q.table[state] {
		if val > maxVal {
			maxAction = a
			maxVal = val
		}
	}

	if maxAction == "" {
		return "", def
	}

	return maxAction, maxVal
}

// MaxAmong returns the best of the given actions, breaking ties at random.
// Unseen actions are initialised to def.
func (q *QTable) MaxAmong(state string, actions []string, def float64) (string, float64) {
	if len(actions) == 0 {
		return "", def
	}
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	maxActions := make([]string, 0)
	maxVal := math.Inf(-1)
	for _, a := range actions {
		if _, ok := q.table[state][a]; !ok {
			q.table[state][a] = def
		}
		val := q.table[state][a]
		if val > maxVal {
			maxActions = make([]string, 0)
			maxVal = val
		}
		if val == maxVal {
			maxActions = append(maxActions, a)
		}
	}

	randAction := q.rand.Intn(len(maxActions))
	return maxActions[randAction], maxVal
}

// Read loads a table written by Record.
func (q *QTable) Read(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		in := qTableLine{}
		if err := json.Unmarshal(scanner.Bytes(), &in); err != nil {
			return fmt.Errorf("error reading file contents: %w", err)
		}
		q.table[in.State] = in.Entries
	}
	return scanner.Err()
}

type qTableLine struct {
	State   string             `json:"state"`
	Entries map[string]float64 `json:"entries"`
}

// Record writes the table as JSON lines to path.
func (q *QTable) Record(path string) error {
	bs := new(bytes.Buffer)

	for state, entries := range q.table {
		stateBS, err := json.Marshal(qTableLine{State: state, Entries: entries})
		if err != nil {
			return err
		}
		bs.Write(stateBS)
		bs.Write([]byte("\n"))
	}

	return os.WriteFile(path, bs.Bytes(), 0644)
}

// hashActions indexes the actions by hash.
func hashActions(actions []core.Action) (map[string]core.Action, []string) {
	actionsMap := make(map[string]core.Action)
	available := make([]string, len(actions))
	for i, a := range actions {
		aHash := a.Hash()
		actionsMap[aHash] = a
		available[i] = aHash
	}
	return actionsMap, available
}
