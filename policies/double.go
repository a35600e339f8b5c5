package policies

import (
	"github.com/zeu5/frozenlake-rl/types"
	"golang.org/x/exp/rand"
)

// DoubleTable is double Q-learning: the active table picks the best next
// move, the other table evaluates it. The active table alternates on
// every update, training or not.
type DoubleTable struct {
	agentState
	*EpsilonGreedy
	qTables [2]*QTable
	active  int
}

var _ types.Agent = &DoubleTable{}
var _ types.ExplorationHolder = &DoubleTable{}

func NewDoubleTable(config *types.AgentConfig, src rand.Source) *DoubleTable {
	return &DoubleTable{
		agentState:    agentState{config: config},
		EpsilonGreedy: NewEpsilonGreedy(config, src),
		qTables:       [2]*QTable{NewQTable(config.StateCount), NewQTable(config.StateCount)},
	}
}

// ActiveIndex is the table used for the next action selection
func (d *DoubleTable) ActiveIndex() int {
	return d.active
}

func (d *DoubleTable) SelectAction(state int) int {
	action := d.Choose(d.qTables[d.active], state)
	d.lastAction = action
	return action
}

func (d *DoubleTable) Update(prevState, action, nextState int, reward float64, isTraining bool) {
	cur := d.qTables[d.active]
	other := d.qTables[1-d.active]

	oldValue := cur.Value(prevState, action)
	bestAction := cur.argmax(nextState)
	crossValue := other.Value(nextState, bestAction)

	d.state = nextState
	if isTraining {
		cur.set(prevState, action, oldValue+d.config.Alpha*(reward+d.config.Gamma*crossValue-oldValue))
	}
	d.active = 1 - d.active
}

func (d *DoubleTable) Tables() []types.ValueTable {
	return []types.ValueTable{d.qTables[0], d.qTables[1]}
}
