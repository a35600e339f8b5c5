package policies

import (
	"github.com/zeu5/frozenlake-rl/types"
	"golang.org/x/exp/rand"
)

// agentState is the runtime state common to both strategies
type agentState struct {
	config     *types.AgentConfig
	state      int
	lastAction int
}

func (a *agentState) State() int {
	return a.state
}

func (a *agentState) LastAction() int {
	return a.lastAction
}

func (a *agentState) Config() *types.AgentConfig {
	return a.config
}

// SingleTable is one-step Q-learning over one table
type SingleTable struct {
	agentState
	*EpsilonGreedy
	qTable *QTable
}

var _ types.Agent = &SingleTable{}
var _ types.ExplorationHolder = &SingleTable{}

func NewSingleTable(config *types.AgentConfig, src rand.Source) *SingleTable {
	return &SingleTable{
		agentState:    agentState{config: config},
		EpsilonGreedy: NewEpsilonGreedy(config, src),
		qTable:        NewQTable(config.StateCount),
	}
}

func (s *SingleTable) SelectAction(state int) int {
	action := s.Choose(s.qTable, state)
	s.lastAction = action
	return action
}

func (s *SingleTable) Update(prevState, action, nextState int, reward float64, isTraining bool) {
	oldValue := s.qTable.Value(prevState, action)
	maxNext := s.qTable.max(nextState)

	s.state = nextState
	if isTraining {
		s.qTable.set(prevState, action, oldValue+s.config.Alpha*(reward+s.config.Gamma*maxNext-oldValue))
	}
}

func (s *SingleTable) Tables() []types.ValueTable {
	return []types.ValueTable{s.qTable}
}
