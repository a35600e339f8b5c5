package policies

import (
	"github.com/zeu5/frozenlake-rl/types"
	"golang.org/x/exp/rand"
)

// EpsilonGreedy is the exploration policy shared by both strategies.
// Epsilon lives in the shared AgentConfig and decays on every selection.
type EpsilonGreedy struct {
	settings *types.AgentConfig
	rand     *rand.Rand
	hold     bool
}

func NewEpsilonGreedy(config *types.AgentConfig, src rand.Source) *EpsilonGreedy {
	return &EpsilonGreedy{
		settings: config,
		rand:     rand.New(src),
	}
}

// Choose picks a random move with probability epsilon, the greedy move of
// table otherwise, then decays epsilon
func (e *EpsilonGreedy) Choose(table *QTable, state int) int {
	var action int
	if e.rand.Float64() < e.settings.Epsilon {
		action = e.rand.Intn(types.ActionCount)
	} else {
		action = table.argmax(state)
	}
	if !e.hold {
		e.settings.DecayEpsilon()
	}
	return action
}

// HoldExploration pauses the epsilon decay while hold is true
func (e *EpsilonGreedy) HoldExploration(hold bool) {
	e.hold = hold
}
