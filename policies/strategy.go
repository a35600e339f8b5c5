package policies

import (
	"time"

	"github.com/zeu5/frozenlake-rl/types"
	"golang.org/x/exp/rand"
)

// Strategy selects the learning rule of an agent
type Strategy int

const (
	SingleTableStrategy Strategy = iota
	DoubleTableStrategy
)

func (s Strategy) String() string {
	switch s {
	case SingleTableStrategy:
		return "simple"
	case DoubleTableStrategy:
		return "double"
	}
	return "unknown"
}

// ParseStrategy maps the "simple" and "double" selectors to a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "simple":
		return SingleTableStrategy, nil
	case "double":
		return DoubleTableStrategy, nil
	}
	return 0, types.NewConfigurationError("strategy", s)
}

// NewAgent creates an agent of the given strategy with zeroed tables.
// A nil src seeds from the current time.
func NewAgent(strategy Strategy, config *types.AgentConfig, src rand.Source) (types.Agent, error) {
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	switch strategy {
	case SingleTableStrategy:
		return NewSingleTable(config, src), nil
	case DoubleTableStrategy:
		return NewDoubleTable(config, src), nil
	}
	return nil, types.NewConfigurationError("strategy", strategy.String())
}
