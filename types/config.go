package types

// AgentConfig is shared by reference between the controller and the agent.
// Epsilon is the only field the agent mutates, everything else is
// read-only once the agent is constructed.
type AgentConfig struct {
	Alpha        float64
	Gamma        float64
	Epsilon      float64
	EpsilonDecay float64
	EpsilonMin   float64
	StateCount   int

	// DecayDuringEvaluation keeps the exploration schedule running while
	// evaluating. Defaults to true in DefaultAgentConfig.
	DecayDuringEvaluation bool
}

// DefaultAgentConfig returns the default settings for the given number of states
func DefaultAgentConfig(stateCount int) *AgentConfig {
	return &AgentConfig{
		Alpha:                 0.1,
		Gamma:                 0.95,
		Epsilon:               1,
		EpsilonDecay:          0.95,
		EpsilonMin:            0.05,
		StateCount:            stateCount,
		DecayDuringEvaluation: true,
	}
}

// DecayEpsilon applies one step of the exploration schedule
func (c *AgentConfig) DecayEpsilon() {
	next := c.Epsilon * c.EpsilonDecay
	if next < c.EpsilonMin {
		next = c.EpsilonMin
	}
	c.Epsilon = next
}

// RewardConfig is the reward signal emitted at the end of an episode
type RewardConfig struct {
	Reward float64
	Punish float64
}

// DefaultRewardConfig returns reward 1 and punishment -1
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{Reward: 1, Punish: -1}
}
