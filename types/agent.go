package types

import "fmt"

// Agent is a tabular learner that picks moves and learns from transitions
type Agent interface {
	// SelectAction picks the next move for the state and records it as the last action
	SelectAction(state int) int
	// Update credits the transition (prevState, action) -> nextState with reward.
	// The tables are left untouched when isTraining is false,
	// the current state always advances to nextState.
	Update(prevState, action, nextState int, reward float64, isTraining bool)
	// State is the last observed state
	State() int
	// LastAction is the last selected action
	LastAction() int
	// Config returns the shared settings
	Config() *AgentConfig

	TableProvider
}

// ExplorationHolder is implemented by agents whose exploration schedule
// can be paused
type ExplorationHolder interface {
	HoldExploration(bool)
}

// Runner drives single episodes of an agent against an environment
type Runner struct {
	agent       Agent
	environment Environment
	rewards     RewardConfig
	goal        int
	stateCount  int
}

// NewRunner instantiates a new Runner
func NewRunner(agent Agent, environment Environment, rewards RewardConfig) *Runner {
	stateCount := environment.StateCount()
	return &Runner{
		agent:       agent,
		environment: environment,
		rewards:     rewards,
		goal:        GoalState(stateCount),
		stateCount:  stateCount,
	}
}

// RunEpisode plays until the environment reports done and returns whether
// the goal was reached. The environment must have been reset by the caller.
func (r *Runner) RunEpisode(eCtx *EpisodeContext) (bool, error) {
	for {
		state := r.agent.State()
		action := r.agent.SelectAction(state)
		if !ValidAction(action) {
			return false, fmt.Errorf("episode %d step %d: state %d, action %d: %w", eCtx.Episode, eCtx.Steps, state, action, ErrInvalidAction)
		}
		nextState, done, err := r.environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("episode %d step %d: environment step: %w", eCtx.Episode, eCtx.Steps, err)
		}
		if nextState < 0 || nextState >= r.stateCount {
			return false, fmt.Errorf("episode %d step %d: next state %d: %w", eCtx.Episode, eCtx.Steps, nextState, ErrInvalidState)
		}

		won := nextState == r.goal
		reward := 0.0
		if done {
			if won {
				reward = r.rewards.Reward
			} else {
				reward = r.rewards.Punish
			}
		}
		r.agent.Update(state, action, nextState, reward, eCtx.Training)
		eCtx.record(state, action, nextState, reward)

		if done {
			eCtx.Won = won
			return won, nil
		}
	}
}
