package types

// ActionCount is the number of discrete moves available in every cell
const ActionCount = 4

// Environment is the simulator the agent plays against.
// Implementations must eventually report done for every episode,
// the runner imposes no step limit.
type Environment interface {
	// Reset called before each episode, returns the start state
	Reset() (int, error)
	// Step applies the action and returns the next state and
	// whether the episode ended (goal or failure cell)
	Step(action int) (int, bool, error)
	// StateCount is the number of cells, states are in [0, StateCount)
	StateCount() int
}

// GoalState is the cell that counts as a win
func GoalState(stateCount int) int {
	return stateCount - 1
}

// ValidAction reports whether a is one of the four moves
func ValidAction(a int) bool {
	return a >= 0 && a < ActionCount
}
