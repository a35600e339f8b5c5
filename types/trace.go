package types

// Trace of an episode as (state, action, nextState, reward) steps
type Trace struct {
	states     []int
	actions    []int
	nextStates []int
	rewards    []float64
}

func NewTrace() *Trace {
	return &Trace{
		states:     make([]int, 0),
		actions:    make([]int, 0),
		nextStates: make([]int, 0),
		rewards:    make([]float64, 0),
	}
}

func (t *Trace) Append(state, action, nextState int, reward float64) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.nextStates = append(t.nextStates, nextState)
	t.rewards = append(t.rewards, reward)
}

func (t *Trace) Len() int {
	return len(t.states)
}

func (t *Trace) Get(i int) (int, int, int, float64, bool) {
	if i < 0 || i >= len(t.states) {
		return 0, 0, 0, 0, false
	}
	return t.states[i], t.actions[i], t.nextStates[i], t.rewards[i], true
}

func (t *Trace) Last() (int, int, int, float64, bool) {
	return t.Get(len(t.states) - 1)
}

// Return is the sum of the rewards collected along the trace
func (t *Trace) Return() float64 {
	sum := 0.0
	for _, r := range t.rewards {
		sum += r
	}
	return sum
}
