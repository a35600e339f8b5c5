package grid

import (
	"errors"
	"fmt"
	"time"

	"github.com/zeu5/frozenlake-rl/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Moves, in the order of the action indices
const (
	MoveLeft = iota
	MoveDown
	MoveRight
	MoveUp
)

// Cells of a lake map
const (
	Start  = 'S'
	Frozen = 'F'
	Hole   = 'H'
	Goal   = 'G'
)

var ErrEpisodeDone = errors.New("step called on a finished episode")

// Lake is a square map, the start is the first cell and the goal the last one
type Lake struct {
	Name string
	Rows []string
}

var (
	Lake4x4 = Lake{
		Name: "4x4",
		Rows: []string{
			"SFFF",
			"FHFH",
			"FFFH",
			"HFFG",
		},
	}
	Lake8x8 = Lake{
		Name: "8x8",
		Rows: []string{
			"SFFFFFFF",
			"FFFFFFFF",
			"FFFHFFFF",
			"FFFFFHFF",
			"FFFHFFFF",
			"FHHFFFHF",
			"FHFFHFHF",
			"FFFHFFFG",
		},
	}
)

// ParseLakeSize maps the "4x4" and "8x8" selectors to a lake
func ParseLakeSize(s string) (Lake, error) {
	switch s {
	case Lake4x4.Name:
		return Lake4x4, nil
	case Lake8x8.Name:
		return Lake8x8, nil
	}
	return Lake{}, types.NewConfigurationError("lake_size", s)
}

// Size is the side of the lake
func (l Lake) Size() int {
	return len(l.Rows)
}

func (l Lake) StateCount() int {
	return l.Size() * l.Size()
}

// Cell returns the map letter of the state
func (l Lake) Cell(state int) byte {
	return l.Rows[state/l.Size()][state%l.Size()]
}

// Terminal reports whether the episode ends on reaching state
func (l Lake) Terminal(state int) bool {
	c := l.Cell(state)
	return c == Hole || c == Goal
}

// Move applies a move from state, moves off the lake leave the state unchanged
func (l Lake) Move(state, move int) int {
	n := l.Size()
	row, col := state/n, state%n
	switch move {
	case MoveLeft:
		col = max(col-1, 0)
	case MoveDown:
		row = min(row+1, n-1)
	case MoveRight:
		col = min(col+1, n-1)
	case MoveUp:
		row = max(row-1, 0)
	}
	return row*n + col
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FrozenLakeEnvironment is the in-process FrozenLake simulator.
// When slippery, the intended move and each perpendicular move are taken
// with probability 1/3.
type FrozenLakeEnvironment struct {
	Lake     Lake
	Slippery bool
	CurPos   int

	done   bool
	src    rand.Source
	weight []float64
}

var _ types.Environment = &FrozenLakeEnvironment{}

// NewFrozenLakeEnvironment creates the environment, a nil src seeds from the current time
func NewFrozenLakeEnvironment(lake Lake, slippery bool, src rand.Source) *FrozenLakeEnvironment {
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	return &FrozenLakeEnvironment{
		Lake:     lake,
		Slippery: slippery,
		CurPos:   0,
		src:      src,
		weight:   []float64{1.0 / 3, 1.0 / 3, 1.0 / 3},
	}
}

func (f *FrozenLakeEnvironment) StateCount() int {
	return f.Lake.StateCount()
}

func (f *FrozenLakeEnvironment) Reset() (int, error) {
	f.CurPos = 0
	f.done = false
	return f.CurPos, nil
}

func (f *FrozenLakeEnvironment) Step(action int) (int, bool, error) {
	if !types.ValidAction(action) {
		return f.CurPos, f.done, fmt.Errorf("action %d: %w", action, types.ErrInvalidAction)
	}
	if f.done {
		return f.CurPos, true, ErrEpisodeDone
	}

	move := action
	if f.Slippery {
		candidates := []int{(action + 3) % types.ActionCount, action, (action + 1) % types.ActionCount}
		i, ok := sampleuv.NewWeighted(f.weight, f.src).Take()
		if ok {
			move = candidates[i]
		}
	}

	f.CurPos = f.Lake.Move(f.CurPos, move)
	f.done = f.Lake.Terminal(f.CurPos)
	return f.CurPos, f.done, nil
}
