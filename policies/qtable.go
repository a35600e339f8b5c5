package policies

import (
	"github.com/zeu5/frozenlake-rl/types"
	"gonum.org/v1/gonum/floats"
)

// QTable is a dense state x action table of expected returns.
// It only exposes read access outside this package.
type QTable struct {
	table [][]float64
}

var _ types.ValueTable = &QTable{}

// NewQTable creates a table of stateCount rows initialized to zero
func NewQTable(stateCount int) *QTable {
	table := make([][]float64, stateCount)
	for i := range table {
		table[i] = make([]float64, types.ActionCount)
	}
	return &QTable{table: table}
}

func (q *QTable) StateCount() int {
	return len(q.table)
}

func (q *QTable) Value(state, action int) float64 {
	return q.table[state][action]
}

// Row returns a copy of the action values of state
func (q *QTable) Row(state int) []float64 {
	row := make([]float64, types.ActionCount)
	copy(row, q.table[state])
	return row
}

func (q *QTable) set(state, action int, val float64) {
	q.table[state][action] = val
}

// max value over the actions of state
func (q *QTable) max(state int) float64 {
	return floats.Max(q.table[state])
}

// argmax over the actions of state, first index on ties
func (q *QTable) argmax(state int) int {
	return floats.MaxIdx(q.table[state])
}
