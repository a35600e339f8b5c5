package types

// ValueTable gives read access to a state x action value table.
// Implementations expose no mutators, rows are returned as copies.
type ValueTable interface {
	StateCount() int
	Value(state, action int) float64
	Row(state int) []float64
}

// TableProvider is implemented by agents that expose their value tables
type TableProvider interface {
	Tables() []ValueTable
}

// Snapshot copies the table into a dense matrix
func Snapshot(t ValueTable) [][]float64 {
	out := make([][]float64, t.StateCount())
	for s := range out {
		out[s] = t.Row(s)
	}
	return out
}
