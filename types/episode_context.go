package types

// EpisodeContext carries the information used and produced by one episode
type EpisodeContext struct {
	Episode  int
	Training bool

	// Trace is only populated when RecordTrace is set
	RecordTrace bool
	Trace       *Trace

	Steps int
	Won   bool
}

func NewEpisodeContext(episode int, training, recordTrace bool) *EpisodeContext {
	eCtx := &EpisodeContext{
		Episode:     episode,
		Training:    training,
		RecordTrace: recordTrace,
	}
	if recordTrace {
		eCtx.Trace = NewTrace()
	}
	return eCtx
}

func (e *EpisodeContext) record(state, action, nextState int, reward float64) {
	e.Steps += 1
	if e.RecordTrace {
		e.Trace.Append(state, action, nextState, reward)
	}
}
