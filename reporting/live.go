package reporting

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	"github.com/zeu5/frozenlake-rl/types"
)

type liveStatus struct {
	episodes  int
	trials    int
	winRate   float64
	evaluated bool
	final     float64
}

func (s *liveStatus) String() string {
	str := fmt.Sprintf("episodes: %d, win rate: %.2f%%", s.episodes, s.winRate)
	if s.trials > 0 {
		str += fmt.Sprintf(", trials: %d", s.trials)
	}
	if s.evaluated {
		str += fmt.Sprintf(", evaluation: %.2f%%", s.final)
	}
	return str
}

// LiveView redraws one status line per experiment while experiments
// run in parallel
type LiveView struct {
	lock      *sync.Mutex
	names     []string
	status    map[string]*liveStatus
	frequency time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	writer *uilive.Writer
}

var _ types.Listener = &LiveView{}

func NewLiveView(ctx context.Context, out io.Writer, names []string, frequency time.Duration) *LiveView {
	vCtx, cancel := context.WithCancel(ctx)
	writer := uilive.New()
	writer.Out = out
	status := make(map[string]*liveStatus)
	for _, n := range names {
		status[n] = &liveStatus{}
	}
	return &LiveView{
		lock:      new(sync.Mutex),
		names:     names,
		status:    status,
		frequency: frequency,
		ctx:       vCtx,
		cancel:    cancel,
		done:      make(chan struct{}),
		writer:    writer,
	}
}

func (v *LiveView) get(name string) *liveStatus {
	s, ok := v.status[name]
	if !ok {
		s = &liveStatus{}
		v.status[name] = s
		v.names = append(v.names, name)
	}
	return s
}

func (v *LiveView) EpisodeDone(name string, eCtx *types.EpisodeContext) {
	v.lock.Lock()
	defer v.lock.Unlock()
	s := v.get(name)
	if eCtx.Training {
		s.episodes += 1
	} else {
		s.trials += 1
	}
}

func (v *LiveView) WinRateSampled(name string, sample types.WinRateSample) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.get(name).winRate = sample.WinRate
}

func (v *LiveView) Evaluated(name string, winRate float64) {
	v.lock.Lock()
	defer v.lock.Unlock()
	s := v.get(name)
	s.evaluated = true
	s.final = winRate
}

// Start redraws the view every frequency until Stop is called or the
// context is done
func (v *LiveView) Start() {
	go func() {
		defer close(v.done)
		ticker := time.NewTicker(v.frequency)
		defer ticker.Stop()
		for {
			select {
			case <-v.ctx.Done():
				v.print()
				return
			case <-ticker.C:
				v.print()
			}
		}
	}()
}

// Stop draws the view a last time and waits for the printer to exit
func (v *LiveView) Stop() {
	v.cancel()
	<-v.done
}

func (v *LiveView) print() {
	v.lock.Lock()
	b := new(strings.Builder)
	for _, n := range v.names {
		fmt.Fprintf(b, "%-10s %s\n", n, v.status[n].String())
	}
	v.lock.Unlock()

	fmt.Fprint(v.writer, b.String())
	v.writer.Flush()
}
